package round

// CrownTracker keeps the "currently leading" marker on at most one
// participant, moving it as an externally supplied score signal changes.
type CrownTracker struct {
	holder int
	scores map[int]int

	onAward    func(id int)
	onRemove   func(id int)
	onTransfer func(from, to int)
}

func NewCrownTracker() *CrownTracker {
	return &CrownTracker{
		holder: -1,
		scores: map[int]int{},
	}
}

func (c *CrownTracker) OnAward(fn func(id int)) { c.onAward = fn }

func (c *CrownTracker) OnRemove(fn func(id int)) { c.onRemove = fn }

func (c *CrownTracker) OnTransfer(fn func(from, to int)) { c.onTransfer = fn }

// Holder returns the current crown holder, or -1 when nobody leads.
func (c *CrownTracker) Holder() int {
	return c.holder
}

// Observe feeds one participant's score into the tracker. The crown goes
// to whoever strictly leads; ties leave it where it is.
func (c *CrownTracker) Observe(id, score int) {
	c.scores[id] = score

	leader := c.holder
	best := 0
	if leader >= 0 {
		best = c.scores[leader]
	}
	for pid, s := range c.scores {
		if s > best {
			leader = pid
			best = s
		}
	}

	if leader == c.holder {
		return
	}

	previous := c.holder
	c.holder = leader
	switch {
	case previous < 0:
		if c.onAward != nil {
			c.onAward(leader)
		}
	default:
		if c.onTransfer != nil {
			c.onTransfer(previous, leader)
		}
	}
}

// Clear takes the crown away from whoever holds it.
func (c *CrownTracker) Clear() {
	if c.holder < 0 {
		return
	}
	previous := c.holder
	c.holder = -1
	if c.onRemove != nil {
		c.onRemove(previous)
	}
}

func (c *CrownTracker) CleanUp() {
	c.Clear()
	c.onAward = nil
	c.onRemove = nil
	c.onTransfer = nil
	c.scores = map[int]int{}
}
