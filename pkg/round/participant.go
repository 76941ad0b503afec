package round

// Vector is a position in the arena.
type Vector struct {
	X, Y, Z float64
}

// Participant is the per-player record that persists across rounds.
// Health moves through the damage pipeline or mode-specific logic; lives
// are only ever touched by the mode that owns the round.
type Participant struct {
	ID        int
	Name      string
	Health    int
	MaxHealth int
	Lives     int
	MaxLives  int
	Alive     bool
	Position  Vector
}

func NewParticipant(id int, name string, maxHealth, maxLives int) *Participant {
	return &Participant{
		ID:        id,
		Name:      name,
		Health:    maxHealth,
		MaxHealth: maxHealth,
		Lives:     maxLives,
		MaxLives:  maxLives,
		Alive:     true,
	}
}

// ApplyDamage reduces health by amount, clamping at zero, and reports the
// damage actually dealt. Reaching zero health clears the alive flag.
func (p *Participant) ApplyDamage(amount int) int {
	if amount < 0 {
		amount = 0
	}
	if amount > p.Health {
		amount = p.Health
	}
	p.Health -= amount
	if p.Health == 0 {
		p.Alive = false
	}
	return amount
}

// Heal raises health by amount, clamping at MaxHealth, and reports the
// amount actually restored.
func (p *Participant) Heal(amount int) int {
	if amount < 0 {
		amount = 0
	}
	if p.Health+amount > p.MaxHealth {
		amount = p.MaxHealth - p.Health
	}
	p.Health += amount
	return amount
}

// TakeLife consumes one life and reports whether one was left to take.
func (p *Participant) TakeLife() bool {
	if p.Lives == 0 {
		return false
	}
	p.Lives--
	return true
}

// GrantLives adds lives, clamping at MaxLives.
func (p *Participant) GrantLives(n int) {
	if n < 0 {
		n = 0
	}
	p.Lives += n
	if p.Lives > p.MaxLives {
		p.Lives = p.MaxLives
	}
}

// Revive restores full health and sets the alive flag. It does not touch
// lives; callers take a life first if their rules require one.
func (p *Participant) Revive() {
	p.Health = p.MaxHealth
	p.Alive = true
}

// Reset restores the record to its session-start state.
func (p *Participant) Reset() {
	p.Health = p.MaxHealth
	p.Lives = p.MaxLives
	p.Alive = true
	p.Position = Vector{}
}
