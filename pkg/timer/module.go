package timer

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

const (
	stateIdle = iota
	stateActive
	stateExpired
)

// Timer is a pausable single-shot timer. Unlike time.Timer it can be
// paused and restarted, resuming with whatever duration was left.
type Timer struct {
	t  *time.Timer
	C  <-chan time.Time
	fn func()

	l         *deadlock.Mutex // guards the fields below
	state     int
	duration  time.Duration
	startedAt time.Time
}

// AfterFunc returns a Timer that, once started, waits for the duration to
// elapse and then calls f in its own goroutine.
func AfterFunc(d time.Duration, f func()) *Timer {
	t := &Timer{
		duration: d,
		l:        new(deadlock.Mutex),
	}
	t.fn = func() {
		t.l.Lock()
		t.state = stateExpired
		t.l.Unlock()
		f()
	}
	return t
}

// NewTimer returns a Timer that sends the current time on C when it
// expires.
func NewTimer(d time.Duration) *Timer {
	c := make(chan time.Time, 1)
	t := &Timer{
		C:        c,
		duration: d,
		l:        new(deadlock.Mutex),
	}
	t.fn = func() {
		t.l.Lock()
		t.state = stateExpired
		t.l.Unlock()
		c <- time.Now()
	}
	return t
}

// Start arms the timer. It returns false if the timer is already running
// or has expired.
func (t *Timer) Start() bool {
	t.l.Lock()
	defer t.l.Unlock()
	if t.state != stateIdle {
		return false
	}
	t.startedAt = time.Now()
	t.state = stateActive
	t.t = time.AfterFunc(t.duration, t.fn)
	return true
}

// Pause suspends the timer until the next Start call, which will wait out
// the remaining duration.
func (t *Timer) Pause() bool {
	t.l.Lock()
	defer t.l.Unlock()
	if t.state != stateActive {
		return false
	}
	if !t.t.Stop() {
		t.state = stateExpired
		return false
	}
	t.state = stateIdle
	t.duration -= time.Since(t.startedAt)
	return true
}

// Paused reports whether the timer is idle, either because Start hasn't
// been called yet or because it was paused.
func (t *Timer) Paused() bool {
	t.l.Lock()
	defer t.l.Unlock()
	return t.state == stateIdle
}

// SetTimeLeft adjusts the expiry to duration d from now. It returns false
// if the timer already expired.
func (t *Timer) SetTimeLeft(d time.Duration) bool {
	t.l.Lock()
	defer t.l.Unlock()
	if t.state == stateExpired {
		return false
	} else if t.state == stateActive {
		t.t.Stop()
	}
	t.duration = d
	if t.state == stateActive {
		t.startedAt = time.Now()
		t.t = time.AfterFunc(d, t.fn)
	}
	return true
}

// Stop prevents the Timer from firing. It returns true if the call stopped
// the timer, false if it had already expired or been stopped. Stop does
// not close C.
func (t *Timer) Stop() bool {
	t.l.Lock()
	defer t.l.Unlock()
	if t.state != stateActive {
		return false
	}
	t.state = stateExpired
	return t.t.Stop()
}

// TimeLeft returns the duration left before the timer expires. It is safe
// to call on a nil timer, which reports zero.
func (t *Timer) TimeLeft() time.Duration {
	if t == nil {
		return 0
	}

	t.l.Lock()
	defer t.l.Unlock()

	switch t.state {
	case stateIdle:
		return t.duration
	case stateActive:
		return t.duration - time.Since(t.startedAt)
	case stateExpired:
		return 0
	default:
		panic("unhandled timer state")
	}
}
