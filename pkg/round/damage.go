package round

import (
	"github.com/sasha-s/go-deadlock"
)

// Report is a universal damage report. Any gameplay element may emit one;
// what "damage" means is up to the mode running the active round.
type Report struct {
	VictimID   int
	AttackerID int
	Amount     int
	Source     string
}

// DamageBus delivers damage reports to whoever is subscribed, normally
// the active round's driver. Delivery is synchronous.
type DamageBus struct {
	mu       deadlock.Mutex
	handlers map[int]func(Report)
	next     int
}

func NewDamageBus() *DamageBus {
	return &DamageBus{
		handlers: map[int]func(Report){},
	}
}

func (b *DamageBus) Subscribe(fn func(Report)) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.handlers[id] = fn
	return id
}

func (b *DamageBus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, id)
}

func (b *DamageBus) Deliver(r Report) {
	b.mu.Lock()
	handlers := make([]func(Report), 0, len(b.handlers))
	for _, fn := range b.handlers {
		handlers = append(handlers, fn)
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(r)
	}
}
