package auth

import (
	"sync"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

// Broker fans session events out to subscribers. Callbacks run on the publishing
// goroutine and must not block.
type Broker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(domain.SessionEvent)
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]func(domain.SessionEvent))}
}

// Subscribe registers fn until the returned func is called.
func (b *Broker) Subscribe(fn func(domain.SessionEvent)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *Broker) Publish(ev domain.SessionEvent) {
	b.mu.Lock()
	fns := make([]func(domain.SessionEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
