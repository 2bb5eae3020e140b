// Package events is the in-process publish/subscribe channel through which
// the emergency flow and the syncer announce changes to dashboard listeners.
package events

import (
	"context"
	"sync"
	"time"
)

// Event names.
const (
	EmergencyAlert = "emergency-alert"
	EmergencyState = "emergency-state"
	DataSync       = "data-sync"
)

type Event struct {
	Name    string
	Payload any
	At      time.Time
}

type Handler func(ctx context.Context, e Event)

// Bus delivers events synchronously, in subscription order, on the
// publisher's goroutine. Handlers must not block.
type Bus struct {
	mu   sync.RWMutex
	next uint64
	subs map[string][]subscription
	now  func() time.Time
}

type subscription struct {
	id uint64
	h  Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscription), now: time.Now}
}

// Subscribe registers h for events named name and returns a function that
// removes the registration. Calling it more than once is harmless.
func (b *Bus) Subscribe(name string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.next++
	id := b.next
	b.subs[name] = append(b.subs[name], subscription{id: id, h: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(name, id) })
	}
}

func (b *Bus) remove(name string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[name]
	for i, s := range list {
		if s.id == id {
			b.subs[name] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[name]) == 0 {
		delete(b.subs, name)
	}
}

// Publish delivers payload to every current subscriber of name.
func (b *Bus) Publish(ctx context.Context, name string, payload any) {
	b.mu.RLock()
	list := append([]subscription(nil), b.subs[name]...)
	b.mu.RUnlock()

	e := Event{Name: name, Payload: payload, At: b.now()}
	for _, s := range list {
		s.h(ctx, e)
	}
}

// Listen forwards events named name into a buffered channel until ctx is
// done, then closes it. Events that do not fit in the buffer are dropped.
func (b *Bus) Listen(ctx context.Context, name string, buffer int) <-chan Event {
	ch := make(chan Event, buffer)
	var mu sync.Mutex
	closed := false

	unsubscribe := b.Subscribe(name, func(_ context.Context, e Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- e:
		default:
		}
	})

	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()

	return ch
}

// Subscribers reports how many handlers are registered for name.
func (b *Bus) Subscribers(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}
