package http

import (
	"context"
	"sync"

	"github.com/aretw0/asyncfetch/pkg/domain"
)

// subscriberBuffer is how many events a slow subscriber may lag behind before events are dropped for it.
const subscriberBuffer = 16

// EventStream fans call events out to live subscribers.
type EventStream struct {
	mu          sync.RWMutex
	subscribers map[chan domain.CallEvent]struct{}
}

func NewEventStream() *EventStream {
	return &EventStream{
		subscribers: make(map[chan domain.CallEvent]struct{}),
	}
}

// Subscribe registers a new subscriber. The returned function unsubscribes and closes the channel.
func (s *EventStream) Subscribe() (<-chan domain.CallEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan domain.CallEvent, subscriberBuffer)
	s.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, ch)
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber without blocking.
func (s *EventStream) Publish(e domain.CallEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subscribers {
		select {
		case ch <- e:
		default:
		}
	}
}

// Hooks returns lifecycle hooks publishing every event.
func (s *EventStream) Hooks() domain.Hooks {
	publish := func(_ context.Context, e *domain.CallEvent) {
		s.Publish(*e)
	}
	return domain.Hooks{
		OnRequest:     publish,
		OnSuccess:     publish,
		OnFailure:     publish,
		OnPassthrough: publish,
	}
}
