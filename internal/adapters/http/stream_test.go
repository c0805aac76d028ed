package http

import (
	"context"
	"testing"

	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestEventStream(t *testing.T) {
	s := NewEventStream()
	a, unsubA := s.Subscribe()
	b, unsubB := s.Subscribe()
	defer unsubB()

	s.Hooks().Fire(context.Background(), &domain.CallEvent{Type: domain.EventRequest, ID: "1"})

	assert.Equal(t, "1", (<-a).ID)
	assert.Equal(t, "1", (<-b).ID)

	unsubA()
	unsubA()
	_, open := <-a
	assert.False(t, open)

	s.Publish(domain.CallEvent{ID: "2"})
	assert.Equal(t, "2", (<-b).ID)
}

func TestEventStream_SlowSubscriberDoesNotBlock(t *testing.T) {
	s := NewEventStream()
	ch, unsub := s.Subscribe()
	defer unsub()

	for i := 0; i < subscriberBuffer*2; i++ {
		s.Publish(domain.CallEvent{})
	}

	assert.Len(t, ch, subscriberBuffer)
}
