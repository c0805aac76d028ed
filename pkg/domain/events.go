package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRequest     EventType = "request"
	EventSuccess     EventType = "success"
	EventFailure     EventType = "failure"
	EventPassthrough EventType = "passthrough"
)

// CallEvent describes one translated call at a point of its lifecycle.
type CallEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      EventType     `json:"type"`
	ID        string        `json:"id"`
	Token     Token         `json:"token"`
	Method    string        `json:"method,omitempty"`
	URL       string        `json:"url,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Error     string        `json:"error,omitempty"`
	Reason    string        `json:"reason,omitempty"` // Why a call was passed through untouched
}

// Hooks defines callbacks for call observability.
// Every field is optional.
type Hooks struct {
	OnRequest     func(context.Context, *CallEvent)
	OnSuccess     func(context.Context, *CallEvent)
	OnFailure     func(context.Context, *CallEvent)
	OnPassthrough func(context.Context, *CallEvent)
}

// Fire invokes the hook matching the event type, if any.
func (h Hooks) Fire(ctx context.Context, e *CallEvent) {
	var fn func(context.Context, *CallEvent)
	switch e.Type {
	case EventRequest:
		fn = h.OnRequest
	case EventSuccess:
		fn = h.OnSuccess
	case EventFailure:
		fn = h.OnFailure
	case EventPassthrough:
		fn = h.OnPassthrough
	}
	if fn != nil {
		fn(ctx, e)
	}
}

// MultiHooks fans every event out to each of the given hook sets in order.
func MultiHooks(all ...Hooks) Hooks {
	fanOut := func(ctx context.Context, e *CallEvent) {
		for _, h := range all {
			h.Fire(ctx, e)
		}
	}
	return Hooks{
		OnRequest:     fanOut,
		OnSuccess:     fanOut,
		OnFailure:     fanOut,
		OnPassthrough: fanOut,
	}
}
