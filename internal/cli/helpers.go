package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/asyncfetch"
	"github.com/aretw0/asyncfetch/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// BuildCallAction turns command line input into a call envelope.
// typ is the inner action type; every other argument is an optional JSON document.
func BuildCallAction(typ, body, params, headers, extra string) (domain.Action, error) {
	inner := domain.Action{}
	if extra != "" {
		if err := json.Unmarshal([]byte(extra), &inner); err != nil {
			return nil, fmt.Errorf("error parsing --fields JSON: %w", err)
		}
		if inner == nil {
			inner = domain.Action{}
		}
	}
	inner[domain.KeyType] = typ

	action := domain.Action{asyncfetch.CallAPI: inner}

	if body != "" {
		var v any
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return nil, fmt.Errorf("error parsing --body JSON: %w", err)
		}
		action[domain.KeyBody] = v
	}
	if params != "" {
		// Params that are not JSON are a raw query string.
		var v any
		if err := json.Unmarshal([]byte(params), &v); err != nil {
			v = params
		}
		action[domain.KeyParams] = v
	}
	if headers != "" {
		var v map[string]string
		if err := json.Unmarshal([]byte(headers), &v); err != nil {
			return nil, fmt.Errorf("error parsing --headers JSON: %w", err)
		}
		action[domain.KeyHeaders] = v
	}
	return action, nil
}
