package pipeline

import (
	"context"
	"sync"

	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/aretw0/asyncfetch/pkg/ports"
)

// Reducer computes the next state from the current state and an action.
type Reducer func(state any, action domain.Action) any

// API is the view of the store handed to middleware factories.
type API interface {
	State() any
	Dispatch(ctx context.Context, action domain.Action) any
}

// Factory builds a middleware with access to the store it is applied to.
type Factory func(api API) ports.Middleware

// Plain lifts a middleware that does not need the store.
func Plain(mw ports.Middleware) Factory {
	return func(API) ports.Middleware {
		return mw
	}
}

// Store applies actions to its state through a middleware chain.
// Safe for concurrent use; reducers run one at a time.
type Store struct {
	mu       sync.RWMutex
	state    any
	reducer  Reducer
	dispatch ports.Dispatch
}

// NewStore creates a store. The first factory is the outermost stage:
// it sees an action first and its result is what Dispatch returns.
func NewStore(reducer Reducer, initial any, factories ...Factory) *Store {
	s := &Store{
		state:   initial,
		reducer: reducer,
	}

	chain := ports.Dispatch(s.reduce)
	for i := len(factories) - 1; i >= 0; i-- {
		chain = factories[i](s)(chain)
	}
	s.dispatch = chain
	return s
}

// Dispatch sends an action through the whole chain.
func (s *Store) Dispatch(ctx context.Context, action domain.Action) any {
	return s.dispatch(ctx, action)
}

// State returns the current state.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// reduce is the innermost stage. It returns the action it applied.
func (s *Store) reduce(ctx context.Context, action domain.Action) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reducer != nil {
		s.state = s.reducer(s.state, action)
	}
	return action
}

// CombineReducers builds a reducer over a map state where each key is owned by one reducer.
func CombineReducers(reducers map[string]Reducer) Reducer {
	return func(state any, action domain.Action) any {
		prev, _ := state.(map[string]any)
		next := make(map[string]any, len(reducers))
		for key, r := range reducers {
			next[key] = r(prev[key], action)
		}
		return next
	}
}
