package ports

import (
	"context"

	"github.com/aretw0/asyncfetch/pkg/domain"
)

// Journal records dispatched actions so they can be replayed or inspected.
type Journal interface {
	// Append records an action at the end of the named stream.
	Append(ctx context.Context, stream string, action domain.Action) error

	// Entries returns the actions of a stream in dispatch order.
	// An unknown stream yields an empty slice.
	Entries(ctx context.Context, stream string) ([]domain.Action, error)

	// Clear removes every entry of a stream.
	Clear(ctx context.Context, stream string) error
}
