package ports

import (
	"context"

	"github.com/aretw0/asyncfetch/pkg/domain"
)

// Dispatch forwards an action to the next pipeline stage and returns that stage's result.
type Dispatch func(ctx context.Context, action domain.Action) any

// Middleware wraps the next Dispatch to add behavior.
type Middleware func(next Dispatch) Dispatch
