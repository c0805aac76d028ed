package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/aretw0/asyncfetch/pkg/pipeline"
)

// ErrCallFailed is returned by RunCall when the call ended with a FAILURE notification.
var ErrCallFailed = errors.New("call failed")

// RunCall dispatches a call envelope and waits for its terminal notification.
// Validation problems are returned as an error instead of being forwarded silently.
func RunCall(ctx context.Context, app *App, action domain.Action) (domain.Action, error) {
	env, isCall, err := domain.DecodeEnvelope(action)
	if !isCall {
		return nil, fmt.Errorf("action is not tagged as a call")
	}
	if err != nil {
		return nil, err
	}
	if msgs := app.Middleware.Validate(env.Action); len(msgs) > 0 {
		return nil, &ValidationError{Messages: msgs}
	}

	result, _ := app.Store.Dispatch(ctx, action).(domain.Action)
	typ, _ := result.Type()
	tok, err := domain.ParseToken(typ)
	if err == nil && tok.Step == string(domain.StepFailure) {
		msg, _ := result[domain.KeyError].(string)
		return result, fmt.Errorf("%w: %s", ErrCallFailed, msg)
	}
	return result, nil
}

// ValidationError lists why an action would not be translated into a call.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 1 {
		return e.Messages[0]
	}
	return fmt.Sprintf("%s (and %d more)", e.Messages[0], len(e.Messages)-1)
}

// CallStatuses returns the status of every call made through the app.
func CallStatuses(app *App) map[string]pipeline.CallStatus {
	s, _ := app.Store.State().(map[string]pipeline.CallStatus)
	return s
}
