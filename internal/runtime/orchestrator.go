package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/asyncfetch/internal/logging"
	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/aretw0/asyncfetch/pkg/ports"
	"github.com/google/uuid"
)

// errNoFetcher is reported as a failure when no network collaborator was configured.
var errNoFetcher = errors.New("no fetcher configured")

// errNoResponse is reported when a fetcher returns neither a response nor an error.
var errNoResponse = errors.New("fetcher returned no response")

// Orchestrator translates call envelopes into a REQUEST notification, a network call
// and a terminal SUCCESS or FAILURE notification.
// Its tables are never mutated after construction, so Handle is safe for concurrent use.
type Orchestrator struct {
	endpoints domain.EndpointTable
	verbs     domain.VerbTable
	fetcher   ports.Fetcher
	logger    *logging.Leveled
	hooks     domain.Hooks
	newID     func() string
	now       func() time.Time

	// passthrough is set once at construction when there is nothing to route to.
	passthrough bool
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithFetcher sets the network collaborator.
func WithFetcher(f ports.Fetcher) Option {
	return func(o *Orchestrator) {
		o.fetcher = f
	}
}

// WithLogger sets the leveled logger used for validation warnings.
func WithLogger(l *logging.Leveled) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithHooks registers lifecycle observability hooks.
func WithHooks(h domain.Hooks) Option {
	return func(o *Orchestrator) {
		o.hooks = h
	}
}

// WithIDGenerator overrides how call ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		o.newID = fn
	}
}

// NewOrchestrator builds an orchestrator over copies of the given tables.
// An empty endpoint table is logged once and turns the orchestrator into a permanent passthrough.
func NewOrchestrator(endpoints domain.EndpointTable, verbs domain.VerbTable, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		endpoints: endpoints.Clone(),
		verbs:     verbs.Merge(nil),
		logger:    logging.NewLeveled(nil),
		newID:     func() string { return uuid.New().String() },
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	if len(o.endpoints) == 0 {
		o.logger.Warn(domain.ErrNoEndpoints.Error())
		o.passthrough = true
	}
	return o
}

// Passthrough reports whether the orchestrator was built without endpoints.
func (o *Orchestrator) Passthrough() bool {
	return o.passthrough
}

// Middleware adapts Handle to the pipeline middleware shape.
func (o *Orchestrator) Middleware() ports.Middleware {
	return func(next ports.Dispatch) ports.Dispatch {
		return func(ctx context.Context, action domain.Action) any {
			return o.Handle(ctx, action, next)
		}
	}
}

// Handle processes one dispatched action and returns the result of the last forward to next.
//
// Untagged actions, envelopes that fail validation and every action seen in passthrough
// mode are forwarded unchanged, exactly once. A valid envelope is forwarded twice: a copy
// of its inner action before the network call, then the SUCCESS or FAILURE notification.
// Handle blocks until the terminal notification has been forwarded.
func (o *Orchestrator) Handle(ctx context.Context, action domain.Action, next ports.Dispatch) any {
	if o.passthrough {
		return next(ctx, action)
	}

	env, isCall, err := domain.DecodeEnvelope(action)
	if !isCall {
		return next(ctx, action)
	}
	if err != nil {
		o.logger.Warn(err.Error())
		o.firePassthrough(ctx, err.Error())
		return next(ctx, action)
	}

	if msgs := Validate(env.Action, o.verbs, o.endpoints); len(msgs) > 0 {
		for _, msg := range msgs {
			o.logger.Warn(msg)
		}
		o.firePassthrough(ctx, strings.Join(msgs, "; "))
		return next(ctx, action)
	}

	typ, _ := env.Action.Type()
	tok, _ := domain.ParseToken(typ)
	method, _ := o.verbs.Method(tok.Verb)
	base, _ := o.endpoints.URL(tok.Endpoint)
	url := ResolveURL(base, env.Params)

	event := &domain.CallEvent{
		Timestamp: o.now(),
		Type:      domain.EventRequest,
		ID:        o.newID(),
		Token:     tok,
		Method:    method,
		URL:       url,
	}

	// The request notification's own result is not ours to return.
	next(ctx, domain.RequestNotification(env.Action))
	o.fire(ctx, event)
	o.logger.Debug("calling endpoint", "id", event.ID, "method", method, "url", url)

	payload, err := o.call(ctx, url, method, env)

	done := *event
	done.Timestamp = o.now()
	done.Duration = done.Timestamp.Sub(event.Timestamp)

	if err != nil {
		done.Type = domain.EventFailure
		done.Error = err.Error()
		o.fire(ctx, &done)
		o.logger.Debug("call failed", "id", done.ID, "error", err)
		return next(ctx, domain.FailureNotification(env.Action, tok, err.Error()))
	}

	done.Type = domain.EventSuccess
	o.fire(ctx, &done)
	o.logger.Debug("call succeeded", "id", done.ID, "duration", done.Duration)
	return next(ctx, domain.SuccessNotification(env.Action, tok, payload))
}

// call performs the network call and decodes its payload.
// Panics raised by the fetcher or the decoder are reported as errors.
func (o *Orchestrator) call(ctx context.Context, url, method string, env domain.Envelope) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = fmt.Errorf("%v", r)
		}
	}()

	if o.fetcher == nil {
		return nil, errNoFetcher
	}

	req := ports.FetchRequest{
		Method:  method,
		Headers: mergeHeaders(env.Headers),
	}
	if env.HasBody() {
		body, err := json.Marshal(env.Body)
		if err != nil {
			return nil, err
		}
		req.Body = body
	}

	resp, err := o.fetcher.Fetch(ctx, url, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errNoResponse
	}
	return resp.JSON()
}

// fire runs the hooks for one event. A panicking hook is logged and otherwise ignored,
// so every call still ends with exactly one terminal notification.
func (o *Orchestrator) fire(ctx context.Context, e *domain.CallEvent) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("hook panicked", "event", e.Type, "id", e.ID, "panic", fmt.Sprint(r))
		}
	}()
	o.hooks.Fire(ctx, e)
}

func (o *Orchestrator) firePassthrough(ctx context.Context, reason string) {
	o.fire(ctx, &domain.CallEvent{
		Timestamp: o.now(),
		Type:      domain.EventPassthrough,
		Reason:    reason,
	})
}

// mergeHeaders applies caller headers over the defaults.
// Keys collide case-insensitively, as HTTP header names do.
func mergeHeaders(caller map[string]string) map[string]string {
	merged := map[string]string{"Content-Type": domain.DefaultContentType}
	for k, v := range caller {
		for existing := range merged {
			if strings.EqualFold(existing, k) {
				delete(merged, existing)
			}
		}
		merged[k] = v
	}
	return merged
}
