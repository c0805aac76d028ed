package domain

import (
	"fmt"
	"maps"
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Action is a dispatched unit travelling through the pipeline.
// Plain actions carry a "type" field; call envelopes carry a CallAPI field instead.
type Action map[string]any

// Type returns the action type and whether the field is present and a string.
func (a Action) Type() (string, bool) {
	t, ok := a[KeyType].(string)
	return t, ok
}

// Clone returns a shallow copy of the action.
func (a Action) Clone() Action {
	if a == nil {
		return Action{}
	}
	return maps.Clone(a)
}

// IsCall reports whether the action is tagged as a call to translate.
func (a Action) IsCall() bool {
	v, ok := a[CallAPI]
	return ok && v != nil
}

// Envelope is the decoded form of a call action.
type Envelope struct {
	Action  Action            `mapstructure:"Call API"`
	Body    any               `mapstructure:"body"`
	Headers map[string]string `mapstructure:"headers"`
	Params  any               `mapstructure:"params"`
}

// HasBody reports whether a request body should be sent.
// Nil and zero scalars (false, "", any zero or NaN number) count as absent.
func (e Envelope) HasBody() bool {
	if e.Body == nil {
		return false
	}
	v := reflect.ValueOf(e.Body)
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// DecodeEnvelope extracts the call envelope carried by a.
// It returns false when a is not tagged with CallAPI.
func DecodeEnvelope(a Action) (Envelope, bool, error) {
	if !a.IsCall() {
		return Envelope{}, false, nil
	}

	var env Envelope
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &env,
	})
	if err != nil {
		return Envelope{}, true, fmt.Errorf("failed to build envelope decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(a)); err != nil {
		return Envelope{}, true, fmt.Errorf("failed to decode call envelope: %w", err)
	}
	if env.Action == nil {
		env.Action = Action{}
	}
	return env, true, nil
}

// RequestNotification is the copy of the inner action forwarded before the call.
func RequestNotification(inner Action) Action {
	return inner.Clone()
}

// SuccessNotification spreads the inner action, attaches the payload and rewrites the type.
func SuccessNotification(inner Action, tok Token, payload any) Action {
	n := inner.Clone()
	n[KeyPayload] = payload
	n[KeyType] = tok.WithStep(StepSuccess)
	return n
}

// FailureNotification spreads the inner action, attaches the error text and rewrites the type.
func FailureNotification(inner Action, tok Token, message string) Action {
	n := inner.Clone()
	n[KeyError] = message
	n[KeyType] = tok.WithStep(StepFailure)
	return n
}
