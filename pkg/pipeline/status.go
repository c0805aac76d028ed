package pipeline

import (
	"maps"

	"github.com/aretw0/asyncfetch/pkg/domain"
)

const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// CallStatus is the last known outcome of one VERB_ENDPOINT pair.
type CallStatus struct {
	Status  string `json:"status"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusReducer tracks lifecycle notifications in a map[string]CallStatus keyed by VERB_ENDPOINT.
// Actions that are not lifecycle notifications leave the state untouched.
// Every change produces a new map so earlier states stay valid for readers.
func StatusReducer(state any, action domain.Action) any {
	prev, _ := state.(map[string]CallStatus)

	typ, ok := action.Type()
	if !ok {
		return stateOrEmpty(prev)
	}
	tok, err := domain.ParseToken(typ)
	if err != nil {
		return stateOrEmpty(prev)
	}
	step, ok := domain.ParseStep(tok.Step)
	if !ok {
		return stateOrEmpty(prev)
	}

	var next CallStatus
	switch step {
	case domain.StepRequest:
		next = CallStatus{Status: StatusPending}
	case domain.StepSuccess:
		next = CallStatus{Status: StatusSuccess, Payload: action[domain.KeyPayload]}
	case domain.StepFailure:
		msg, _ := action[domain.KeyError].(string)
		next = CallStatus{Status: StatusFailure, Error: msg}
	}

	out := maps.Clone(prev)
	if out == nil {
		out = make(map[string]CallStatus)
	}
	out[tok.Verb+domain.TokenSeparator+tok.Endpoint] = next
	return out
}

func stateOrEmpty(s map[string]CallStatus) map[string]CallStatus {
	if s == nil {
		return map[string]CallStatus{}
	}
	return s
}
