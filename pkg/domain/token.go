package domain

import (
	"slices"
	"strings"
)

// Step is the lifecycle phase encoded in the last segment of an action type.
type Step string

const (
	StepRequest Step = "REQUEST"
	StepSuccess Step = "SUCCESS"
	StepFailure Step = "FAILURE"
)

// Steps lists the lifecycle steps in the order they occur.
func Steps() []Step {
	return []Step{StepRequest, StepSuccess, StepFailure}
}

// ParseStep reports whether s names one of the lifecycle steps.
func ParseStep(s string) (Step, bool) {
	step := Step(s)
	if slices.Contains(Steps(), step) {
		return step, true
	}
	return "", false
}

// Token is the structured form of a VERB_ENDPOINT_STEP action type.
type Token struct {
	Verb     string
	Endpoint string
	Step     string
}

// String joins the segments back into an action type.
func (t Token) String() string {
	return t.Verb + TokenSeparator + t.Endpoint + TokenSeparator + t.Step
}

// WithStep returns the action type of the same verb and endpoint at another step.
func (t Token) WithStep(step Step) string {
	return Token{Verb: t.Verb, Endpoint: t.Endpoint, Step: string(step)}.String()
}

// ParseToken splits an action type into its verb, endpoint and step segments.
// It checks the shape only: exactly three non-empty segments. Membership of each
// segment in the configured tables is the validator's job.
func ParseToken(s string) (Token, error) {
	segments := strings.Split(s, TokenSeparator)

	nonEmpty := 0
	for _, seg := range segments {
		if seg != "" {
			nonEmpty++
		}
	}
	if nonEmpty != 3 {
		return Token{}, &TokenError{
			Token:  s,
			Reason: "it should match VERB_ENDPOINT_STEP (e.g. LOAD_ACTION_REQUEST)",
		}
	}

	// Positional, like the split itself: "LOAD__ACTION_REQUEST" has three
	// non-empty segments but an empty endpoint, which membership checks reject.
	return Token{
		Verb:     segments[0],
		Endpoint: segments[1],
		Step:     segments[2],
	}, nil
}
