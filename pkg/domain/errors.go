package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidToken is the root of every action type parse failure.
var ErrInvalidToken = errors.New("invalid action type")

// ErrNoEndpoints is reported when the middleware is built with an empty endpoint table.
var ErrNoEndpoints = errors.New("no endpoints found, no subsequent action will be taken")

// ErrUnknownLevel is returned when a log level name is not recognized.
var ErrUnknownLevel = errors.New("unknown log level")

// TokenError describes why an action type could not be parsed into a Token.
type TokenError struct {
	Token  string
	Reason string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("action type %q: %s", e.Token, e.Reason)
}

// Is reports ErrInvalidToken as the error class of every TokenError.
func (e *TokenError) Is(target error) bool {
	return target == ErrInvalidToken
}
