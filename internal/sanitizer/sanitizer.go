// Package sanitizer turns raw action documents from remote callers into actions.
//
// A document is accepted when it fits the size limit, is valid UTF-8 and decodes to a
// JSON object. Control characters other than newline, tab and carriage return are
// dropped before decoding, so they never reach the pipeline or the logs.
package sanitizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/asyncfetch/pkg/domain"
)

const (
	// DefaultMaxInputSize bounds a single action document.
	DefaultMaxInputSize = 64 * 1024
	// EnvMaxInputSize overrides DefaultMaxInputSize.
	EnvMaxInputSize = "ASYNCFETCH_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("action document exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("action document contains invalid UTF-8 sequences")
	ErrNotObject     = errors.New("action document is not a JSON object")
)

// ParseAction checks and decodes one action document.
func ParseAction(raw []byte) (domain.Action, error) {
	clean, err := Clean(raw)
	if err != nil {
		return nil, err
	}

	var action domain.Action
	if err := json.Unmarshal(clean, &action); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if action == nil {
		return nil, ErrNotObject
	}
	return action, nil
}

// Clean enforces the size limit and UTF-8 validity and strips control characters.
// Documents that need no stripping are returned as is.
func Clean(raw []byte) ([]byte, error) {
	if limit := MaxInputSize(); len(raw) > limit {
		return nil, fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(raw), limit)
	}
	if !utf8.Valid(raw) {
		return nil, ErrInvalidUTF8
	}
	if !strings.ContainsFunc(string(raw), isStripped) {
		return raw, nil
	}
	return []byte(strings.Map(func(r rune) rune {
		if isStripped(r) {
			return -1
		}
		return r
	}, string(raw))), nil
}

func isStripped(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

// MaxInputSize returns the configured limit in bytes.
func MaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
