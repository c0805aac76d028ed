package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/aretw0/asyncfetch/pkg/ports"
)

// Mask replaces every redacted value.
const Mask = "***"

// DefaultRedactPatterns cover credentials commonly carried in call headers and bodies.
var DefaultRedactPatterns = []string{"(?i)authorization", "(?i)password", "(?i)secret", "(?i)api[-_]?key", "(?i)cookie"}

type piiMiddleware struct {
	next     ports.Journal
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks values of keys matching the patterns
// before they are appended. Nested maps, header maps and slices are walked.
// It panics if a pattern does not compile; use CompilePatterns to check them first.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.Journal) ports.Journal {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

// CompilePatterns reports the first pattern that is not a valid regular expression.
func CompilePatterns(patternStrings []string) error {
	for _, p := range patternStrings {
		if _, err := regexp.Compile(p); err != nil {
			return err
		}
	}
	return nil
}

func (m *piiMiddleware) Append(ctx context.Context, stream string, action domain.Action) error {
	// The dispatched action is still flowing through the pipeline; never touch it.
	masked := maskValue(map[string]any(action), m.patterns).(map[string]any)
	return m.next.Append(ctx, stream, domain.Action(masked))
}

func (m *piiMiddleware) Entries(ctx context.Context, stream string) ([]domain.Action, error) {
	return m.next.Entries(ctx, stream)
}

func (m *piiMiddleware) Clear(ctx context.Context, stream string) error {
	return m.next.Clear(ctx, stream)
}

// maskValue returns a copy of v with matching keys masked at any depth.
func maskValue(v any, patterns []*regexp.Regexp) any {
	switch t := v.(type) {
	case domain.Action:
		return domain.Action(maskValue(map[string]any(t), patterns).(map[string]any))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if matches(k, patterns) {
				out[k] = Mask
				continue
			}
			out[k] = maskValue(val, patterns)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, val := range t {
			if matches(k, patterns) {
				val = Mask
			}
			out[k] = val
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = maskValue(val, patterns)
		}
		return out
	default:
		return v
	}
}

func matches(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
