package sanitizer

import (
	"strings"
	"testing"

	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// document builds a valid JSON object of exactly n bytes.
func document(n int) []byte {
	const frame = `{"type":""}`
	return []byte(`{"type":"` + strings.Repeat("a", n-len(frame)) + `"}`)
}

func TestParseAction_SizeLimit(t *testing.T) {
	limit := DefaultMaxInputSize

	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAction(document(tt.size))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInputTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  domain.Action
	}{
		{"Plain", `{"type":"LOAD_TODOS_REQUEST"}`, domain.Action{"type": "LOAD_TODOS_REQUEST"}},
		{"Whitespace kept", "{\n\t\"type\": \"X\"\r\n}", domain.Action{"type": "X"}},
		{"ANSI stripped", "{\"type\":\"\x1b[31mX\x1b[0m\"}", domain.Action{"type": "[31mX[0m"}},
		{"Null byte stripped", "{\"type\":\"X\"}\x00", domain.Action{"type": "X"}},
		{"Bell stripped", "\x07{\"type\":\"X\"}", domain.Action{"type": "X"}},
		{"Envelope", `{"Call API":{"type":"LOAD_TODOS_REQUEST"},"params":{"id":1}}`, domain.Action{
			"Call API": map[string]any{"type": "LOAD_TODOS_REQUEST"},
			"params":   map[string]any{"id": float64(1)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAction([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAction_NotObject(t *testing.T) {
	for _, raw := range []string{"", "nope", "null", "[]", `"LOAD_TODOS_REQUEST"`, "42"} {
		_, err := ParseAction([]byte(raw))
		assert.ErrorIs(t, err, ErrNotObject, "raw %q", raw)
	}
}

func TestParseAction_InvalidUTF8(t *testing.T) {
	_, err := ParseAction([]byte("{\"type\":\"\xbd\xb2\"}"))
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestClean_ReturnsInputWhenNothingToStrip(t *testing.T) {
	raw := []byte(`{"type":"X"}`)
	got, err := Clean(raw)
	require.NoError(t, err)
	assert.Same(t, &raw[0], &got[0])
}

func TestMaxInputSize(t *testing.T) {
	t.Run("Override", func(t *testing.T) {
		t.Setenv(EnvMaxInputSize, "16")
		assert.Equal(t, 16, MaxInputSize())

		_, err := ParseAction([]byte(`{"type":"LOAD_TODOS"}`))
		assert.ErrorIs(t, err, ErrInputTooLarge)
		_, err = ParseAction([]byte(`{"type":"X"}`))
		assert.NoError(t, err)
	})

	t.Run("Invalid override ignored", func(t *testing.T) {
		for _, v := range []string{"abc", "0", "-5"} {
			t.Setenv(EnvMaxInputSize, v)
			assert.Equal(t, DefaultMaxInputSize, MaxInputSize(), v)
		}
	})
}
