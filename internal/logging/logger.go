package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/asyncfetch/pkg/domain"
)

// Prefix tags every emitted message with the middleware's name.
const Prefix = "[asyncfetch]: "

// Level names accepted in configuration, from most to least verbose.
const (
	LevelNameDebug = "debug"
	LevelNameInfo  = "info"
	LevelNameWarn  = "warn"
	LevelNameError = "error"
	LevelNameFatal = "fatal"
	LevelNameOff   = "off"
)

// LevelFatal sits above error so that configuring "fatal" mutes error output.
// LevelOff sits above everything that is ever emitted.
const (
	LevelFatal = slog.LevelError + 4
	LevelOff   = slog.LevelError + 8
)

// ParseLevel maps a configured level name onto a slog level.
// An empty name means off.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case LevelNameDebug:
		return slog.LevelDebug, nil
	case LevelNameInfo:
		return slog.LevelInfo, nil
	case LevelNameWarn:
		return slog.LevelWarn, nil
	case LevelNameError:
		return slog.LevelError, nil
	case LevelNameFatal:
		return LevelFatal, nil
	case LevelNameOff, "":
		return LevelOff, nil
	}
	return LevelOff, fmt.Errorf("%w: %q", domain.ErrUnknownLevel, name)
}

// New creates a configured application logger.
// It writes to Stderr (to separate from Stdout notification output).
func New(level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a logger writing to w.
// It standardizes common keys (e.g., "error" -> "err") and prefixes every message.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			if a.Key == slog.MessageKey && len(groups) == 0 {
				a.Value = slog.StringValue(Prefix + a.Value.String())
			}
			return a
		},
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Leveled exposes the five-method logging surface on top of a slog logger.
// Fatal is gated and emitted at error severity; it never exits the process.
type Leveled struct {
	logger *slog.Logger
}

// NewLeveled wraps logger. A nil logger yields a muted Leveled.
func NewLeveled(logger *slog.Logger) *Leveled {
	if logger == nil {
		logger = NewNop()
	}
	return &Leveled{logger: logger}
}

// Logger returns the underlying slog logger.
func (l *Leveled) Logger() *slog.Logger {
	return l.logger
}

func (l *Leveled) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *Leveled) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *Leveled) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *Leveled) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

func (l *Leveled) Fatal(msg string, args ...any) {
	l.logger.Log(context.Background(), slog.LevelError, msg, args...)
}
