// Package logging provides the slog handler used by the commands: records
// are written through github.com/rs/zerolog, either as colored console lines
// or as JSON.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	// Level is the minimum level written.
	Level slog.Level

	// JSON selects one JSON object per line instead of console output.
	JSON bool

	// Out is the destination. Defaults to os.Stderr.
	Out io.Writer
}

// New returns a slog.Logger writing through zerolog.
func New(opts Options) *slog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.000"}
	}
	zl := zerolog.New(out).
		Level(zerologLevel(opts.Level)).
		With().
		Timestamp().
		Logger()
	return slog.New(NewHandler(zl))
}

// ParseLevel parses "debug", "info", "warn" or "error".
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
	}
	return l, nil
}

// Handler is a slog.Handler that writes records to a zerolog.Logger.
// Groups are flattened into dotted keys.
type Handler struct {
	logger zerolog.Logger
	prefix string
}

// NewHandler wraps logger.
func NewHandler(logger zerolog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	zl := zerologLevel(level)
	return zl >= h.logger.GetLevel() && zl >= zerolog.GlobalLevel()
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	ev := h.logger.WithLevel(zerologLevel(r.Level))
	if ev == nil {
		return nil
	}
	fields := make([]any, 0, 2*r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, h.prefix, a)
		return true
	})
	if len(fields) > 0 {
		ev = ev.Fields(fields)
	}
	ev.Msg(r.Message)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var fields []any
	for _, a := range attrs {
		fields = appendAttr(fields, h.prefix, a)
	}
	if len(fields) == 0 {
		return h
	}
	return &Handler{
		logger: h.logger.With().Fields(fields).Logger(),
		prefix: h.prefix,
	}
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{logger: h.logger, prefix: h.prefix + name + "."}
}

// appendAttr flattens a into key/value pairs for zerolog's Fields.
func appendAttr(fields []any, prefix string, a slog.Attr) []any {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		sub := prefix
		if a.Key != "" {
			sub = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			fields = appendAttr(fields, sub, ga)
		}
		return fields
	case slog.KindString:
		return append(fields, prefix+a.Key, a.Value.String())
	case slog.KindInt64:
		return append(fields, prefix+a.Key, a.Value.Int64())
	case slog.KindUint64:
		return append(fields, prefix+a.Key, a.Value.Uint64())
	case slog.KindFloat64:
		return append(fields, prefix+a.Key, a.Value.Float64())
	case slog.KindBool:
		return append(fields, prefix+a.Key, a.Value.Bool())
	case slog.KindDuration:
		return append(fields, prefix+a.Key, a.Value.Duration())
	case slog.KindTime:
		return append(fields, prefix+a.Key, a.Value.Time())
	default:
		v := a.Value.Any()
		if err, ok := v.(error); ok {
			return append(fields, prefix+a.Key, err.Error())
		}
		return append(fields, prefix+a.Key, v)
	}
}

func zerologLevel(l slog.Level) zerolog.Level {
	switch {
	case l < slog.LevelDebug:
		return zerolog.TraceLevel
	case l < slog.LevelInfo:
		return zerolog.DebugLevel
	case l < slog.LevelWarn:
		return zerolog.InfoLevel
	case l < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
