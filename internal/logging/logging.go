// Package logging builds the slog loggers used by menuctl and the
// synchronizer, and defines the canonical attribute keys they log with.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Canonical log field names.
const (
	KeyMenuID   = "menu_id"
	KeyPhase    = "phase"
	KeyCreated  = "created"
	KeyPurged   = "purged"
	KeyDuration = "duration_ms"
	KeyError    = "error"
)

// Output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

func MenuID(id string) slog.Attr      { return slog.String(KeyMenuID, id) }
func Phase(p string) slog.Attr        { return slog.String(KeyPhase, p) }
func Created(n int) slog.Attr         { return slog.Int(KeyCreated, n) }
func Purged(n int64) slog.Attr        { return slog.Int64(KeyPurged, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDuration, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// New returns a logger writing to w at the given level. format is "json" or
// "text"; anything else falls back to text. Source locations are added at
// debug level only.
func New(level, format string, w io.Writer) *slog.Logger {
	lev := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lev,
		AddSource: lev <= slog.LevelDebug,
	}

	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), FormatJSON) {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a level name into a slog.Level. Unrecognized names
// yield slog.LevelInfo.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
