package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "json", &buf)

	log.Debug("hidden")
	log.Info("replaced", MenuID("m1"), Created(3), Purged(5))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec), "only the info record is written")
	assert.Equal(t, "replaced", rec["msg"])
	assert.Equal(t, "m1", rec[KeyMenuID])
	assert.Equal(t, float64(3), rec[KeyCreated])
	assert.Equal(t, float64(5), rec[KeyPurged])
	assert.NotContains(t, rec, slog.SourceKey)
}

func TestNewTextDebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "anything", &buf)
	log.Debug("phase", Phase("purging"))

	out := buf.String()
	assert.Contains(t, out, "phase=purging")
	assert.Contains(t, out, "source=")
}

func TestErrorAttr(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, KeyError, Error(nil).Key)
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.NotPanics(t, func() { log.Error("dropped", Error(errors.New("x"))) })
}
