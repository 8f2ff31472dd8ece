package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditionalSourceHandler(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		withSource []slog.Level
		wantSource bool
	}{
		{name: "info is plain by default", level: slog.LevelInfo, withSource: []slog.Level{slog.LevelWarn, slog.LevelError}, wantSource: false},
		{name: "warn carries source", level: slog.LevelWarn, withSource: []slog.Level{slog.LevelWarn, slog.LevelError}, wantSource: true},
		{name: "error carries source", level: slog.LevelError, withSource: []slog.Level{slog.LevelWarn, slog.LevelError}, wantSource: true},
		{name: "debug mode shows source on info", level: slog.LevelInfo, withSource: []slog.Level{slog.LevelDebug, slog.LevelInfo}, wantSource: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			log := slog.New(NewConditionalSourceHandler(base, tt.withSource...))

			log.Log(context.Background(), tt.level, "sweep finished", "count", 3)

			assert.Equal(t, tt.wantSource, bytes.Contains(buf.Bytes(), []byte("source=")), buf.String())
			assert.Contains(t, buf.String(), "count=3")
		})
	}
}

func TestConditionalSourceHandler_KeepsAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, nil)
	log := slog.New(NewConditionalSourceHandler(base, slog.LevelError)).
		With("user_id", 42).
		WithGroup("webhook")

	log.Info("event received", "event", "payment.captured")

	out := buf.String()
	assert.Contains(t, out, "user_id=42")
	assert.Contains(t, out, "webhook.event=payment.captured")
	assert.NotContains(t, out, "source=")
}

func TestConditionalSourceHandler_RespectsBaseLevel(t *testing.T) {
	base := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})
	h := NewConditionalSourceHandler(base, slog.LevelError)

	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
