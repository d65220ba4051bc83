package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer

	New(&buf, "warn", "json").Info("hidden")
	assert.Zero(t, buf.Len())

	New(&buf, "warn", "JSON").Warn("shown", "rows", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.EqualValues(t, 3, entry["rows"])
}

func TestFromContextRunID(t *testing.T) {
	var buf bytes.Buffer

	prev := slog.Default()
	slog.SetDefault(New(&buf, "info", "json"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	id := NewRunID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	ctx := WithRunID(context.Background(), id)
	assert.Equal(t, id, RunID(ctx))
	assert.Empty(t, RunID(context.Background()))

	WithFields(ctx, "sheet", "Rates").Info("run started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, id, entry["run_id"])
	assert.Equal(t, "Rates", entry["sheet"])
}

func TestSetupWritesToGivenWriter(t *testing.T) {
	var buf bytes.Buffer

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	Setup(&buf, "info", "text")
	slog.Info("configured", "rows", 2)

	assert.Contains(t, buf.String(), "msg=configured")
	assert.Contains(t, buf.String(), "rows=2")
}
