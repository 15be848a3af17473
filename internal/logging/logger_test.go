package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

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
	for _, tc := range tests {
		require.Equal(t, tc.want, ParseLevel(tc.in), tc.in)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "json", &buf)

	log.Debug("hidden")
	log.Info("message_created", "id", "abc")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	require.Equal(t, "INFO", rec["level"])
	require.Equal(t, "message_created", rec["msg"])
	require.Equal(t, "abc", rec["id"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "TEXT", &buf)

	log.With("req_id", "r1").DebugContext(context.Background(), "dbg", "k", "v")

	out := buf.String()
	for _, s := range []string{"level=DEBUG", "msg=dbg", "req_id=r1", "k=v"} {
		require.Contains(t, out, s)
	}
}
