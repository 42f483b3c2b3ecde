package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel(" error "))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
	require.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestPrettyHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, FormatPretty, slog.LevelInfo)

	log.Debug("hidden")
	require.Empty(t, buf.String())

	log.With("category", "resumes").WithGroup("store").Error("write failed", "error", errors.New("disk full"))
	out := buf.String()
	require.Contains(t, out, "write failed")
	require.Contains(t, out, "category")
	require.Contains(t, out, "resumes")
	require.Contains(t, out, "store.error")
	require.Contains(t, out, "disk full")
}

func TestPrettyHandlerNilOptions(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	log.Debug("hidden")
	log.Info("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestJSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, "JSON", slog.LevelDebug).Debug("version uploaded", "version_id", "v-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "version uploaded", line["msg"])
	require.Equal(t, "v-1", line["version_id"])
}
