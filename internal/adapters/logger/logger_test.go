package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/daybook/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger returns a logger writing uncolored output to a buffer.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Levels(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Info("Todo updated")
	lg.Warn("No changes to save")

	assert.Equal(t, "Todo updated\n! No changes to save\n", buf.String())
}

func TestLogger_ErrorPrintsChain(t *testing.T) {
	lg, buf := newTestLogger(t)

	inner := zerr.Wrap(errors.New("connection refused"), "failed to query entities")
	lg.Error(zerr.Wrap(inner, "failed to load todos/42"))

	want := "✗ Error: failed to load todos/42\n" +
		"\n" +
		"  Caused by:\n" +
		"    → failed to query entities\n" +
		"    → connection refused\n"
	assert.Equal(t, want, buf.String())
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Error(errors.New("boom"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "operation failed", record["msg"])
	assert.Equal(t, "boom", record["error"])

	buf.Reset()
	lg.SetJSON(false)
	lg.Info("back to pretty")
	assert.Equal(t, "back to pretty\n", buf.String())
}

func TestCollectMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{name: "standard error", err: errors.New("simple"), want: []string{"simple"}},
		{name: "zerr error", err: zerr.New("zerr error"), want: []string{"zerr error"}},
		{
			name: "wrapped chain",
			err:  zerr.Wrap(zerr.Wrap(errors.New("root cause"), "middle layer"), "outer layer"),
			want: []string{"outer layer", "middle layer", "root cause"},
		},
		{name: "nil", err: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.CollectMessages(tt.err))
		})
	}
}

func TestFormatMessages(t *testing.T) {
	tests := []struct {
		name     string
		messages []string
		want     string
	}{
		{name: "single", messages: []string{"single error"}, want: "Error: single error"},
		{
			name:     "cause",
			messages: []string{"outer error", "inner error"},
			want:     "Error: outer error\n\n  Caused by:\n    → inner error",
		},
		{
			name:     "multiline",
			messages: []string{"line1\nline2", "cause line1\ncause line2"},
			want:     "Error: line1\n       line2\n\n  Caused by:\n    → cause line1\n      cause line2",
		},
		{name: "empty", messages: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatMessages(tt.messages))
		})
	}
}

func TestPrettyHandler_AttrsAndLevel(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	h := logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	lg := slog.New(h.WithAttrs([]slog.Attr{slog.String("key", "todos/42")}).WithGroup("span"))

	lg.Debug("hidden")
	lg.Info("confirmed", "generation", 3)

	assert.Equal(t, "[todos/42] confirmed span.generation=3\n", buf.String())
}

func TestPrettyHandler_GroupsNest(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, nil)).WithGroup("mutation").WithGroup("cache")

	lg.Warn("rolled back", "key", "todos/42", slog.Group("gen", "from", 2, "to", 3), slog.Attr{})

	assert.Equal(t, "! rolled back mutation.cache.key=todos/42 mutation.cache.gen.from=2 mutation.cache.gen.to=3\n", buf.String())
}

func TestLogger_ErrorCarriesEntityKey(t *testing.T) {
	lg, buf := newTestLogger(t)

	err := zerr.With(zerr.Wrap(errors.New("connection refused"), "failed to load entity"), "key", "todos/42")
	lg.Error(zerr.Wrap(err, "show todos/42"))

	want := "✗ [todos/42] Error: show todos/42\n" +
		"\n" +
		"  Caused by:\n" +
		"    → failed to load entity\n" +
		"    → connection refused\n"
	assert.Equal(t, want, buf.String())
}
