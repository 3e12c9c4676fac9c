package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func consoleLogger(t *testing.T, level slog.Level) (*Logger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	log := New(Config{
		Level:  level,
		Format: "pretty",
		Writer: &buf,
	})
	return log, &buf
}

func TestNew_DefaultWriter(t *testing.T) {
	log := New(Config{
		Level:  slog.LevelInfo,
		Format: "json",
	})
	require.NotNil(t, log)
	require.NotNil(t, log.Logger)
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Level:  slog.LevelInfo,
		Format: "json",
		Writer: &buf,
	})

	log.Info("test message", "book_id", "book-1")

	output := buf.String()
	assert.Contains(t, output, `"msg":"test message"`)
	assert.Contains(t, output, `"level":"INFO"`)
	assert.Contains(t, output, `"book_id":"book-1"`)
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{"production uses json", "production", true},
		{"development uses pretty", "development", false},
		{"staging uses pretty", "staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{
				Level:       slog.LevelInfo,
				Environment: tt.environment,
				Writer:      &buf,
			})

			log.Info("test")

			output := buf.String()
			if tt.wantJSON {
				assert.Contains(t, output, `"msg":"test"`)
			} else {
				assert.Contains(t, output, ansiBold)
				assert.Contains(t, output, "test")
			}
		})
	}
}

func TestNew_ExplicitFormatWins(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Level:       slog.LevelInfo,
		Format:      "json",
		Environment: "development",
		Writer:      &buf,
	})

	log.Info("test")

	assert.Contains(t, buf.String(), `"msg":"test"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestConsole_LevelTags(t *testing.T) {
	log, buf := consoleLogger(t, slog.LevelDebug)

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	output := buf.String()
	assert.Contains(t, output, "DBG")
	assert.Contains(t, output, "INF")
	assert.Contains(t, output, "WRN")
	assert.Contains(t, output, "ERR")
}

func TestConsole_LevelFiltering(t *testing.T) {
	log, buf := consoleLogger(t, slog.LevelWarn)

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestConsole_Attributes(t *testing.T) {
	log, buf := consoleLogger(t, slog.LevelInfo)

	log.Info("borrowed",
		"book_id", "book-1",
		"count", 42,
		"open", true,
		"elapsed", 5*time.Second,
	)

	output := buf.String()
	assert.Contains(t, output, "book_id=book-1")
	assert.Contains(t, output, "count=42")
	assert.Contains(t, output, "open=true")
	assert.Contains(t, output, "elapsed=5s")
}

func TestConsole_BoundAttrsComeFirst(t *testing.T) {
	log, buf := consoleLogger(t, slog.LevelInfo)

	log.With("request_id", "req-1").Info("handled", "status", 200)

	output := buf.String()
	reqIdx := strings.Index(output, "request_id=req-1")
	statusIdx := strings.Index(output, "status=200")
	require.GreaterOrEqual(t, reqIdx, 0)
	require.GreaterOrEqual(t, statusIdx, 0)
	assert.Less(t, reqIdx, statusIdx, "bound attrs should render before record attrs")
}

func TestConsole_NoAttributes(t *testing.T) {
	log, buf := consoleLogger(t, slog.LevelInfo)

	log.Info("simple message")

	output := buf.String()
	_, rest, found := strings.Cut(output, "simple message")
	require.True(t, found)
	assert.NotContains(t, rest, "=")
}

func TestConsole_EmptyMessage(t *testing.T) {
	log, buf := consoleLogger(t, slog.LevelInfo)

	log.Info("")

	output := buf.String()
	assert.Contains(t, output, "INF")
	assert.True(t, strings.HasSuffix(output, "\n"))
}

func TestConsole_AddSource(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Level:     slog.LevelInfo,
		Format:    "pretty",
		Writer:    &buf,
		AddSource: true,
	})

	log.Info("test message")

	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestConsole_TimePrefix(t *testing.T) {
	log, buf := consoleLogger(t, slog.LevelInfo)

	log.Info("test message")

	// The line opens with a dim HH:MM:SS stamp.
	output := strings.TrimPrefix(buf.String(), ansiDim)
	require.GreaterOrEqual(t, len(output), 8)
	_, err := time.Parse("15:04:05", output[:8])
	assert.NoError(t, err)
}

func TestJSON_AddSourceShortensPath(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Level:     slog.LevelInfo,
		Format:    "json",
		Writer:    &buf,
		AddSource: true,
	})

	log.Info("test message")

	output := buf.String()
	assert.Contains(t, output, `"file":"logger_test.go"`)
	assert.NotContains(t, output, "/logger_test.go")
}
