package pubscrape

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("console format", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger("info", "console", &buf)

		log.Info().Msg("hello world")

		output := buf.String()
		if !strings.Contains(output, "hello world") {
			t.Errorf("expected log output to contain 'hello world', got %q", output)
		}
		if strings.Contains(output, "{") {
			t.Errorf("expected console format, got json-like output: %s", output)
		}
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger("error", "json", &buf)

		log.Error().Err(errors.New("test error")).Msg("an error occurred")

		var entry map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("failed to unmarshal log output as json: %v\noutput: %s", err, buf.String())
		}
		if entry["level"] != "error" {
			t.Errorf("level = %v, want error", entry["level"])
		}
		if entry["message"] != "an error occurred" {
			t.Errorf("message = %v, want 'an error occurred'", entry["message"])
		}
		if entry["error"] != "test error" {
			t.Errorf("error = %v, want 'test error'", entry["error"])
		}
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger("warn", "console", &buf)

		log.Info().Msg("this should be ignored")
		log.Warn().Msg("this should appear")

		output := buf.String()
		if strings.Contains(output, "this should be ignored") {
			t.Error("info level log should have been ignored")
		}
		if !strings.Contains(output, "this should appear") {
			t.Error("warn level log should have appeared")
		}
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger("loud", "json", &buf)

		log.Debug().Msg("debug hidden")
		log.Info().Msg("info shown")

		output := buf.String()
		if !strings.Contains(output, "Invalid log level") {
			t.Errorf("expected a warning about the level, got %q", output)
		}
		if strings.Contains(output, "debug hidden") || !strings.Contains(output, "info shown") {
			t.Errorf("unexpected filtering: %q", output)
		}
	})
}
