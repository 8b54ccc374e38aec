//go:build unit

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"go-blog-app/internal/config"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	t.Run("console format", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.LogConfig{Level: "info", Format: "console"}
		log := New(cfg, &buf)

		log.Info("hello world")

		output := buf.String()
		if !strings.Contains(output, "hello world") {
			t.Errorf("expected log output to contain 'hello world', but got '%s'", output)
		}
		if strings.Contains(output, "{") {
			t.Errorf("expected console format, but got json-like output: %s", output)
		}
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.LogConfig{Level: "error", Format: "json"}
		log := New(cfg, &buf)

		testErr := errors.New("test error")
		log.Error(testErr, "an error occurred")

		output := buf.String()
		var logEntry map[string]interface{}
		if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
			t.Fatalf("expected valid json output, got '%s': %v", output, err)
		}
		if logEntry["message"] != "an error occurred" {
			t.Errorf("expected message 'an error occurred', got '%v'", logEntry["message"])
		}
		if logEntry["error"] != "test error" {
			t.Errorf("expected error 'test error', got '%v'", logEntry["error"])
		}
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.LogConfig{Level: "warn", Format: "json"}
		log := New(cfg, &buf)

		log.Info("should be filtered")
		if buf.Len() != 0 {
			t.Errorf("expected info to be filtered at warn level, got '%s'", buf.String())
		}

		log.Warn("should appear")
		if !strings.Contains(buf.String(), "should appear") {
			t.Errorf("expected warn output, got '%s'", buf.String())
		}
	})

	t.Run("invalid level defaults to info", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.LogConfig{Level: "bogus", Format: "json"}
		log := New(cfg, &buf)

		log.Info("still logged")
		if !strings.Contains(buf.String(), "still logged") {
			t.Errorf("expected info output with default level, got '%s'", buf.String())
		}
	})

	t.Run("with fields", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.LogConfig{Level: "info", Format: "json"}
		log := New(cfg, &buf).With(map[string]interface{}{"request_id": "abc123"})

		log.Info("tagged")

		var logEntry map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
			t.Fatalf("expected valid json output, got '%s': %v", buf.String(), err)
		}
		if logEntry["request_id"] != "abc123" {
			t.Errorf("expected request_id field, got '%v'", logEntry["request_id"])
		}
	})
}
