package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestNewLoopLogger(t *testing.T) {
	dl := NewLoopLogger(zerolog.New(&bytes.Buffer{}), "")

	if dl == nil {
		t.Fatal("expected non-nil LoopLogger")
	}
}

func TestLoopLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	dl := NewLoopLogger(zerolog.New(&buf).Level(zerolog.DebugLevel), "")

	dl.Debug("test message", "key1", "value1", "key2", 42)

	entry := decodeLine(t, &buf)
	if entry["level"] != "debug" {
		t.Errorf("expected level 'debug', got %v", entry["level"])
	}
	if entry["message"] != "test message" {
		t.Errorf("expected message 'test message', got %v", entry["message"])
	}
	if entry["component"] != "loop" {
		t.Errorf("expected component 'loop', got %v", entry["component"])
	}
	if entry["key1"] != "value1" {
		t.Errorf("expected key1='value1', got %v", entry["key1"])
	}
	if entry["key2"] != float64(42) {
		t.Errorf("expected key2=42, got %v", entry["key2"])
	}
}

func TestLoopLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	dl := NewLoopLogger(zerolog.New(&buf), "")

	dl.Info("info message", "status", "ok")

	entry := decodeLine(t, &buf)
	if entry["level"] != "info" {
		t.Errorf("expected level 'info', got %v", entry["level"])
	}
	if entry["status"] != "ok" {
		t.Errorf("expected status='ok', got %v", entry["status"])
	}
}

func TestLoopLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	dl := NewLoopLogger(zerolog.New(&buf), "")

	dl.Error("error message", "error", errors.New("something failed"))

	entry := decodeLine(t, &buf)
	if entry["level"] != "error" {
		t.Errorf("expected level 'error', got %v", entry["level"])
	}
	if entry["error"] != "something failed" {
		t.Errorf("expected error='something failed', got %v", entry["error"])
	}
}

func TestLoopLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	dl := NewLoopLogger(zerolog.New(&buf).Level(zerolog.InfoLevel), "")

	dl.Debug("hidden")

	if buf.Len() != 0 {
		t.Errorf("expected debug to be filtered, got %q", buf.String())
	}
}

func TestLoopLogger_OddKeyValues(t *testing.T) {
	var buf bytes.Buffer
	dl := NewLoopLogger(zerolog.New(&buf), "")

	dl.Info("odd", "only", "pair", 7, "x", "ignored")

	entry := decodeLine(t, &buf)
	if entry["only"] != "pair" {
		t.Errorf("expected only='pair', got %v", entry["only"])
	}
	if _, ok := entry["ignored"]; ok {
		t.Error("dangling key should be dropped")
	}
	if _, ok := entry["7"]; ok {
		t.Error("non-string key should be dropped")
	}
}

func TestLoopLogger_Session(t *testing.T) {
	var buf bytes.Buffer
	dl := NewLoopLogger(zerolog.New(&buf), "s-42")

	dl.Info("started")

	entry := decodeLine(t, &buf)
	if entry["session"] != "s-42" {
		t.Errorf("expected session='s-42', got %v", entry["session"])
	}
	if entry["component"] != "loop" {
		t.Errorf("expected component 'loop', got %v", entry["component"])
	}
}

func TestNewZerolog(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, "WARN")

	log.Info().Msg("quiet")
	log.Warn().Msg("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"time":`) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestNewZerolog_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, "chatty")

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
