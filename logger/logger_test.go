package logger

import (
	"errors"
	"testing"
	"time"
)

var errTest = errors.New("boom")

func TestConfigApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level info, got %s", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format console, got %s", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output stdout, got %s", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{Level: "info", Format: "json"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg = &Config{Level: "verbose", Format: "json"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid level")
	}

	cfg = &Config{Level: "info", Format: "xml"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestNewDefault(t *testing.T) {
	log := NewDefault("test")
	if log == nil {
		t.Fatal("expected non-nil logger")
	}

	tagged := log.WithComponent("sharing")
	if tagged == nil {
		t.Fatal("expected non-nil component logger")
	}
	// Must not mutate the original.
	if tagged == log {
		t.Error("WithComponent should return a new logger")
	}
}

func TestDerivedLoggers(t *testing.T) {
	log := NewDefault("test")

	tagged := log.WithFields(map[string]interface{}{FieldPort: 47842})
	if tagged == nil || tagged == log {
		t.Error("WithFields should return a new logger")
	}

	withErr := log.WithError(errTest)
	if withErr == nil || withErr == log {
		t.Error("WithError should return a new logger")
	}
}

func TestDurationFields(t *testing.T) {
	m := DurationFields("transcribe", 1500*time.Millisecond)
	if m[FieldOperation] != "transcribe" {
		t.Errorf("expected operation transcribe, got %v", m[FieldOperation])
	}
	if m[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", m[FieldDuration])
	}
}

func TestFields(t *testing.T) {
	m := Fields("port", 47842, "model", "base.en")
	if m["port"] != 47842 {
		t.Errorf("expected port 47842, got %v", m["port"])
	}
	if m["model"] != "base.en" {
		t.Errorf("expected model base.en, got %v", m["model"])
	}

	// Odd trailing key is dropped.
	m = Fields("a", 1, "dangling")
	if len(m) != 1 {
		t.Errorf("expected 1 field, got %d", len(m))
	}
}
