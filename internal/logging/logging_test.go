package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogLevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		configLvl LogLevel
		logLvl    LogLevel
		shouldLog bool
	}{
		{"debug logs debug", DebugLevel, DebugLevel, true},
		{"debug logs warn", DebugLevel, WarnLevel, true},
		{"info skips debug", InfoLevel, DebugLevel, false},
		{"info logs info", InfoLevel, InfoLevel, true},
		{"warn skips info", WarnLevel, InfoLevel, false},
		{"warn logs warn", WarnLevel, WarnLevel, true},
		{"error skips warn", ErrorLevel, WarnLevel, false},
		{"error logs error", ErrorLevel, ErrorLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewLogger(Config{Level: tt.configLvl, Output: buf})

			logger.log(tt.logLvl, "test message", nil)

			hasOutput := buf.Len() > 0
			if hasOutput != tt.shouldLog {
				t.Errorf("shouldLog = %v, but hasOutput = %v", tt.shouldLog, hasOutput)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"bogus", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("json") != JSONFormat {
		t.Error("ParseFormat(json) should return JSONFormat")
	}
	if ParseFormat("human") != HumanFormat {
		t.Error("ParseFormat(human) should return HumanFormat")
	}
	if ParseFormat("") != HumanFormat {
		t.Error("ParseFormat should default to HumanFormat")
	}
}

func TestJSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Config{
		Level:  InfoLevel,
		Format: JSONFormat,
		Output: buf,
	})

	logger.Info("reloaded module", map[string]interface{}{
		"module": "pkg.util",
		"index":  3,
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not valid JSON: %v\nOutput: %s", err, buf.String())
	}

	if entry["level"] != "info" {
		t.Errorf("level = %v, want 'info'", entry["level"])
	}
	if entry["message"] != "reloaded module" {
		t.Errorf("message = %v, want 'reloaded module'", entry["message"])
	}
	if entry["timestamp"] == nil {
		t.Error("timestamp should be present")
	}

	fields, ok := entry["fields"].(map[string]interface{})
	if !ok {
		t.Fatal("fields should be a map")
	}
	if fields["module"] != "pkg.util" {
		t.Errorf("fields.module = %v, want 'pkg.util'", fields["module"])
	}
}

func TestHumanFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Config{
		Level:  InfoLevel,
		Format: HumanFormat,
		Output: buf,
	})

	logger.Info("human readable", map[string]interface{}{
		"module": "pkg.a",
	})

	output := buf.String()
	if !strings.Contains(output, "[info]") {
		t.Errorf("Output should contain '[info]', got: %s", output)
	}
	if !strings.Contains(output, "human readable") {
		t.Errorf("Output should contain message, got: %s", output)
	}
	if !strings.Contains(output, "module=pkg.a") {
		t.Errorf("Output should contain field, got: %s", output)
	}
}

func TestHumanFormatFieldOrderStable(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Config{Level: InfoLevel, Format: HumanFormat, Output: buf})

	logger.Info("fields", map[string]interface{}{"c": 3, "a": 1, "b": 2})

	output := buf.String()
	ai := strings.Index(output, "a=1")
	bi := strings.Index(output, "b=2")
	ci := strings.Index(output, "c=3")
	if ai < 0 || bi < 0 || ci < 0 {
		t.Fatalf("missing fields in output: %s", output)
	}
	if !(ai < bi && bi < ci) {
		t.Errorf("fields should be sorted by key, got: %s", output)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	// Must not panic, must not write anywhere visible.
	logger.Error("dropped", nil)
	logger.Debug("dropped", map[string]interface{}{"k": "v"})
}
