package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected logrus.Level
	}{
		{"DEBUG", logrus.DebugLevel},
		{"debug", logrus.DebugLevel},
		{"INFO", logrus.InfoLevel},
		{"WARN", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"ERROR", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"verbose", logrus.InfoLevel},
	}

	for _, test := range tests {
		if got := ParseLevel(test.input); got != test.expected {
			t.Errorf("For input '%s', expected %s, got %s", test.input, test.expected, got)
		}
	}
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	Initialize("INFO", "json", &buf)

	WithError(errors.New("boom"), "geocoder").Warn("lookup failed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["component"] != "geocoder" {
		t.Errorf("Expected component 'geocoder', got %v", entry["component"])
	}
	if entry["error"] != "boom" {
		t.Errorf("Expected error 'boom', got %v", entry["error"])
	}
	if entry["msg"] != "lookup failed" {
		t.Errorf("Unexpected message %v", entry["msg"])
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	Initialize("WARN", "text", &buf)

	Debug("hidden", nil)
	Info("hidden", map[string]interface{}{"k": "v"})
	if buf.Len() != 0 {
		t.Errorf("Expected nothing logged below WARN, got %q", buf.String())
	}

	Warn("shown", nil)
	if buf.Len() == 0 {
		t.Error("Expected WARN entry to be written")
	}
}
