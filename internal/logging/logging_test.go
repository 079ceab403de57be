package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WarnLevel, HumanFormat, &buf)

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")
	logger.Error("also kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("sub-threshold message logged:\n%s", out)
	}
	if !strings.Contains(out, "kept") || !strings.Contains(out, "also kept") {
		t.Errorf("threshold message missing:\n%s", out)
	}
}

func TestHumanFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(InfoLevel, HumanFormat, &buf)

	logger.Info("harvest finished", F("models", 12), F("cacheHits", 3))

	out := buf.String()
	if !strings.Contains(out, "[info] harvest finished") {
		t.Errorf("missing level and message:\n%s", out)
	}
	if !strings.Contains(out, "models=12, cacheHits=3") {
		t.Errorf("fields not rendered in call order:\n%s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(InfoLevel, JSONFormat, &buf)

	logger.Warn("file skipped", F("path", "models/bad.py"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, buf.String())
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["message"] != "file skipped" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["path"] != "models/bad.py" {
		t.Errorf("path field = %v", entry["path"])
	}
	if entry["timestamp"] == nil {
		t.Error("timestamp missing")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":    DebugLevel,
		"info":     InfoLevel,
		"warn":     WarnLevel,
		"warning":  WarnLevel,
		"error":    ErrorLevel,
		"":         InfoLevel,
		"whatever": InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDiscardDropsEverything(t *testing.T) {
	logger := Discard()
	logger.Error("nothing happens")
}
