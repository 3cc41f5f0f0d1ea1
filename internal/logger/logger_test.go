package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"debug", "INFO", "Warn", "ERROR"} {
		level, ok := ParseLevel(name)
		if !ok {
			t.Fatalf("ParseLevel(%q) failed", name)
		}
		if level.String() != strings.ToUpper(name) {
			t.Errorf("ParseLevel(%q) = %s", name, level)
		}
	}

	if _, ok := ParseLevel("TRACE"); ok {
		t.Error("ParseLevel should reject unknown levels")
	}
}

func TestSetLevel_Filters(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetLevel("INFO")
	})

	SetLevel("WARN")
	Info("hidden %d", 1)
	Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden 1") {
		t.Errorf("INFO message should be filtered at WARN: %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Errorf("WARN message missing: %q", out)
	}

	SetLevel("nonsense")
	Info("still hidden")
	if strings.Contains(buf.String(), "still hidden") {
		t.Error("unknown level names must leave the level unchanged")
	}
}

func TestConfigure_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dittovfs.log")
	if err := Configure("DEBUG", "json", path); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	t.Cleanup(func() {
		_ = Configure("INFO", "text", "stdout")
	})

	Debug("mounted %s", "A:")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("Log line is not JSON: %v (%q)", err, data)
	}
	if record["msg"] != "mounted A:" || record["level"] != "DEBUG" {
		t.Errorf("Unexpected record: %v", record)
	}
}
