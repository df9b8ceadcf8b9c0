package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{" INFO ", LevelInfo},
		{"error", LevelError},
		{"warn", LevelWarn},
		{"bogus", LevelWarn},
		{"", LevelWarn},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestInitWriterCapturesTableContext(t *testing.T) {
	_ = Close()
	defer Close()

	var buf bytes.Buffer
	if err := InitWriter(&buf, LevelDebug, "text"); err != nil {
		t.Fatalf("InitWriter failed: %v", err)
	}

	WithTable("OI_WAVELENGTH", "INS1").Warn("dropping table")

	out := buf.String()
	if !strings.Contains(out, "table=OI_WAVELENGTH") || !strings.Contains(out, "name=INS1") {
		t.Errorf("missing table context in %q", out)
	}
}

func TestInitTwiceFails(t *testing.T) {
	_ = Close()
	defer Close()

	var buf bytes.Buffer
	if err := InitWriter(&buf, LevelInfo, "json"); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := InitWriter(&buf, LevelInfo, "json"); err == nil {
		t.Error("expected second init to fail")
	}
}

func TestLevelFiltering(t *testing.T) {
	_ = Close()
	defer Close()

	var buf bytes.Buffer
	if err := InitWriter(&buf, LevelWarn, "text"); err != nil {
		t.Fatalf("InitWriter failed: %v", err)
	}
	Info("hidden")
	Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at WARN level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn message missing")
	}
}
