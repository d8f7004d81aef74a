package observability

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":        zapcore.WarnLevel,
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}

func TestNewCLILogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewCLILogger(&buf, "warn", false)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "WARN") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}

	buf.Reset()
	logger, err = NewCLILogger(&buf, "error", true)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	logger.Debug("verbose wins")
	if !strings.Contains(buf.String(), "verbose wins") {
		t.Fatalf("verbose should enable debug, got %q", buf.String())
	}

	if _, err := NewCLILogger(&buf, "loud", false); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}
