package cli

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSetupLoggerTo(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := SetupLoggerTo(&buf, "debug")
	logger.Debug("hello")
	slog.Info("via default")

	out := buf.String()
	if !strings.Contains(out, "msg=hello") || !strings.Contains(out, "component=app") {
		t.Fatalf("debug line missing: %q", out)
	}
	if !strings.Contains(out, "via default") {
		t.Fatalf("default logger not replaced: %q", out)
	}
}

func TestSetupLoggerToRespectsLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := SetupLoggerTo(&buf, "warn")
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level: %q", buf.String())
	}
}
