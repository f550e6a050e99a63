package main

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"expns/internal/config"
)

func run(t *testing.T, cfg *config.Config, stdin string, args ...string) string {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var out bytes.Buffer
	cmd := newRootCmd(cfg)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return out.String()
}

func testConfig(dbPath string) *config.Config {
	return &config.Config{DataBackend: "memory", SQLiteDBPath: dbPath, LogLevel: "error", ChartCacheSize: 8}
}

func TestShellMemoryBackend(t *testing.T) {
	out := run(t, testConfig(""), "add Coffee | Food | 4\nchart\nquit\n", "--bar-width", "5")

	for _, want := range []string{"Expense Tracker - No Transactions", "Success: Transaction Added!", "Food        █████ 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSessionsCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "expns.db")
	cfg := testConfig(dbPath)

	if out := run(t, cfg, "", "sessions", "--db", dbPath); !strings.Contains(out, "No sessions recorded.") {
		t.Fatalf("unexpected output %q", out)
	}

	run(t, cfg, "add Rent | Home | 900\nquit\n", "--backend", "sqlite")
	run(t, cfg, "add Bus | Travel | 2\nadd Taxi | Travel | 15\nquit\n", "--backend", "sqlite")

	out := run(t, cfg, "", "sessions", "--db", dbPath)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 sessions, got:\n%s", out)
	}
	if !strings.Contains(lines[1], "900") || !strings.Contains(lines[2], "17") {
		t.Fatalf("unexpected session totals:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	if out := run(t, testConfig(""), "", "version"); !strings.HasPrefix(out, "expns-shell dev") {
		t.Fatalf("unexpected version output %q", out)
	}
}
