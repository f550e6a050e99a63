package backend

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"expns/internal/config"
	"expns/internal/core"
	"expns/internal/log"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown type", Config{Type: "sheets"}, true},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://localhost", AMQPExchange: "e"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:    "sqlite",
		SQLiteDBPath:   "a.db",
		AMQPURL:        "amqp://localhost",
		AMQPExchange:   "expns",
		AMQPQueue:      "transactions",
		ChartCacheSize: 7,
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "a.db" || cfg.ChartCacheSize != 7 || cfg.AMQPQueue != "transactions" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestCreateBackend_Memory(t *testing.T) {
	f := NewFactory(quietLogger())
	res, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend, ChartCacheSize: 4})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	if res.Sessions != nil {
		t.Fatal("memory backend has no session history")
	}
	if _, err := res.Service.Add(context.Background(), "Coffee", "Food", "3"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if st, _ := res.Service.State(context.Background()); st != core.NonEmpty {
		t.Fatalf("expected NonEmpty, got %v", st)
	}
}

func TestCreateBackend_SQLiteStartsFreshSession(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "expns.db")
	cfg := Config{Type: SQLiteBackend, SQLiteDBPath: dbPath, ChartCacheSize: 4}
	f := NewFactory(quietLogger())

	first, err := f.CreateBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if _, err := first.Service.Add(ctx, "Rent", "Home", "900"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := first.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	second, err := f.CreateBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer second.Cleanup()

	if n, _ := second.Service.Len(ctx); n != 0 {
		t.Fatalf("new process must start with an empty ledger, got %d", n)
	}
	if second.Service.Session() == first.Service.Session() {
		t.Fatal("expected a new session id")
	}

	sessions, err := second.Sessions.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions on disk, got %d", len(sessions))
	}
}

func TestCreateBackend_InvalidConfig(t *testing.T) {
	f := NewFactory(quietLogger())
	if _, err := f.CreateBackend(context.Background(), Config{Type: "bogus"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	if len(got) != 2 || got[0] != "memory" || got[1] != "sqlite" {
		t.Fatalf("unexpected types %v", got)
	}
}
