package backend

import (
	"context"

	"expns/internal/services"
	"expns/internal/storage"
)

// SessionLister reads the journal of past sessions. Only the sqlite backend has one.
type SessionLister interface {
	ListSessions(ctx context.Context) ([]storage.SessionInfo, error)
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the ledger service and optional cleanup function
type BackendResult struct {
	Service *services.LedgerService
	// Sessions is nil for backends without history.
	Sessions SessionLister
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Transaction events, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	ChartCacheSize int
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
