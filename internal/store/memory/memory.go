package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"expns/internal/core"
	"expns/internal/store"
)

// Store keeps one session's ledger in memory. It is discarded with the process.
type Store struct {
	mu      sync.Mutex
	session string
	ledger  *core.Ledger
}

var _ store.Ledger = (*Store)(nil)

func New() *Store {
	return &Store{session: uuid.NewString(), ledger: core.NewLedger()}
}

func (s *Store) Session() string {
	return s.session
}

// Add appends under the store lock so the returned count matches this entry.
func (s *Store) Add(_ context.Context, title, category, amountText string) (int, core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Record(title, category, amountText)
}

func (s *Store) Transactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Transactions(), nil
}

func (s *Store) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Len(), nil
}

func (s *Store) AggregateByCategory(_ context.Context) ([]core.CategoryTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.AggregateByCategory()
}
