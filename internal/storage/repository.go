package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"expns/internal/core"
	"expns/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository journals every session's transactions to a SQLite file.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// SessionInfo summarizes a past or running session.
type SessionInfo struct {
	ID        string
	StartedAt time.Time
	Count     int
	Total     int64
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// StartSession opens a new, empty ledger. Earlier sessions stay on disk
// but are never reopened for writing.
func (r *SQLiteRepository) StartSession(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	started := r.now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		id, started.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	slog.InfoContext(ctx, "Ledger session started", "session", id)
	return &Session{repo: r, id: id}, nil
}

// ListSessions returns every recorded session, oldest first.
func (r *SQLiteRepository) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.started_at, COUNT(t.id), COALESCE(SUM(t.amount), 0)
		FROM sessions s
		LEFT JOIN transactions t ON t.session_id = s.id
		GROUP BY s.id, s.started_at
		ORDER BY s.rowid`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var (
			info    SessionInfo
			started string
		)
		if err := rows.Scan(&info.ID, &started, &info.Count, &info.Total); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		info.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parse session start %q: %w", started, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Session is one process run's ledger backed by the journal.
type Session struct {
	repo *SQLiteRepository
	id   string
	// mu serializes appends so seq and the returned count agree.
	mu sync.Mutex
}

var _ store.Ledger = (*Session)(nil)

func (s *Session) Session() string {
	return s.id
}

func (s *Session) Add(ctx context.Context, title, category, amountText string) (int, core.Transaction, error) {
	t, err := core.NewTransaction(title, category, amountText)
	if err != nil {
		return s.rejected(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.repo.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, core.Transaction{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var (
		seq   int
		total int64
	)
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0), COALESCE(SUM(amount), 0) FROM transactions WHERE session_id = ?`, s.id,
	).Scan(&seq, &total); err != nil {
		return 0, core.Transaction{}, fmt.Errorf("next seq: %w", err)
	}
	if _, ok := core.AddAmounts(total, t.Amount); !ok {
		return seq, core.Transaction{}, core.ErrTotalOverflow
	}
	seq++

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (session_id, seq, title, category, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.id, seq, t.Title, t.Category, t.Amount, s.repo.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, core.Transaction{}, fmt.Errorf("commit: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"session", s.id,
		"seq", seq,
		"category", t.Category,
		"amount", t.Amount)

	return seq, t, nil
}

// rejected reports a validation failure together with the unchanged count.
func (s *Session) rejected(ctx context.Context, err error) (int, core.Transaction, error) {
	n, lerr := s.Len(ctx)
	if lerr != nil {
		return 0, core.Transaction{}, errors.Join(err, lerr)
	}
	return n, core.Transaction{}, err
}

func (s *Session) Len(ctx context.Context) (int, error) {
	var n int
	err := s.repo.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE session_id = ?`, s.id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (s *Session) Transactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.repo.db.QueryContext(ctx, `
		SELECT title, category, amount FROM transactions
		WHERE session_id = ?
		ORDER BY seq`, s.id)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.Title, &t.Category, &t.Amount); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AggregateByCategory sums per category, ordering groups by their first seq.
func (s *Session) AggregateByCategory(ctx context.Context) ([]core.CategoryTotal, error) {
	rows, err := s.repo.db.QueryContext(ctx, `
		SELECT category, SUM(amount) FROM transactions
		WHERE session_id = ?
		GROUP BY category
		ORDER BY MIN(seq)`, s.id)
	if err != nil {
		return nil, fmt.Errorf("aggregate by category: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, core.ErrNoData
	}
	return out, nil
}
