package store

import (
	"context"

	"expns/internal/core"
)

// Ports implemented by the ledger backends.
type (
	TransactionWriter interface {
		// Add validates and appends one transaction, returning the new count
		// and the transaction as stored.
		Add(ctx context.Context, title, category, amountText string) (count int, recorded core.Transaction, err error)
	}

	TransactionLister interface {
		// Transactions returns the session's transactions in insertion order.
		Transactions(ctx context.Context) ([]core.Transaction, error)
		Len(ctx context.Context) (int, error)
	}

	// CategoryAggregator provides the per-category totals driving the chart.
	CategoryAggregator interface {
		AggregateByCategory(ctx context.Context) ([]core.CategoryTotal, error)
	}

	// Ledger is one session's ledger as seen by the services.
	Ledger interface {
		TransactionWriter
		TransactionLister
		CategoryAggregator
		// Session identifies the running session.
		Session() string
	}

	// RowAppender exports a recorded transaction to an external sheet.
	RowAppender interface {
		AppendRow(ctx context.Context, row Row) (ref string, err error)
	}
)

// Row is a recorded transaction flattened for export.
type Row struct {
	Session  string
	Seq      int
	Title    string
	Category string
	Amount   int64
	Recorded string // RFC 3339
}
