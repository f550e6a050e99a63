package services

import (
	"context"
	"errors"
	"fmt"

	"expns/internal/amqp"
	"expns/internal/cache"
	"expns/internal/core"
	"expns/internal/log"
	"expns/internal/store"
)

// Publisher announces recorded transactions. *amqp.Client implements it.
type Publisher interface {
	PublishTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error
}

// AddResult is everything an input surface shows after a successful add.
type AddResult struct {
	Count         int
	Transaction   core.Transaction
	ListItem      string
	WindowTitle   string
	StatusMessage string
}

// LedgerService orchestrates ledger operations across the backend, the
// aggregation cache and the optional event publisher.
type LedgerService struct {
	ledger    store.Ledger
	publisher Publisher
	charts    cache.Cache[core.ChartSeries]
	logger    *log.Logger
}

// Option configures a LedgerService.
type Option func(*LedgerService)

// WithPublisher enables transaction events.
func WithPublisher(p Publisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

func WithChartCache(c cache.Cache[core.ChartSeries]) Option {
	return func(s *LedgerService) { s.charts = c }
}

func WithLogger(l *log.Logger) Option {
	return func(s *LedgerService) { s.logger = l }
}

func NewLedgerService(ledger store.Ledger, opts ...Option) *LedgerService {
	s := &LedgerService{ledger: ledger}
	for _, opt := range opts {
		opt(s)
	}
	if s.charts == nil {
		s.charts = cache.NewLRUCache[core.ChartSeries](64)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentLedger)
	}
	return s
}

// Session identifies the ledger this service writes to.
func (s *LedgerService) Session() string {
	return s.ledger.Session()
}

// Add validates and records one transaction. On a validation error the
// returned result still carries the unchanged count.
func (s *LedgerService) Add(ctx context.Context, title, category, amountText string) (AddResult, error) {
	n, t, err := s.ledger.Add(ctx, title, category, amountText)
	if err != nil {
		if field, ok := core.MissingField(err); ok {
			s.logger.DebugContext(ctx, "Transaction rejected",
				log.FieldOperation, log.OpValidate,
				log.FieldField, field)
		} else if errors.Is(err, core.ErrInvalidAmount) {
			s.logger.DebugContext(ctx, "Transaction rejected",
				log.FieldOperation, log.OpValidate,
				log.FieldError, err.Error())
		} else {
			s.logger.ErrorContext(ctx, "Failed to record transaction",
				log.NewFields().WithOperation(log.OpAdd).WithSession(s.ledger.Session()).WithError(err).ToSlice()...)
			return AddResult{}, fmt.Errorf("add transaction: %w", err)
		}
		return AddResult{Count: n, WindowTitle: core.WindowTitle(n), StatusMessage: core.StatusMessage(n)}, err
	}

	s.logger.InfoContext(ctx, "Transaction recorded",
		log.NewFields().
			WithOperation(log.OpAdd).
			WithSession(s.ledger.Session()).
			WithTransaction(t.Title, t.Category, t.Amount).
			WithCount(n).
			ToSlice()...)

	s.publish(ctx, n, t)

	return AddResult{
		Count:         n,
		Transaction:   t,
		ListItem:      core.FormatListItem(n, t),
		WindowTitle:   core.WindowTitle(n),
		StatusMessage: core.StatusMessage(n),
	}, nil
}

func (s *LedgerService) publish(ctx context.Context, seq int, t core.Transaction) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewTransactionRecordedMessage(s.ledger.Session(), seq, t.Title, t.Category, t.Amount)
	if err := s.publisher.PublishTransactionRecorded(ctx, msg); err != nil {
		// The transaction is already recorded; the event is best effort.
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldOperation, log.OpPublish,
			log.FieldSeq, seq,
			log.FieldError, err.Error())
	}
}

// Aggregate returns the chart series for the current ledger, or core.ErrNoData.
func (s *LedgerService) Aggregate(ctx context.Context) (core.ChartSeries, error) {
	n, err := s.ledger.Len(ctx)
	if err != nil {
		return core.ChartSeries{}, fmt.Errorf("ledger length: %w", err)
	}
	if n == 0 {
		return core.ChartSeries{}, core.ErrNoData
	}

	key := cache.VersionKey(s.ledger.Session(), n)
	if series, ok := s.charts.Get(key); ok {
		s.logger.DebugContext(ctx, "Chart served from cache",
			log.FieldOperation, log.OpAggregate,
			log.FieldCount, n,
			log.FieldCacheHit, true)
		return series, nil
	}

	bars, err := s.ledger.AggregateByCategory(ctx)
	if err != nil {
		if errors.Is(err, core.ErrNoData) {
			return core.ChartSeries{}, err
		}
		return core.ChartSeries{}, fmt.Errorf("aggregate: %w", err)
	}
	series := core.NewChartSeries(bars)

	// Only cache when no add landed between the length read and the aggregation.
	if after, err := s.ledger.Len(ctx); err == nil && after == n {
		s.charts.Set(key, series)
	}

	s.logger.DebugContext(ctx, "Chart aggregated",
		log.FieldOperation, log.OpAggregate,
		log.FieldCount, n,
		log.FieldCategories, len(bars),
		log.FieldCacheHit, false)

	return series, nil
}

func (s *LedgerService) Transactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.ledger.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *LedgerService) Len(ctx context.Context) (int, error) {
	return s.ledger.Len(ctx)
}

func (s *LedgerService) State(ctx context.Context) (core.State, error) {
	n, err := s.ledger.Len(ctx)
	if err != nil {
		return core.Empty, err
	}
	if n == 0 {
		return core.Empty, nil
	}
	return core.NonEmpty, nil
}
