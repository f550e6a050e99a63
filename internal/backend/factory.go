package backend

import (
	"context"
	"errors"
	"fmt"

	"expns/internal/amqp"
	"expns/internal/cache"
	"expns/internal/core"
	"expns/internal/log"
	"expns/internal/services"
	"expns/internal/store"
	"expns/internal/store/memory"
	"expns/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		ledger   store.Ledger
		sessions SessionLister
		closers  []func() error
	)

	switch config.Type {
	case SQLiteBackend:
		repo, session, err := f.createSQLiteLedger(ctx, config)
		if err != nil {
			return nil, err
		}
		ledger, sessions = session, repo
		closers = append(closers, repo.Close)
	case MemoryBackend:
		ledger = memory.New()
		f.logger.Info("Initialized memory backend", log.FieldSession, ledger.Session())
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	opts := []services.Option{
		services.WithChartCache(cache.NewLRUCache[core.ChartSeries](config.ChartCacheSize)),
		services.WithLogger(f.logger.WithComponent(log.ComponentLedger)),
	}
	if client := f.createPublisher(config); client != nil {
		opts = append(opts, services.WithPublisher(client))
		closers = append(closers, client.Close)
	}

	return &BackendResult{
		Service:  services.NewLedgerService(ledger, opts...),
		Sessions: sessions,
		Cleanup:  closeAll(closers),
	}, nil
}

func (f *DefaultFactory) createSQLiteLedger(ctx context.Context, config Config) (*storage.SQLiteRepository, *storage.Session, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	session, err := repo.StartSession(ctx)
	if err != nil {
		repo.Close()
		return nil, nil, fmt.Errorf("failed to start session: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		log.FieldSession, session.Session())

	return repo, session, nil
}

// createPublisher connects to the broker when configured. A broker that is
// down only disables events; the ledger keeps working.
func (f *DefaultFactory) createPublisher(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err.Error())
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

func closeAll(closers []func() error) CleanupFunc {
	return func() error {
		var errs []error
		// Close in reverse order of creation.
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
