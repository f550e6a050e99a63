package worker

import (
	"context"
	"fmt"
	"time"

	"expns/internal/amqp"
	"expns/internal/cache"
	"expns/internal/log"
	"expns/internal/store"
)

// exportedMemory bounds how many exported transactions are remembered to
// skip redeliveries.
const exportedMemory = 4096

// ExportWorker appends recorded transactions to an external sheet.
type ExportWorker struct {
	sheets   store.RowAppender
	exported *cache.LRUCache[string]
	logger   *log.Logger
}

func NewExportWorker(sheets store.RowAppender, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		sheets:   sheets,
		exported: cache.NewLRUCache[string](exportedMemory),
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleTransactionRecorded exports one transaction event. A returned error
// asks the broker to redeliver the message.
func (w *ExportWorker) HandleTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	key := cache.VersionKey(msg.Session, msg.Seq)
	if ref, ok := w.exported.Get(key); ok {
		w.logger.InfoContext(ctx, "Transaction already exported, skipping",
			log.FieldSession, msg.Session,
			log.FieldSeq, msg.Seq,
			log.FieldSheetsRef, ref)
		return nil
	}

	row := RowFromMessage(msg)
	ref, err := w.sheets.AppendRow(ctx, row)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to export transaction",
			log.FieldOperation, log.OpExport,
			log.FieldSession, msg.Session,
			log.FieldSeq, msg.Seq,
			log.FieldError, err.Error())
		return fmt.Errorf("append row: %w", err)
	}
	w.exported.Set(key, ref)

	w.logger.InfoContext(ctx, "Transaction exported",
		log.NewFields().
			WithOperation(log.OpExport).
			WithSession(msg.Session).
			WithTransaction(msg.Title, msg.Category, msg.Amount).
			ToSlice()...)
	return nil
}

// RowFromMessage flattens an event into the exported row layout.
func RowFromMessage(msg *amqp.TransactionRecordedMessage) store.Row {
	recorded := msg.Timestamp
	if recorded.IsZero() {
		recorded = time.Now()
	}
	return store.Row{
		Session:  msg.Session,
		Seq:      msg.Seq,
		Title:    msg.Title,
		Category: msg.Category,
		Amount:   msg.Amount,
		Recorded: recorded.UTC().Format(time.RFC3339),
	}
}
