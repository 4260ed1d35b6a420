// Package worker consumes audit events from the AMQP queue and appends
// them to the export destination.
package worker

import (
	"context"
	"fmt"

	"financas/internal/amqp"
	"financas/internal/export"
	"financas/internal/log"
)

// ExportWorker turns transaction audit events into export rows.
type ExportWorker struct {
	appender export.RowAppender
	logger   *log.Logger
}

func NewExportWorker(appender export.RowAppender, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentWorker})
	}
	return &ExportWorker{appender: appender, logger: logger}
}

// HandleEvent appends one event's row. A returned error causes the
// consumer to requeue the delivery.
func (w *ExportWorker) HandleEvent(ctx context.Context, e *amqp.TransactionEvent) error {
	row := export.RowFromEvent(e)
	ref, err := w.appender.Append(ctx, row)
	if err != nil {
		w.logger.ErrorContext(ctx, "export append failed",
			log.FieldTransactionID, e.Transaction.ID,
			log.FieldError, err,
		)
		return fmt.Errorf("append export row: %w", err)
	}

	w.logger.InfoContext(ctx, "exported ledger entry",
		log.FieldOperation, log.OpExport,
		log.FieldTransactionID, e.Transaction.ID,
		log.FieldUsername, e.Username,
		"row_ref", ref,
	)
	return nil
}

// Run consumes events until the context is cancelled.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client) error {
	w.logger.InfoContext(ctx, "export worker started", log.FieldOperation, log.OpStartup)
	return client.ConsumeTransactionEvents(ctx, func(e *amqp.TransactionEvent) error {
		return w.HandleEvent(ctx, e)
	})
}
