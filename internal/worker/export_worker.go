package worker

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"deliverynav/internal/amqp"
	"deliverynav/internal/core"
	"deliverynav/internal/export"
	"deliverynav/internal/storage"
)

// ExportWorker copies persisted records to the external sheet. It consumes
// AMQP export messages and periodically sweeps records the messages missed.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	writer    export.RecordWriter
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, writer export.RecordWriter, batchSize int) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &ExportWorker{
		storage:   storage,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleExportMessage processes a single export message from AMQP.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.RecordExportMessage) error {
	slog.InfoContext(ctx, "Processing export message", "id", msg.ID)

	rec, err := w.storage.GetRecord(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}

	return w.exportRecord(ctx, rec)
}

// ProcessPending sweeps records not yet exported. This is the backup path
// for lost AMQP messages and for deployments running without a broker.
// Exports fan out concurrently, bounded to keep the Sheets API happy.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.PendingExportRecords(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending records", "count", len(pending))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, rec := range pending {
		g.Go(func() error {
			if err := w.exportRecord(ctx, rec); err != nil {
				slog.ErrorContext(ctx, "Failed to export pending record", "id", rec.ID, "error", err)
			}
			// Failures are marked on the record, not fatal for the sweep.
			return nil
		})
	}
	return g.Wait()
}

func (w *ExportWorker) exportRecord(ctx context.Context, rec core.Record) error {
	ident, err := w.storage.GetIdentityByID(ctx, rec.IdentityID)
	if err != nil {
		return fmt.Errorf("get identity %d: %w", rec.IdentityID, err)
	}

	ref, err := w.writer.Append(ctx, rec, ident.Token)
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, rec.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", rec.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.storage.MarkExported(ctx, rec.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark record exported", "id", rec.ID, "error", err)
		// The export itself succeeded, do not requeue.
	}

	slog.InfoContext(ctx, "Record exported",
		"id", rec.ID,
		"sheet_ref", ref,
		"amount", rec.Amount)

	return nil
}
