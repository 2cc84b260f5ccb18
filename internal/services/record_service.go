package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"deliverynav/internal/core"
	"deliverynav/internal/storage"
)

// ExportPublisher enqueues a record for asynchronous export. Implemented by
// the AMQP client; nil when export is not configured.
type ExportPublisher interface {
	PublishRecordExport(ctx context.Context, id int64) error
}

// RecordService orchestrates record writes across SQLite and the export
// queue, and serves windowed aggregations.
type RecordService struct {
	storage   *storage.SQLiteRepository
	publisher ExportPublisher
	loc       *time.Location
}

func NewRecordService(storage *storage.SQLiteRepository, publisher ExportPublisher, loc *time.Location) *RecordService {
	if loc == nil {
		loc = time.UTC
	}
	return &RecordService{
		storage:   storage,
		publisher: publisher,
		loc:       loc,
	}
}

// Create coerces the raw amount and label, persists the record, and
// publishes an export message. Persistence is the source of truth: a failed
// publish is logged and the record is still returned, the periodic pending
// scan picks it up later.
func (s *RecordService) Create(ctx context.Context, identityID int64, rawAmount any, rawLabel string, occurredAt time.Time) (core.Record, error) {
	amount := core.CoerceAmount(rawAmount)
	label := core.TruncateLabel(rawLabel)

	rec, err := s.storage.AppendRecord(ctx, identityID, amount, label, occurredAt)
	if err != nil {
		return core.Record{}, fmt.Errorf("save record: %w", err)
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "Export publisher not available, skipping export message", "id", rec.ID)
		return rec, nil
	}
	if err := s.publisher.PublishRecordExport(ctx, rec.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"id", rec.ID, "error", err)
	}

	return rec, nil
}

// List returns the identity's most recent records, bounded by limit.
func (s *RecordService) List(ctx context.Context, identityID int64, limit int) ([]core.Record, error) {
	return s.storage.ListRecords(ctx, identityID, limit)
}

// MonthlyTotal aggregates the identity's records over one calendar month in
// the service location. An out-of-range month surfaces as
// core.ErrInvalidMonth.
func (s *RecordService) MonthlyTotal(ctx context.Context, identityID int64, year, month int) (core.WindowTotal, core.Window, error) {
	w, err := core.MonthWindow(year, month, s.loc)
	if err != nil {
		return core.WindowTotal{}, core.Window{}, err
	}
	total, err := s.storage.WindowTotal(ctx, identityID, w)
	if err != nil {
		return core.WindowTotal{}, core.Window{}, fmt.Errorf("monthly total: %w", err)
	}
	return total, w, nil
}

// CurrentMonthTotal aggregates over the month containing now.
func (s *RecordService) CurrentMonthTotal(ctx context.Context, identityID int64) (core.WindowTotal, core.Window, error) {
	now := time.Now().In(s.loc)
	return s.MonthlyTotal(ctx, identityID, now.Year(), int(now.Month()))
}

// Close closes the underlying storage.
func (s *RecordService) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
