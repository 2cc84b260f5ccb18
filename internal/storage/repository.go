package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"deliverynav/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serializes writers and keeps concurrent
	// first-contact upserts free of SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// NewWithDB wraps an already-open database without running migrations.
// Used by tests, including the unprovisioned-schema cases.
func NewWithDB(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetOrCreateIdentity resolves a normalized token to its identity row,
// creating it on first contact. The insert relies on the UNIQUE constraint
// on token: concurrent first-contact requests race on the insert, losers
// fall through to the select and fetch the winner's row. Never a two-step
// check-then-insert.
func (r *SQLiteRepository) GetOrCreateIdentity(ctx context.Context, token string) (core.Identity, error) {
	now := time.Now().Unix()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO identities (token, display_name, authenticatable, created_at, updated_at)
		 VALUES (?, '', 0, ?, ?)
		 ON CONFLICT(token) DO NOTHING`,
		token, now, now)
	if err != nil {
		return core.Identity{}, fmt.Errorf("upsert identity: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.InfoContext(ctx, "Identity created", "token", token)
	}

	return r.getIdentity(ctx, "token = ?", token)
}

// GetIdentityByID fetches an identity row by its internal id.
func (r *SQLiteRepository) GetIdentityByID(ctx context.Context, id int64) (core.Identity, error) {
	return r.getIdentity(ctx, "id = ?", id)
}

func (r *SQLiteRepository) getIdentity(ctx context.Context, where string, arg any) (core.Identity, error) {
	var (
		ident                core.Identity
		authenticatable      int64
		createdAt, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, token, display_name, authenticatable, created_at, updated_at
		 FROM identities WHERE `+where, arg).
		Scan(&ident.ID, &ident.Token, &ident.DisplayName, &authenticatable, &createdAt, &updatedAt)
	if err != nil {
		return core.Identity{}, fmt.Errorf("select identity: %w", err)
	}
	ident.Authenticatable = authenticatable != 0
	ident.CreatedAt = time.Unix(createdAt, 0).UTC()
	ident.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return ident, nil
}

// UpdateDisplayName sets the guest nickname and bumps updated_at.
func (r *SQLiteRepository) UpdateDisplayName(ctx context.Context, id int64, name string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE identities SET display_name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	return nil
}

// AppendRecord persists one activity record attributed to identityID.
func (r *SQLiteRepository) AppendRecord(ctx context.Context, identityID, amount int64, label string, occurredAt time.Time) (core.Record, error) {
	createdAt := time.Now()
	if occurredAt.IsZero() {
		occurredAt = createdAt
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO records (identity_id, amount, label, occurred_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		identityID, amount, label, occurredAt.Unix(), createdAt.Unix())
	if err != nil {
		return core.Record{}, fmt.Errorf("insert record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Record{}, fmt.Errorf("record id: %w", err)
	}

	rec := core.Record{
		ID:         id,
		IdentityID: identityID,
		Amount:     amount,
		Label:      label,
		OccurredAt: time.Unix(occurredAt.Unix(), 0).UTC(),
		CreatedAt:  time.Unix(createdAt.Unix(), 0).UTC(),
	}

	slog.InfoContext(ctx, "Record saved",
		"id", rec.ID,
		"identity_id", identityID,
		"amount", amount)

	return rec, nil
}

// GetRecord fetches a single record by id.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id int64) (core.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, identity_id, amount, label, occurred_at, created_at
		 FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		return core.Record{}, fmt.Errorf("select record: %w", err)
	}
	return rec, nil
}

// ListRecords returns the identity's records most-recent-first, bounded by
// limit.
func (r *SQLiteRepository) ListRecords(ctx context.Context, identityID int64, limit int) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, identity_id, amount, label, occurred_at, created_at
		 FROM records WHERE identity_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		identityID, limit)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// WindowTotal sums the identity's records with occurred_at in [start, end).
// A missing schema (fresh deployment, migrations not yet run) degrades to a
// zero total: this read path is non-critical and must not fail for that.
func (r *SQLiteRepository) WindowTotal(ctx context.Context, identityID int64, w core.Window) (core.WindowTotal, error) {
	var total core.WindowTotal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0), COUNT(*)
		 FROM records
		 WHERE identity_id = ? AND occurred_at >= ? AND occurred_at < ?`,
		identityID, w.Start.Unix(), w.End.Unix()).
		Scan(&total.Total, &total.Count)
	if err != nil {
		if isMissingSchema(err) {
			slog.WarnContext(ctx, "Records table missing, returning zero total", "identity_id", identityID)
			return core.WindowTotal{}, nil
		}
		return core.WindowTotal{}, fmt.Errorf("window total: %w", err)
	}
	return total, nil
}

// PendingExportRecords returns records not yet exported, oldest first.
func (r *SQLiteRepository) PendingExportRecords(ctx context.Context, limit int) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, identity_id, amount, label, occurred_at, created_at
		 FROM records WHERE synced = 0 AND sync_error = 0
		 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("pending export records: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending records: %w", err)
	}
	return out, nil
}

// MarkExported flags a record as successfully exported.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE records SET synced = 1, sync_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

// MarkExportError flags a record whose export failed so the periodic scan
// stops retrying it.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE records SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	slog.WarnContext(ctx, "Record marked with export error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.Record, error) {
	var (
		rec                  core.Record
		occurredAt, createdAt int64
	)
	if err := row.Scan(&rec.ID, &rec.IdentityID, &rec.Amount, &rec.Label, &occurredAt, &createdAt); err != nil {
		return core.Record{}, err
	}
	rec.OccurredAt = time.Unix(occurredAt, 0).UTC()
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	return rec, nil
}

func isMissingSchema(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
