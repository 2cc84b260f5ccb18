package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"deliverynav/internal/core"
	"deliverynav/internal/storage"
)

type capturePublisher struct {
	ids []int64
	err error
}

func (p *capturePublisher) PublishRecordExport(_ context.Context, id int64) error {
	if p.err != nil {
		return p.err
	}
	p.ids = append(p.ids, id)
	return nil
}

func newTestServices(t *testing.T, pub ExportPublisher) (*IdentityService, *RecordService) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewIdentityService(repo), NewRecordService(repo, pub, time.UTC)
}

func TestCreateCoercesAndPublishes(t *testing.T) {
	pub := &capturePublisher{}
	identities, records := newTestServices(t, pub)
	ctx := context.Background()

	ident, err := identities.Resolve(ctx, "device:abc-123")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	tests := []struct {
		name      string
		rawAmount any
		want      int64
	}{
		{"json number", float64(12400), 12400},
		{"grouped string", "12,400", 12400},
		{"currency prefix", "¥8,600", 8600},
		{"negative fraction", "-3.7", -4},
		{"garbage", "abc", 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := records.Create(ctx, ident.ID, tt.rawAmount, "shift", time.Time{})
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if rec.Amount != tt.want {
				t.Errorf("amount = %d, want %d", rec.Amount, tt.want)
			}
		})
	}

	if len(pub.ids) != len(tests) {
		t.Fatalf("expected %d export messages, got %d", len(tests), len(pub.ids))
	}
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	identities, records := newTestServices(t, pub)
	ctx := context.Background()

	ident, err := identities.Resolve(ctx, "device-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	rec, err := records.Create(ctx, ident.ID, 500, "", time.Time{})
	if err != nil {
		t.Fatalf("create must not fail on publish error: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("record was not persisted")
	}
}

func TestCreateWithoutPublisher(t *testing.T) {
	identities, records := newTestServices(t, nil)
	ctx := context.Background()

	ident, err := identities.Resolve(ctx, "device-2")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := records.Create(ctx, ident.ID, 500, "", time.Time{}); err != nil {
		t.Fatalf("create without publisher: %v", err)
	}
}

func TestMonthlyTotal(t *testing.T) {
	identities, records := newTestServices(t, nil)
	ctx := context.Background()

	ident, err := identities.Resolve(ctx, "device-3")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	march := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	for _, amount := range []int64{1000, 2000} {
		if _, err := records.Create(ctx, ident.ID, amount, "", march); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	// Boundary: the first instant of April is outside March.
	april := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	if _, err := records.Create(ctx, ident.ID, 999, "", april); err != nil {
		t.Fatalf("create april: %v", err)
	}

	total, w, err := records.MonthlyTotal(ctx, ident.ID, 2025, 3)
	if err != nil {
		t.Fatalf("monthly total: %v", err)
	}
	if total.Total != 3000 || total.Count != 2 {
		t.Fatalf("expected {3000 2}, got %+v", total)
	}
	if w.Contains(april) {
		t.Fatal("march window must exclude April 1st 00:00")
	}
}

func TestMonthlyTotalInvalidMonth(t *testing.T) {
	identities, records := newTestServices(t, nil)
	ctx := context.Background()

	ident, err := identities.Resolve(ctx, "device-4")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	for _, month := range []int{0, 13, -1} {
		if _, _, err := records.MonthlyTotal(ctx, ident.ID, 2025, month); !errors.Is(err, core.ErrInvalidMonth) {
			t.Errorf("month %d: expected ErrInvalidMonth, got %v", month, err)
		}
	}
}

func TestSetNickname(t *testing.T) {
	identities, _ := newTestServices(t, nil)
	ctx := context.Background()

	ident, err := identities.Resolve(ctx, "device-5")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := identities.SetNickname(ctx, ident.ID, "Rider"); err != nil {
		t.Fatalf("set nickname: %v", err)
	}
	got, err := identities.Get(ctx, ident.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DisplayName != "Rider" {
		t.Fatalf("expected Rider, got %q", got.DisplayName)
	}

	long := make([]byte, 51)
	for i := range long {
		long[i] = 'x'
	}
	if err := identities.SetNickname(ctx, ident.ID, string(long)); !errors.Is(err, core.ErrDisplayNameLong) {
		t.Fatalf("expected ErrDisplayNameLong, got %v", err)
	}
}
