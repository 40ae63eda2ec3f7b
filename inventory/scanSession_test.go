package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/utils"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newSession(t *testing.T) (*ScanSession, *fakeClock, func() int) {
	t.Helper()
	r, store, _ := newRegister(t)
	if _, err := r.CreateItem(context.Background(), &models.NewInventoryItem{Barcode: "8900000000002", Name: "Gingelly Oil Tin 15L"}); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	clock := &fakeClock{t: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	s := NewScanSession(r, 2*time.Second)
	s.SetClock(clock.now)
	return s, clock, func() int { return store.Calls("RecordMovement") }
}

func TestScanSuppressesIdenticalConsecutiveRead(t *testing.T) {
	ctx := context.Background()
	s, clock, submissions := newSession(t)

	if _, err := s.Scan(ctx, "8901234567890", models.MovementTypeIn, 1, "scan"); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	clock.advance(300 * time.Millisecond)
	if _, err := s.Scan(ctx, "8901234567890", models.MovementTypeIn, 1, "scan"); !errors.Is(err, utils.ErrDuplicateScan) {
		t.Fatalf("expected duplicate scan, got %v", err)
	}
	if got := submissions(); got != 1 {
		t.Fatalf("expected one submission, got %d", got)
	}
	if _, err := s.Scan(ctx, "8900000000002", models.MovementTypeIn, 1, "scan"); err != nil {
		t.Fatalf("different barcode must not be suppressed: %v", err)
	}
	if got := submissions(); got != 2 {
		t.Fatalf("expected two submissions, got %d", got)
	}
}

func TestScanCooldownAndReset(t *testing.T) {
	ctx := context.Background()
	s, clock, submissions := newSession(t)

	if _, err := s.Scan(ctx, "8901234567890", models.MovementTypeIn, 1, ""); err != nil {
		t.Fatalf("scan: %v", err)
	}
	clock.advance(2 * time.Second)
	if _, err := s.Scan(ctx, "8901234567890", models.MovementTypeIn, 1, ""); err != nil {
		t.Fatalf("scan after cool-down: %v", err)
	}
	s.Reset()
	if _, err := s.Scan(ctx, "8901234567890", models.MovementTypeIn, 1, ""); err != nil {
		t.Fatalf("scan after reset: %v", err)
	}
	if got := submissions(); got != 3 {
		t.Fatalf("expected three submissions, got %d", got)
	}
}

func TestFailedScanCanBeRetried(t *testing.T) {
	ctx := context.Background()
	s, _, submissions := newSession(t)

	if _, err := s.Scan(ctx, "unknown", models.MovementTypeIn, 1, ""); !utils.IsNotFoundError(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.Scan(ctx, "unknown", models.MovementTypeIn, 1, ""); errors.Is(err, utils.ErrDuplicateScan) {
		t.Fatalf("failed scan must clear the marker")
	}
	if got := submissions(); got != 2 {
		t.Fatalf("expected two submissions, got %d", got)
	}
}

func TestSessionsDoNotShareMarker(t *testing.T) {
	ctx := context.Background()
	s, _, submissions := newSession(t)
	other := NewScanSession(s.register, 2*time.Second)

	if _, err := s.Scan(ctx, "8901234567890", models.MovementTypeIn, 1, ""); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if _, err := other.Scan(ctx, "8901234567890", models.MovementTypeIn, 1, ""); err != nil {
		t.Fatalf("independent session must not suppress: %v", err)
	}
	if got := submissions(); got != 2 {
		t.Fatalf("expected two submissions, got %d", got)
	}
}
