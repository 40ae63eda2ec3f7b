package inventory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/google/uuid"
)

const DefaultScanCooldown = 2 * time.Second

// ScanSession debounces a continuous scanner. An identical barcode read again
// before the cool-down elapses (or before Reset) is dropped with ErrDuplicateScan.
// Sessions never share their marker.
type ScanSession struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	register *Register
	cooldown time.Duration
	now      func() time.Time

	mu          sync.Mutex
	lastBarcode string
	lastSeen    time.Time
}

func NewScanSession(register *Register, cooldown time.Duration) *ScanSession {
	if cooldown <= 0 {
		cooldown = DefaultScanCooldown
	}
	return &ScanSession{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		register:  register,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// SetClock replaces the session clock; used by tests.
func (s *ScanSession) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Scan submits one movement for barcode unless it repeats the previous read.
// A failed submission clears the marker so the same barcode can be rescanned.
func (s *ScanSession) Scan(ctx context.Context, barcode string, movementType models.MovementType, quantity int, reason string) (*models.InventoryItem, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, utils.NewValidationError("barcode", "is required")
	}

	s.mu.Lock()
	now := s.now()
	if barcode == s.lastBarcode && now.Sub(s.lastSeen) < s.cooldown {
		s.mu.Unlock()
		return nil, utils.ErrDuplicateScan
	}
	s.lastBarcode = barcode
	s.lastSeen = now
	s.mu.Unlock()

	item, err := s.register.RecordMovement(ctx, barcode, movementType, quantity, reason)
	if err != nil {
		s.mu.Lock()
		if s.lastBarcode == barcode {
			s.lastBarcode = ""
			s.lastSeen = time.Time{}
		}
		s.mu.Unlock()
		return nil, err
	}
	return item, nil
}

// Reset forgets the last seen barcode.
func (s *ScanSession) Reset() {
	s.mu.Lock()
	s.lastBarcode = ""
	s.lastSeen = time.Time{}
	s.mu.Unlock()
}
