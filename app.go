package main

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/balanoilmart/ledger_backend/config"
	"github.com/balanoilmart/ledger_backend/inventory"
	"github.com/balanoilmart/ledger_backend/ledger"
	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/notify"
	"github.com/balanoilmart/ledger_backend/sales"
	"github.com/balanoilmart/ledger_backend/utils"
)

// scanSessionIdleTTL is how long a scanning session survives without a scan.
const scanSessionIdleTTL = 30 * time.Minute

type scanSessionEntry struct {
	session  *inventory.ScanSession
	lastUsed time.Time
}

// App is the state of the one staff session this process serves.
type App struct {
	Location      *time.Location
	ScanCooldown  time.Duration
	Notifications *notify.Center
	Manufacturers *ledger.Manager
	Customers     *ledger.Manager
	Sales         *sales.Register
	Inventory     *inventory.Register

	now   func() time.Time
	ready atomic.Bool

	mu           sync.Mutex
	scanSessions map[string]*scanSessionEntry
}

func NewApp(store models.Store, settings *config.Settings) *App {
	location := utils.LoadLocation(settings.Timezone)
	center := notify.NewCenter()
	return &App{
		Location:      location,
		ScanCooldown:  settings.ScanCooldown,
		Notifications: center,
		Manufacturers: ledger.NewManager(models.AccountKindManufacturer, store, center),
		Customers:     ledger.NewManager(models.AccountKindCustomer, store, center),
		Sales:         sales.NewRegister(store, center, location),
		Inventory:     inventory.NewRegister(store, center),
		now:           time.Now,
		scanSessions:  make(map[string]*scanSessionEntry),
	}
}

// Load takes a fresh snapshot of every collection. Failed loads keep their previous snapshot.
func (a *App) Load(ctx context.Context) error {
	return errors.Join(
		a.Manufacturers.Load(ctx),
		a.Customers.Load(ctx),
		a.Sales.Load(ctx),
		a.Inventory.Load(ctx),
	)
}

func (a *App) Ready() bool {
	return a.ready.Load()
}

func (a *App) MarkReady() {
	a.ready.Store(true)
}

func (a *App) manager(kind models.AccountKind) *ledger.Manager {
	if kind == models.AccountKindManufacturer {
		return a.Manufacturers
	}
	return a.Customers
}

// OpenScanSession also drops sessions left idle by reloaded or closed pages.
func (a *App) OpenScanSession() *inventory.ScanSession {
	s := inventory.NewScanSession(a.Inventory, a.ScanCooldown)
	now := a.now()
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, entry := range a.scanSessions {
		if now.Sub(entry.lastUsed) > scanSessionIdleTTL {
			delete(a.scanSessions, id)
		}
	}
	a.scanSessions[s.ID] = &scanSessionEntry{session: s, lastUsed: now}
	return s
}

func (a *App) ScanSession(id string) (*inventory.ScanSession, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	entry, ok := a.scanSessions[id]
	if !ok {
		return nil, false
	}
	entry.lastUsed = a.now()
	return entry.session, true
}

func (a *App) CloseScanSession(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.scanSessions[id]; !ok {
		return false
	}
	delete(a.scanSessions, id)
	return true
}

func (a *App) Now() time.Time {
	return a.now().In(a.Location)
}
