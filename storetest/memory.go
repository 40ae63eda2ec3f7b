// Package storetest provides an in-memory models.Store for tests.
package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Memory applies mutations the way the real store does: derived fields are
// recomputed on write and the updated entity is returned.
type Memory struct {
	mu        sync.Mutex
	accounts  map[models.AccountKind][]*models.LedgerAccount
	sales     []*models.Sale
	items     []*models.InventoryItem
	movements []*models.StockMovement
	failNext  error
	calls     map[string]int
	Now       func() time.Time

	// Block, when set, is received from before each mutation returns.
	Block chan struct{}
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[models.AccountKind][]*models.LedgerAccount),
		calls:    make(map[string]int),
		Now:      time.Now,
	}
}

// FailNext makes the next store call return err.
func (s *Memory) FailNext(err error) {
	s.mu.Lock()
	s.failNext = err
	s.mu.Unlock()
}

// Calls reports how many times op was invoked.
func (s *Memory) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *Memory) begin(op string) error {
	s.mu.Lock()
	s.calls[op]++
	err := s.failNext
	s.failNext = nil
	block := s.Block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	return err
}

func (s *Memory) ListAccounts(ctx context.Context, kind models.AccountKind) ([]*models.LedgerAccount, error) {
	if err := s.begin("ListAccounts"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.LedgerAccount, 0, len(s.accounts[kind]))
	for _, a := range s.accounts[kind] {
		out = append(out, a.Clone())
	}
	return out, nil
}

func (s *Memory) GetAccount(ctx context.Context, kind models.AccountKind, id string) (*models.LedgerAccount, error) {
	if err := s.begin("GetAccount"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.find(kind, id)
	if a == nil {
		return nil, utils.NewNotFoundError(kind.ResourceName(), id)
	}
	return a.Clone(), nil
}

func (s *Memory) CreateAccount(ctx context.Context, kind models.AccountKind, input *models.NewLedgerAccount) (*models.LedgerAccount, error) {
	if err := s.begin("CreateAccount"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now()
	a := &models.LedgerAccount{
		ID:          uuid.NewString(),
		Kind:        kind,
		Name:        input.Name,
		NameKey:     utils.NormalizeName(input.Name),
		Product:     input.Product,
		CreditGiven: input.CreditGiven,
		PaidAmount:  input.PaidAmount,
		CreatedAt:   now,
	}
	a.CreditHistory = []models.LedgerEntry{}
	a.PaymentHistory = []models.LedgerEntry{}
	if !input.CreditGiven.IsZero() {
		a.CreditHistory = append(a.CreditHistory, models.LedgerEntry{ID: uuid.NewString(), AccountId: a.ID, Kind: models.EntryKindCredit, Amount: input.CreditGiven, Date: now})
	}
	if !input.PaidAmount.IsZero() {
		a.PaymentHistory = append(a.PaymentHistory, models.LedgerEntry{ID: uuid.NewString(), AccountId: a.ID, Kind: models.EntryKindPayment, Amount: input.PaidAmount, Date: now})
	}
	if kind == models.AccountKindManufacturer {
		a.Products = []models.ManufacturerProduct{}
	}
	s.accounts[kind] = append(s.accounts[kind], a)
	return a.Clone(), nil
}

func (s *Memory) AddCredit(ctx context.Context, kind models.AccountKind, id string, input *models.NewLedgerEntry) (*models.LedgerAccount, error) {
	return s.addEntry("AddCredit", kind, id, models.EntryKindCredit, input)
}

func (s *Memory) AddPayment(ctx context.Context, kind models.AccountKind, id string, input *models.NewLedgerEntry) (*models.LedgerAccount, error) {
	return s.addEntry("AddPayment", kind, id, models.EntryKindPayment, input)
}

func (s *Memory) addEntry(op string, kind models.AccountKind, id string, entryKind models.EntryKind, input *models.NewLedgerEntry) (*models.LedgerAccount, error) {
	if err := s.begin(op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.find(kind, id)
	if a == nil {
		return nil, utils.NewNotFoundError(kind.ResourceName(), id)
	}
	entry := models.LedgerEntry{ID: uuid.NewString(), AccountId: id, Kind: entryKind, Amount: input.Amount, Note: input.Note, Date: s.Now()}
	if entryKind == models.EntryKindCredit {
		a.CreditGiven = a.CreditGiven.Add(input.Amount)
		a.CreditHistory = append(a.CreditHistory, entry)
	} else {
		a.PaidAmount = a.PaidAmount.Add(input.Amount)
		a.PaymentHistory = append(a.PaymentHistory, entry)
	}
	return a.Clone(), nil
}

func (s *Memory) AddManufacturerProduct(ctx context.Context, id string, input *models.NewManufacturerProduct) (*models.LedgerAccount, error) {
	if err := s.begin("AddManufacturerProduct"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.find(models.AccountKindManufacturer, id)
	if a == nil {
		return nil, utils.NewNotFoundError("manufacturers", id)
	}
	date := input.Date
	if date.IsZero() {
		date = s.Now()
	}
	a.Products = append(a.Products, models.ManufacturerProduct{
		ID:             uuid.NewString(),
		ManufacturerId: id,
		Name:           input.Name,
		Quantity:       input.Quantity,
		Rate:           input.Rate,
		Total:          input.Quantity.Mul(input.Rate),
		Date:           date,
	})
	return a.Clone(), nil
}

func (s *Memory) ListSales(ctx context.Context) ([]*models.Sale, error) {
	if err := s.begin("ListSales"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		c := *sale
		out = append(out, &c)
	}
	return out, nil
}

func (s *Memory) CreateSale(ctx context.Context, input *models.NewSale) (*models.Sale, error) {
	if err := s.begin("CreateSale"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sale := &models.Sale{
		ID:          uuid.NewString(),
		ProductName: input.ProductName,
		Quantity:    input.Quantity,
		Price:       input.Price,
		Total:       models.SaleTotal(input.Quantity, input.Price),
		Date:        input.Date,
		CreatedAt:   s.Now(),
	}
	s.sales = append(s.sales, sale)
	c := *sale
	return &c, nil
}

func (s *Memory) ListInventoryItems(ctx context.Context) ([]*models.InventoryItem, error) {
	if err := s.begin("ListInventoryItems"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.InventoryItem, 0, len(s.items))
	for _, item := range s.items {
		c := *item
		out = append(out, &c)
	}
	return out, nil
}

func (s *Memory) CreateInventoryItem(ctx context.Context, input *models.NewInventoryItem) (*models.InventoryItem, error) {
	if err := s.begin("CreateInventoryItem"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findItem(input.Barcode) != nil {
		return nil, utils.NewValidationError("barcode", "%s already exists", input.Barcode)
	}
	now := s.Now()
	item := &models.InventoryItem{
		ID:        uuid.NewString(),
		Barcode:   input.Barcode,
		Name:      input.Name,
		Sku:       input.Sku,
		MinStock:  input.MinStock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.items = append(s.items, item)
	c := *item
	return &c, nil
}

func (s *Memory) ListStockMovements(ctx context.Context) ([]*models.StockMovement, error) {
	if err := s.begin("ListStockMovements"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.StockMovement, 0, len(s.movements))
	for _, mv := range s.movements {
		c := *mv
		out = append(out, &c)
	}
	return out, nil
}

func (s *Memory) RecordMovement(ctx context.Context, input *models.NewStockMovement) (*models.InventoryItem, error) {
	if err := s.begin("RecordMovement"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.findItem(input.Barcode)
	if item == nil {
		return nil, utils.NewNotFoundError("inventory item", input.Barcode)
	}
	next := models.ApplyMovement(item.Stock, input.Type, input.Quantity)
	if next < 0 {
		return nil, utils.NewValidationError("quantity", "insufficient stock for %s", input.Barcode)
	}
	now := s.Now()
	item.Stock = next
	item.UpdatedAt = now
	s.movements = append(s.movements, &models.StockMovement{
		ID:        uuid.NewString(),
		Barcode:   input.Barcode,
		Type:      input.Type,
		Quantity:  input.Quantity,
		Reason:    input.Reason,
		CreatedAt: now,
	})
	c := *item
	return &c, nil
}

// SetStock overwrites an item's stock without a movement, to simulate drift.
func (s *Memory) SetStock(barcode string, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item := s.findItem(barcode); item != nil {
		item.Stock = stock
	}
}

// SeedAccount inserts an account directly, bypassing call counting.
func (s *Memory) SeedAccount(kind models.AccountKind, name string, credit int64, paid int64) *models.LedgerAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &models.LedgerAccount{
		ID:             uuid.NewString(),
		Kind:           kind,
		Name:           name,
		NameKey:        utils.NormalizeName(name),
		CreditGiven:    decimal.NewFromInt(credit),
		PaidAmount:     decimal.NewFromInt(paid),
		CreditHistory:  []models.LedgerEntry{},
		PaymentHistory: []models.LedgerEntry{},
		CreatedAt:      s.Now(),
	}
	s.accounts[kind] = append(s.accounts[kind], a)
	return a.Clone()
}

func (s *Memory) find(kind models.AccountKind, id string) *models.LedgerAccount {
	for _, a := range s.accounts[kind] {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *Memory) findItem(barcode string) *models.InventoryItem {
	for _, item := range s.items {
		if item.Barcode == barcode {
			return item
		}
	}
	return nil
}

var _ models.Store = (*Memory)(nil)
