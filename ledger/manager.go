package ledger

import (
	"context"
	"strings"
	"sync"

	"github.com/balanoilmart/ledger_backend/config"
	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/notify"
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ledger")

// Manager owns the cached accounts of one kind for one session.
// The cache is only ever replaced from a successful store response.
type Manager struct {
	kind     models.AccountKind
	store    models.Store
	notifier notify.Publisher
	logger   *logrus.Logger

	mu       sync.RWMutex
	accounts []*models.LedgerAccount
	inFlight map[string]struct{}
}

func NewManager(kind models.AccountKind, store models.Store, notifier notify.Publisher) *Manager {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Manager{
		kind:     kind,
		store:    store,
		notifier: notifier,
		logger:   config.GetLogger(),
		inFlight: make(map[string]struct{}),
	}
}

// Load replaces the cached accounts with the store's current list.
func (m *Manager) Load(ctx context.Context) error {
	ctx, span := m.startSpan(ctx, "Load", "")
	defer span.End()

	accounts, err := m.store.ListAccounts(ctx, m.kind)
	if err != nil {
		m.fail(span, "Load", "", err, "Failed to fetch "+m.kind.ResourceName())
		return err
	}
	cached := make([]*models.LedgerAccount, 0, len(accounts))
	for _, a := range accounts {
		if a != nil {
			cached = append(cached, a.Clone())
		}
	}
	m.mu.Lock()
	m.accounts = cached
	m.mu.Unlock()
	return nil
}

// List returns copies of the cached accounts in creation order.
// DisplayIndex is assigned here and is never used for lookups.
func (m *Manager) List() []*models.LedgerAccount {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.LedgerAccount, 0, len(m.accounts))
	for i, a := range m.accounts {
		c := a.Clone()
		c.DisplayIndex = i + 1
		out = append(out, c)
	}
	return out
}

// Find looks up a cached account by its store id.
func (m *Manager) Find(id string) (*models.LedgerAccount, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.indexOf(id); i >= 0 {
		return m.accounts[i].Clone(), true
	}
	return nil, false
}

// Get fetches one account from the store and refreshes the cached copy.
func (m *Manager) Get(ctx context.Context, id string) (*models.LedgerAccount, error) {
	if id == "" {
		return nil, utils.NewValidationError("id", "is required")
	}
	ctx, span := m.startSpan(ctx, "Get", id)
	defer span.End()

	account, err := m.store.GetAccount(ctx, m.kind, id)
	if err != nil {
		m.fail(span, "Get", id, err, "Failed to fetch "+m.label())
		return nil, err
	}
	return m.replace(account), nil
}

// FindOrCreate merges into an existing account whose normalized name matches,
// routing positive initial amounts through AddCredit and AddPayment.
// Otherwise it creates a new account seeded with the initial amounts.
func (m *Manager) FindOrCreate(ctx context.Context, input *models.NewLedgerAccount) (*models.LedgerAccount, error) {
	if input == nil {
		return nil, utils.NewValidationError("name", "is required")
	}
	if err := utils.ValidateRequiredName("name", input.Name); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.CreditGiven.IsNegative() {
		return nil, utils.NewValidationError("creditGiven", "must not be negative")
	}
	if input.PaidAmount.IsNegative() {
		return nil, utils.NewValidationError("paidAmount", "must not be negative")
	}

	if existing, ok := m.findByName(input.Name); ok {
		return m.merge(ctx, existing, input)
	}
	return m.create(ctx, input)
}

// create holds the name key for the whole store call. Another caller may have
// created the same name between the first lookup and acquire, so look again.
func (m *Manager) create(ctx context.Context, input *models.NewLedgerAccount) (*models.LedgerAccount, error) {
	key := "name:" + utils.NormalizeName(input.Name)
	if err := m.acquire(key); err != nil {
		return nil, err
	}
	defer m.release(key)

	if existing, ok := m.findByName(input.Name); ok {
		return m.merge(ctx, existing, input)
	}

	ctx, span := m.startSpan(ctx, "Create", "")
	defer span.End()

	create := *input
	create.Name = strings.TrimSpace(input.Name)
	account, err := m.store.CreateAccount(ctx, m.kind, &create)
	if err != nil {
		m.fail(span, "Create", "", err, "Failed to add "+m.label())
		return nil, err
	}
	result := m.replace(account)
	m.notifier.Publish(models.NotificationLevelInfo, "Success", m.label()+" added")
	return result, nil
}

// merge applies the initial amounts to an existing account as a credit then a payment.
// If the payment fails after the credit was stored, the credited account is
// returned together with the error.
func (m *Manager) merge(ctx context.Context, existing *models.LedgerAccount, input *models.NewLedgerAccount) (*models.LedgerAccount, error) {
	account := existing
	if input.CreditGiven.IsPositive() {
		updated, err := m.AddCredit(ctx, existing.ID, input.CreditGiven, "")
		if err != nil {
			return nil, err
		}
		account = updated
	}
	if input.PaidAmount.IsPositive() {
		updated, err := m.AddPayment(ctx, existing.ID, input.PaidAmount, "")
		if err != nil {
			if account != existing {
				return account, err
			}
			return nil, err
		}
		account = updated
	}
	return account, nil
}

func (m *Manager) AddCredit(ctx context.Context, id string, amount decimal.Decimal, note string) (*models.LedgerAccount, error) {
	return m.addEntry(ctx, models.EntryKindCredit, id, amount, note)
}

// AddPayment records a payment. Payments that drive the balance negative are allowed.
func (m *Manager) AddPayment(ctx context.Context, id string, amount decimal.Decimal, note string) (*models.LedgerAccount, error) {
	return m.addEntry(ctx, models.EntryKindPayment, id, amount, note)
}

func (m *Manager) addEntry(ctx context.Context, kind models.EntryKind, id string, amount decimal.Decimal, note string) (*models.LedgerAccount, error) {
	if id == "" {
		return nil, utils.NewValidationError("id", "is required")
	}
	if err := utils.ValidatePositiveAmount("amount", amount); err != nil {
		return nil, err
	}
	input := &models.NewLedgerEntry{Amount: amount, Note: note}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := m.acquire(id); err != nil {
		return nil, err
	}
	defer m.release(id)

	op := "Add" + string(kind)
	ctx, span := m.startSpan(ctx, op, id)
	defer span.End()
	span.SetAttributes(attribute.String("amount", amount.String()))

	var (
		account *models.LedgerAccount
		err     error
	)
	if kind == models.EntryKindCredit {
		account, err = m.store.AddCredit(ctx, m.kind, id, input)
	} else {
		account, err = m.store.AddPayment(ctx, m.kind, id, input)
	}
	if err != nil {
		m.fail(span, op, id, err, "Failed to add "+strings.ToLower(string(kind)))
		return nil, err
	}
	result := m.replace(account)
	if kind == models.EntryKindPayment && result.Balance().IsNegative() {
		m.logger.WithFields(logrus.Fields{
			"module":  "ledger",
			"kind":    m.kind,
			"id":      id,
			"balance": result.Balance().String(),
		}).Warn("payment drove balance below zero")
	}
	m.notifier.Publish(models.NotificationLevelInfo, "Success", string(kind)+" added")
	return result, nil
}

// Rename changes the cached display name only; the store is not updated.
func (m *Manager) Rename(id string, newName string) (*models.LedgerAccount, error) {
	if err := utils.ValidateRequiredName("name", newName); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return nil, utils.NewNotFoundError(m.kind.ResourceName(), id)
	}
	renamed := m.accounts[i].Clone()
	renamed.Name = strings.TrimSpace(newName)
	m.accounts[i] = renamed
	return renamed.Clone(), nil
}

// AddProduct records a product line received from a manufacturer. Total is quantity times rate.
func (m *Manager) AddProduct(ctx context.Context, id string, name string, quantity decimal.Decimal, rate decimal.Decimal) (*models.LedgerAccount, error) {
	if m.kind != models.AccountKindManufacturer {
		return nil, utils.NewValidationError("kind", "products are only recorded for manufacturers")
	}
	if id == "" {
		return nil, utils.NewValidationError("id", "is required")
	}
	if err := utils.ValidateRequiredName("name", name); err != nil {
		return nil, err
	}
	if err := utils.ValidatePositiveAmount("quantity", quantity); err != nil {
		return nil, err
	}
	if err := utils.ValidatePositiveAmount("rate", rate); err != nil {
		return nil, err
	}
	input := &models.NewManufacturerProduct{
		Name:     strings.TrimSpace(name),
		Quantity: quantity,
		Rate:     rate,
		Total:    quantity.Mul(rate),
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := m.acquire(id); err != nil {
		return nil, err
	}
	defer m.release(id)

	ctx, span := m.startSpan(ctx, "AddProduct", id)
	defer span.End()

	account, err := m.store.AddManufacturerProduct(ctx, id, input)
	if err != nil {
		m.fail(span, "AddProduct", id, err, "Failed to add product")
		return nil, err
	}
	result := m.replace(account)
	m.notifier.Publish(models.NotificationLevelInfo, "Success", "Product added")
	return result, nil
}

// ProductTotals sums quantity and total over a manufacturer's product lines.
func ProductTotals(account *models.LedgerAccount) models.ProductTotals {
	if account == nil {
		return models.SumProducts(nil)
	}
	return models.SumProducts(account.Products)
}

func (m *Manager) findByName(name string) (*models.LedgerAccount, bool) {
	key := utils.NormalizeName(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	// first created wins
	for _, a := range m.accounts {
		if utils.NormalizeName(a.Name) == key {
			return a.Clone(), true
		}
	}
	return nil, false
}

// replace swaps the cached record for the store's copy, appending unseen accounts.
func (m *Manager) replace(account *models.LedgerAccount) *models.LedgerAccount {
	if account == nil {
		return nil
	}
	cached := account.Clone()
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(account.ID); i >= 0 {
		m.accounts[i] = cached
	} else {
		m.accounts = append(m.accounts, cached)
	}
	return cached.Clone()
}

// indexOf expects m.mu to be held.
func (m *Manager) indexOf(id string) int {
	for i, a := range m.accounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) acquire(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inFlight[key]; busy {
		return utils.ErrInFlight
	}
	m.inFlight[key] = struct{}{}
	return nil
}

func (m *Manager) release(key string) {
	m.mu.Lock()
	delete(m.inFlight, key)
	m.mu.Unlock()
}

func (m *Manager) startSpan(ctx context.Context, op string, id string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "ledger."+op)
	span.SetAttributes(attribute.String("account.kind", string(m.kind)))
	span.SetAttributes(utils.SessionAttributes(ctx)...)
	if id != "" {
		span.SetAttributes(attribute.String("account.id", id))
	}
	return ctx, span
}

// fail logs the store failure and, for recoverable errors, publishes exactly one notification.
func (m *Manager) fail(span trace.Span, op string, id string, err error, title string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	config.LogError(m.logger, "ledger", op, string(m.kind), id, err)
	if utils.IsRecoverable(err) {
		m.notifier.Publish(models.NotificationLevelError, title, err.Error())
	}
}

func (m *Manager) label() string {
	if m.kind == models.AccountKindManufacturer {
		return "Manufacturer"
	}
	return "Customer"
}
