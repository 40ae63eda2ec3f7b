package sqlstore

import (
	"context"
	"strings"

	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) ListAccounts(ctx context.Context, kind models.AccountKind) ([]*models.LedgerAccount, error) {
	if cached := retrieveList[models.LedgerAccount](ctx, s.cache, string(kind)); cached != nil {
		for _, a := range cached {
			a.Normalize(kind)
		}
		return cached, nil
	}

	var accounts []*models.LedgerAccount
	q := s.db.WithContext(ctx).Where("kind = ?", kind).Order("created_at").Order("id")
	if kind == models.AccountKindManufacturer {
		q = q.Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("date") })
	}
	if err := q.Find(&accounts).Error; err != nil {
		return nil, wrap("list "+kind.ResourceName(), kind.ResourceName(), "", err)
	}
	if err := s.attachEntries(ctx, s.db, accounts...); err != nil {
		return nil, wrap("list "+kind.ResourceName(), kind.ResourceName(), "", err)
	}
	for _, a := range accounts {
		a.Normalize(kind)
	}
	storeList(ctx, s.cache, string(kind), accounts)
	return accounts, nil
}

func (s *Store) GetAccount(ctx context.Context, kind models.AccountKind, id string) (*models.LedgerAccount, error) {
	account, err := s.getAccount(ctx, s.db, kind, id)
	if err != nil {
		return nil, wrap("get "+kind.ResourceName(), kind.ResourceName(), id, err)
	}
	return account, nil
}

func (s *Store) getAccount(ctx context.Context, tx *gorm.DB, kind models.AccountKind, id string) (*models.LedgerAccount, error) {
	var account models.LedgerAccount
	q := tx.WithContext(ctx).Where("id = ? AND kind = ?", id, kind)
	if kind == models.AccountKindManufacturer {
		q = q.Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("date") })
	}
	if err := q.First(&account).Error; err != nil {
		return nil, err
	}
	if err := s.attachEntries(ctx, tx, &account); err != nil {
		return nil, err
	}
	return account.Normalize(kind), nil
}

// attachEntries loads credit and payment history for the given accounts in one query.
func (s *Store) attachEntries(ctx context.Context, tx *gorm.DB, accounts ...*models.LedgerAccount) error {
	if len(accounts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}
	var entries []models.LedgerEntry
	if err := tx.WithContext(ctx).Where("account_id IN ?", ids).Order("date").Order("id").Find(&entries).Error; err != nil {
		return err
	}
	byAccount := make(map[string][]models.LedgerEntry, len(accounts))
	for _, e := range entries {
		byAccount[e.AccountId] = append(byAccount[e.AccountId], e)
	}
	for _, a := range accounts {
		a.SplitEntries(byAccount[a.ID])
	}
	return nil
}

func (s *Store) CreateAccount(ctx context.Context, kind models.AccountKind, input *models.NewLedgerAccount) (*models.LedgerAccount, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, utils.NewValidationError("name", "is required")
	}
	if input.CreditGiven.IsNegative() || input.PaidAmount.IsNegative() {
		return nil, utils.NewValidationError("amount", "must not be negative")
	}
	now := s.now()
	account := &models.LedgerAccount{
		ID:          uuid.NewString(),
		Kind:        kind,
		Name:        name,
		NameKey:     utils.NormalizeName(name),
		Product:     strings.TrimSpace(input.Product),
		CreditGiven: input.CreditGiven,
		PaidAmount:  input.PaidAmount,
		CreatedAt:   now,
	}
	var seed []models.LedgerEntry
	if input.CreditGiven.IsPositive() {
		seed = append(seed, models.LedgerEntry{ID: uuid.NewString(), AccountId: account.ID, Kind: models.EntryKindCredit, Amount: input.CreditGiven, Date: now})
	}
	if input.PaidAmount.IsPositive() {
		seed = append(seed, models.LedgerEntry{ID: uuid.NewString(), AccountId: account.ID, Kind: models.EntryKindPayment, Amount: input.PaidAmount, Date: now})
	}

	var created *models.LedgerAccount
	err := s.withLock(ctx, lockKey("account-name", kind, account.NameKey), func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit(clause.Associations).Create(account).Error; err != nil {
				return err
			}
			if len(seed) > 0 {
				if err := tx.Create(&seed).Error; err != nil {
					return err
				}
			}
			var err error
			created, err = s.getAccount(ctx, tx, kind, account.ID)
			return err
		})
	})
	if err != nil {
		return nil, wrap("create "+kind.ResourceName(), kind.ResourceName(), "", err)
	}
	removeList[models.LedgerAccount](ctx, s.cache, string(kind))
	return created, nil
}

func (s *Store) AddCredit(ctx context.Context, kind models.AccountKind, id string, input *models.NewLedgerEntry) (*models.LedgerAccount, error) {
	return s.addEntry(ctx, kind, id, models.EntryKindCredit, input)
}

func (s *Store) AddPayment(ctx context.Context, kind models.AccountKind, id string, input *models.NewLedgerEntry) (*models.LedgerAccount, error) {
	return s.addEntry(ctx, kind, id, models.EntryKindPayment, input)
}

func (s *Store) addEntry(ctx context.Context, kind models.AccountKind, id string, entryKind models.EntryKind, input *models.NewLedgerEntry) (*models.LedgerAccount, error) {
	op := "add " + strings.ToLower(string(entryKind))
	if err := utils.ValidatePositiveAmount("amount", input.Amount); err != nil {
		return nil, err
	}
	column := "credit_given"
	if entryKind == models.EntryKindPayment {
		column = "paid_amount"
	}

	var updated *models.LedgerAccount
	err := s.withLock(ctx, lockKey("account", id), func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var account models.LedgerAccount
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ? AND kind = ?", id, kind).First(&account).Error; err != nil {
				return err
			}
			if err := tx.Model(&account).Update(column, gorm.Expr(column+" + ?", input.Amount)).Error; err != nil {
				return err
			}
			entry := models.LedgerEntry{
				ID:        uuid.NewString(),
				AccountId: id,
				Kind:      entryKind,
				Amount:    input.Amount,
				Note:      strings.TrimSpace(input.Note),
				Date:      s.now(),
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			var err error
			updated, err = s.getAccount(ctx, tx, kind, id)
			return err
		})
	})
	if err != nil {
		return nil, wrap(op, kind.ResourceName(), id, err)
	}
	removeList[models.LedgerAccount](ctx, s.cache, string(kind))
	return updated, nil
}

func (s *Store) AddManufacturerProduct(ctx context.Context, id string, input *models.NewManufacturerProduct) (*models.LedgerAccount, error) {
	kind := models.AccountKindManufacturer
	if err := utils.ValidatePositiveAmount("quantity", input.Quantity); err != nil {
		return nil, err
	}
	if err := utils.ValidatePositiveAmount("rate", input.Rate); err != nil {
		return nil, err
	}
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	product := models.ManufacturerProduct{
		ID:             uuid.NewString(),
		ManufacturerId: id,
		Name:           strings.TrimSpace(input.Name),
		Quantity:       input.Quantity,
		Rate:           input.Rate,
		Total:          input.Quantity.Mul(input.Rate),
		Date:           date,
	}

	var updated *models.LedgerAccount
	err := s.withLock(ctx, lockKey("account", id), func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var account models.LedgerAccount
			if err := tx.Where("id = ? AND kind = ?", id, kind).First(&account).Error; err != nil {
				return err
			}
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			var err error
			updated, err = s.getAccount(ctx, tx, kind, id)
			return err
		})
	})
	if err != nil {
		return nil, wrap("add product", kind.ResourceName(), id, err)
	}
	removeList[models.LedgerAccount](ctx, s.cache, string(kind))
	return updated, nil
}
