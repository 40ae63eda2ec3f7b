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

func (s *Store) ListInventoryItems(ctx context.Context) ([]*models.InventoryItem, error) {
	if cached := retrieveList[models.InventoryItem](ctx, s.cache, ""); cached != nil {
		return cached, nil
	}
	var items []*models.InventoryItem
	if err := s.db.WithContext(ctx).Order("name").Order("barcode").Find(&items).Error; err != nil {
		return nil, wrap("list products", "inventory item", "", err)
	}
	storeList(ctx, s.cache, "", items)
	return items, nil
}

func (s *Store) CreateInventoryItem(ctx context.Context, input *models.NewInventoryItem) (*models.InventoryItem, error) {
	barcode := strings.TrimSpace(input.Barcode)
	if barcode == "" {
		return nil, utils.NewValidationError("barcode", "is required")
	}
	if input.MinStock < 0 {
		return nil, utils.NewValidationError("minStock", "must not be negative")
	}
	item := &models.InventoryItem{
		ID:       uuid.NewString(),
		Barcode:  barcode,
		Name:     strings.TrimSpace(input.Name),
		Sku:      strings.TrimSpace(input.Sku),
		MinStock: input.MinStock,
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, utils.NewValidationError("barcode", "%s already exists", barcode)
		}
		return nil, wrap("create product", "inventory item", barcode, err)
	}
	removeList[models.InventoryItem](ctx, s.cache, "")
	return item, nil
}

func (s *Store) ListStockMovements(ctx context.Context) ([]*models.StockMovement, error) {
	if cached := retrieveList[models.StockMovement](ctx, s.cache, ""); cached != nil {
		return cached, nil
	}
	var movements []*models.StockMovement
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&movements).Error; err != nil {
		return nil, wrap("list transactions", "stock movement", "", err)
	}
	storeList(ctx, s.cache, "", movements)
	return movements, nil
}

// RecordMovement applies the movement to the item and appends it to the log in one
// transaction. IN adds, OUT subtracts and may not go below zero, ADJUST sets the stock.
func (s *Store) RecordMovement(ctx context.Context, input *models.NewStockMovement) (*models.InventoryItem, error) {
	barcode := strings.TrimSpace(input.Barcode)
	if !input.Type.IsValid() {
		return nil, utils.NewValidationError("type", "must be one of IN, OUT, ADJUST")
	}
	if err := utils.ValidatePositiveQuantity("quantity", input.Quantity); err != nil {
		return nil, err
	}

	var item models.InventoryItem
	err := s.withLock(ctx, lockKey("barcode", barcode), func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("barcode = ?", barcode).First(&item).Error; err != nil {
				return err
			}
			next := models.ApplyMovement(item.Stock, input.Type, input.Quantity)
			if next < 0 {
				return utils.NewValidationError("quantity", "only %d in stock for %s", item.Stock, barcode)
			}
			if err := tx.Model(&item).Update("stock", next).Error; err != nil {
				return err
			}
			item.Stock = next
			movement := models.StockMovement{
				ID:       uuid.NewString(),
				Barcode:  barcode,
				Type:     input.Type,
				Quantity: input.Quantity,
				Reason:   strings.TrimSpace(input.Reason),
			}
			return tx.Create(&movement).Error
		})
	})
	if err != nil {
		return nil, wrap("record movement", "inventory item", barcode, err)
	}
	removeList[models.InventoryItem](ctx, s.cache, "")
	removeList[models.StockMovement](ctx, s.cache, "")
	return &item, nil
}

var _ models.Store = (*Store)(nil)
