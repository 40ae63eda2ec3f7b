package sqlstore

import (
	"context"
	"strings"

	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/google/uuid"
)

func (s *Store) ListSales(ctx context.Context) ([]*models.Sale, error) {
	if cached := retrieveList[models.Sale](ctx, s.cache, ""); cached != nil {
		return cached, nil
	}
	var sales []*models.Sale
	if err := s.db.WithContext(ctx).Order("date DESC").Order("created_at DESC").Find(&sales).Error; err != nil {
		return nil, wrap("list sales", "sales", "", err)
	}
	storeList(ctx, s.cache, "", sales)
	return sales, nil
}

// CreateSale stores a sale; the caller's total is ignored and recomputed.
func (s *Store) CreateSale(ctx context.Context, input *models.NewSale) (*models.Sale, error) {
	name := strings.TrimSpace(input.ProductName)
	if name == "" {
		return nil, utils.NewValidationError("productName", "is required")
	}
	if err := utils.ValidatePositiveAmount("quantity", input.Quantity); err != nil {
		return nil, err
	}
	if err := utils.ValidatePositiveAmount("price", input.Price); err != nil {
		return nil, err
	}
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	sale := &models.Sale{
		ID:          uuid.NewString(),
		ProductName: name,
		Quantity:    input.Quantity,
		Price:       input.Price,
		Total:       models.SaleTotal(input.Quantity, input.Price),
		Date:        date,
	}
	if err := s.db.WithContext(ctx).Create(sale).Error; err != nil {
		return nil, wrap("create sale", "sales", "", err)
	}
	removeList[models.Sale](ctx, s.cache, "")
	return sale, nil
}
