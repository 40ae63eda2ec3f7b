package storeclient

import (
	"context"
	"net/http"

	"github.com/balanoilmart/ledger_backend/models"
)

func (c *Client) ListSales(ctx context.Context) ([]*models.Sale, error) {
	var out []*models.Sale
	if err := c.do(ctx, "list sales", http.MethodGet, "/api/sales", "sales", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateSale(ctx context.Context, input *models.NewSale) (*models.Sale, error) {
	body := *input
	body.Total = models.SaleTotal(input.Quantity, input.Price)
	var out models.Sale
	if err := c.do(ctx, "create sale", http.MethodPost, "/api/sales", "sales", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
