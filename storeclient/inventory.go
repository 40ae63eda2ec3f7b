package storeclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/utils"
)

func (c *Client) ListInventoryItems(ctx context.Context) ([]*models.InventoryItem, error) {
	var out []*models.InventoryItem
	if err := c.do(ctx, "list products", http.MethodGet, "/inventory/products", "inventory item", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateInventoryItem(ctx context.Context, input *models.NewInventoryItem) (*models.InventoryItem, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "create product", http.MethodPost, "/inventory/products", "inventory item", input.Barcode, input, &raw); err != nil {
		return nil, err
	}
	return decodeItem("create product", raw)
}

func (c *Client) ListStockMovements(ctx context.Context) ([]*models.StockMovement, error) {
	var out []*models.StockMovement
	if err := c.do(ctx, "list transactions", http.MethodGet, "/inventory/transactions", "stock movement", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RecordMovement(ctx context.Context, input *models.NewStockMovement) (*models.InventoryItem, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "record movement", http.MethodPost, "/inventory/scan", "inventory item", input.Barcode, input, &raw); err != nil {
		return nil, err
	}
	return decodeItem("record movement", raw)
}

// decodeItem accepts either the bare item or {"product": item}.
func decodeItem(op string, raw json.RawMessage) (*models.InventoryItem, error) {
	var wrapped struct {
		Product *models.InventoryItem `json:"product"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Product != nil {
		return wrapped.Product, nil
	}
	var item models.InventoryItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, utils.NewTransportError(op, http.StatusOK, err)
	}
	if item.Barcode == "" {
		return nil, utils.NewTransportError(op, http.StatusOK, errMissingItem)
	}
	return &item, nil
}

var _ models.Store = (*Client)(nil)
