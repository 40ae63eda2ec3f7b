package models

import "context"

// Store is the external source of truth for every derived number.
// Implementations recompute derived fields and return the updated entity.
type Store interface {
	ListAccounts(ctx context.Context, kind AccountKind) ([]*LedgerAccount, error)
	GetAccount(ctx context.Context, kind AccountKind, id string) (*LedgerAccount, error)
	CreateAccount(ctx context.Context, kind AccountKind, input *NewLedgerAccount) (*LedgerAccount, error)
	AddCredit(ctx context.Context, kind AccountKind, id string, input *NewLedgerEntry) (*LedgerAccount, error)
	AddPayment(ctx context.Context, kind AccountKind, id string, input *NewLedgerEntry) (*LedgerAccount, error)
	AddManufacturerProduct(ctx context.Context, id string, input *NewManufacturerProduct) (*LedgerAccount, error)

	ListSales(ctx context.Context) ([]*Sale, error)
	CreateSale(ctx context.Context, input *NewSale) (*Sale, error)

	ListInventoryItems(ctx context.Context) ([]*InventoryItem, error)
	CreateInventoryItem(ctx context.Context, input *NewInventoryItem) (*InventoryItem, error)
	ListStockMovements(ctx context.Context) ([]*StockMovement, error)
	RecordMovement(ctx context.Context, input *NewStockMovement) (*InventoryItem, error)
}
