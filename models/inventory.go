package models

import (
	"encoding/json"
	"time"
)

type InventoryItem struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	Barcode   string    `gorm:"size:64;uniqueIndex;not null" json:"barcode"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Sku       string    `gorm:"size:64;index" json:"sku"`
	Stock     int       `gorm:"not null;default:0" json:"stock"`
	MinStock  int       `gorm:"not null;default:0" json:"minStock"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// StockStatus is evaluated on every read; stock at or below the minimum is LOW.
func (i InventoryItem) StockStatus() StockStatus {
	if i.Stock <= i.MinStock {
		return StockStatusLow
	}
	return StockStatusOK
}

func (i InventoryItem) MarshalJSON() ([]byte, error) {
	type item InventoryItem
	return json.Marshal(struct {
		item
		StockStatus StockStatus `json:"stockStatus"`
	}{item(i), i.StockStatus()})
}

type NewInventoryItem struct {
	Barcode  string `json:"barcode" binding:"required" validate:"required,max=64"`
	Name     string `json:"name" binding:"required" validate:"required,max=100"`
	Sku      string `json:"sku" validate:"max=64"`
	MinStock int    `json:"minStock" validate:"gte=0"`
}

// StockMovement is an audit record of a stock change already applied by the store.
type StockMovement struct {
	ID        string       `gorm:"primaryKey;size:36" json:"_id"`
	Barcode   string       `gorm:"size:64;index;not null" json:"barcode"`
	Type      MovementType `gorm:"size:10;not null" json:"type"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	Reason    string       `gorm:"size:255" json:"reason"`
	CreatedAt time.Time    `gorm:"autoCreateTime;index" json:"createdAt"`
}

type NewStockMovement struct {
	Barcode  string       `json:"barcode" binding:"required" validate:"required,max=64"`
	Type     MovementType `json:"type" binding:"required"`
	Quantity int          `json:"quantity"`
	Reason   string       `json:"reason" validate:"max=255"`
}

// ApplyMovement returns the stock level after a movement of the given type.
// ADJUST sets stock to qty.
func ApplyMovement(stock int, t MovementType, qty int) int {
	switch t {
	case MovementTypeIn:
		return stock + qty
	case MovementTypeOut:
		return stock - qty
	case MovementTypeAdjust:
		return qty
	}
	return stock
}
