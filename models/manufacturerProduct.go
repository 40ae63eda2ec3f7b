package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ManufacturerProduct is a product line received from a manufacturer.
type ManufacturerProduct struct {
	ID             string          `gorm:"primaryKey;size:36" json:"_id"`
	ManufacturerId string          `gorm:"index;size:36;not null" json:"-"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	Quantity       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Rate           decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"rate"`
	Total          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	Date           time.Time       `gorm:"not null" json:"date"`
}

type NewManufacturerProduct struct {
	Name     string          `json:"name" binding:"required" validate:"required,max=100"`
	Quantity decimal.Decimal `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
	Total    decimal.Decimal `json:"total"`
	Date     time.Time       `json:"date"`
}

type ProductTotals struct {
	Quantity decimal.Decimal `json:"qty"`
	Total    decimal.Decimal `json:"sum"`
}

func SumProducts(products []ManufacturerProduct) ProductTotals {
	totals := ProductTotals{Quantity: decimal.Zero, Total: decimal.Zero}
	for _, p := range products {
		totals.Quantity = totals.Quantity.Add(p.Quantity)
		totals.Total = totals.Total.Add(p.Total)
	}
	return totals
}
