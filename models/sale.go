package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sale struct {
	ID          string          `gorm:"primaryKey;size:36" json:"_id"`
	ProductName string          `gorm:"size:100;index;not null" json:"productName"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	Total       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"createdAt"`
}

type NewSale struct {
	ProductName string          `json:"productName" validate:"required,max=100"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
	Date        time.Time       `json:"date"`
}

// SaleTotal is the only way a sale total is produced.
func SaleTotal(quantity decimal.Decimal, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice)
}
