package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts travel as plain JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// LedgerEntry is one credit or payment applied to an account. Entries are never edited.
type LedgerEntry struct {
	ID        string          `gorm:"primaryKey;size:36" json:"-"`
	AccountId string          `gorm:"index;size:36;not null" json:"-"`
	Kind      EntryKind       `gorm:"size:10;not null" json:"-"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Note      string          `gorm:"size:255" json:"note,omitempty"`
	Date      time.Time       `gorm:"not null" json:"date"`
}

// LedgerAccount is a manufacturer (payable) or customer (receivable) account.
// Balance is derived from CreditGiven and PaidAmount and is never stored.
type LedgerAccount struct {
	ID             string                `gorm:"primaryKey;size:36" json:"_id"`
	DisplayIndex   int                   `gorm:"-" json:"-"`
	Kind           AccountKind           `gorm:"size:20;index;not null" json:"-"`
	Name           string                `gorm:"size:100;not null" json:"name"`
	NameKey        string                `gorm:"size:100;index" json:"-"`
	Product        string                `gorm:"size:100" json:"product,omitempty"`
	CreditGiven    decimal.Decimal       `gorm:"type:decimal(20,4);not null;default:0" json:"creditGiven"`
	PaidAmount     decimal.Decimal       `gorm:"type:decimal(20,4);not null;default:0" json:"paidAmount"`
	CreditHistory  []LedgerEntry         `gorm:"-" json:"creditHistory"`
	PaymentHistory []LedgerEntry         `gorm:"-" json:"paymentHistory"`
	Products       []ManufacturerProduct `gorm:"foreignKey:ManufacturerId" json:"products,omitempty"`
	CreatedAt      time.Time             `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time             `gorm:"autoUpdateTime" json:"-"`
}

func (a LedgerAccount) Balance() decimal.Decimal {
	return a.CreditGiven.Sub(a.PaidAmount)
}

func (a LedgerAccount) MarshalJSON() ([]byte, error) {
	type account LedgerAccount
	return json.Marshal(struct {
		account
		DisplayIndex int             `json:"id,omitempty"`
		Balance      decimal.Decimal `json:"balance"`
	}{account(a), a.DisplayIndex, a.Balance()})
}

// Clone returns a deep copy so cached records are never shared with callers.
func (a *LedgerAccount) Clone() *LedgerAccount {
	if a == nil {
		return nil
	}
	c := *a
	c.CreditHistory = append([]LedgerEntry(nil), a.CreditHistory...)
	c.PaymentHistory = append([]LedgerEntry(nil), a.PaymentHistory...)
	if a.Products != nil {
		c.Products = append([]ManufacturerProduct(nil), a.Products...)
	}
	return &c
}

// SplitEntries fills CreditHistory and PaymentHistory from a mixed, date-ordered entry list.
func (a *LedgerAccount) SplitEntries(entries []LedgerEntry) {
	a.CreditHistory = make([]LedgerEntry, 0)
	a.PaymentHistory = make([]LedgerEntry, 0)
	for _, e := range entries {
		switch e.Kind {
		case EntryKindCredit:
			a.CreditHistory = append(a.CreditHistory, e)
		case EntryKindPayment:
			a.PaymentHistory = append(a.PaymentHistory, e)
		}
	}
}

type NewLedgerAccount struct {
	Name        string          `json:"name" binding:"required" validate:"required,max=100"`
	CreditGiven decimal.Decimal `json:"creditGiven"`
	PaidAmount  decimal.Decimal `json:"paidAmount"`
	Product     string          `json:"product,omitempty" validate:"max=100"`
}

type NewLedgerEntry struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty" validate:"max=255"`
}

// Normalize fills the fields that are not carried on the wire: the account
// kind, the name key and the kind of every history entry.
func (a *LedgerAccount) Normalize(kind AccountKind) *LedgerAccount {
	if a == nil {
		return nil
	}
	a.Kind = kind
	a.NameKey = strings.ToLower(strings.TrimSpace(a.Name))
	if a.CreditHistory == nil {
		a.CreditHistory = []LedgerEntry{}
	}
	if a.PaymentHistory == nil {
		a.PaymentHistory = []LedgerEntry{}
	}
	for i := range a.CreditHistory {
		a.CreditHistory[i].Kind = EntryKindCredit
		a.CreditHistory[i].AccountId = a.ID
	}
	for i := range a.PaymentHistory {
		a.PaymentHistory[i].Kind = EntryKindPayment
		a.PaymentHistory[i].AccountId = a.ID
	}
	return a
}
