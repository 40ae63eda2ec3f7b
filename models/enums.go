package models

import (
	"encoding/json"
	"errors"
	"strings"
)

type AccountKind string

const (
	AccountKindManufacturer AccountKind = "Manufacturer"
	AccountKindCustomer     AccountKind = "Customer"
)

func (k AccountKind) IsValid() bool {
	return k == AccountKindManufacturer || k == AccountKindCustomer
}

// ResourceName is the collection name used in routes and cache keys.
func (k AccountKind) ResourceName() string {
	switch k {
	case AccountKindManufacturer:
		return "manufacturers"
	case AccountKindCustomer:
		return "customers"
	}
	return ""
}

type EntryKind string

const (
	EntryKindCredit  EntryKind = "Credit"
	EntryKindPayment EntryKind = "Payment"
)

type MovementType string

const (
	MovementTypeIn     MovementType = "IN"
	MovementTypeOut    MovementType = "OUT"
	MovementTypeAdjust MovementType = "ADJUST"
)

func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjust:
		return true
	}
	return false
}

func ParseMovementType(s string) (MovementType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "IN":
		return MovementTypeIn, nil
	case "OUT":
		return MovementTypeOut, nil
	case "ADJUST":
		return MovementTypeAdjust, nil
	default:
		return "", errors.New("invalid movement type")
	}
}

// convert input to enum type
func (t *MovementType) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("movement type must be string")
	}
	mt, err := ParseMovementType(str)
	if err != nil {
		return err
	}
	*t = mt
	return nil
}

type StockStatus string

const (
	StockStatusLow StockStatus = "LOW"
	StockStatusOK  StockStatus = "OK"
)

type NotificationLevel string

const (
	NotificationLevelInfo  NotificationLevel = "info"
	NotificationLevelError NotificationLevel = "error"
)
