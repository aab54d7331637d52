package model

import (
	"database/sql"
	"time"
)

// ActiveFlag marks whether a position counts toward current portfolio, debt
// and profit/loss aggregates.
type ActiveFlag string

const (
	FlagOn  ActiveFlag = "ON"
	FlagOff ActiveFlag = "OFF"
)

// PositionRow is one customer/instrument entry from the position export.
// Numeric fields are invalid when the source cell could not be parsed; they are
// only zero-filled when aggregated.
type PositionRow struct {
	Customer          string          `json:"customer"` // empty means no customer
	InstrumentCode    string          `json:"instrumentCode"`
	QuantityPurchased sql.NullFloat64 `json:"quantityPurchased"`
	Active            ActiveFlag      `json:"active"`
	FeeAmount         sql.NullFloat64 `json:"feeAmount"` // portfolio value
	CurrentDebt       sql.NullFloat64 `json:"currentDebt"`
	FinalProfitLoss   sql.NullFloat64 `json:"finalProfitLoss"`
	NetAssetValue     sql.NullFloat64 `json:"netAssetValue"`
}

// HasCustomer reports whether the row carries a customer identifier.
func (p PositionRow) HasCustomer() bool {
	return p.Customer != ""
}

// IsActive reports whether the row is flagged ON.
func (p PositionRow) IsActive() bool {
	return p.Active == FlagOn
}

// AccrualRow is one customer/day entry from the daily interest export.
// Date is the zero time when the source cell could not be parsed.
type AccrualRow struct {
	Customer      string          `json:"customer"`
	Date          time.Time       `json:"date"`
	DailyInterest sql.NullFloat64 `json:"dailyInterest"`
}
