package testutil

import (
	"database/sql"
	"time"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
)

// PositionBuilder provides a fluent interface for creating test position rows.
//
// Example usage:
//
//	// Active row with defaults
//	row := testutil.NewPosition("KH01").Build()
//
//	// Customized row
//	row := testutil.NewPosition("KH01").
//	    WithCode("HPG").
//	    WithQuantity(500).
//	    WithNAV(1_000_000).
//	    Off().
//	    Build()
type PositionBuilder struct {
	row model.PositionRow
}

// NewPosition creates a PositionBuilder for customer with sensible defaults:
// flagged ON, code "ABC" and every numeric field absent.
func NewPosition(customer string) *PositionBuilder {
	return &PositionBuilder{
		row: model.PositionRow{
			Customer:       customer,
			InstrumentCode: "ABC",
			Active:         model.FlagOn,
		},
	}
}

// WithCode sets the instrument code.
func (b *PositionBuilder) WithCode(code string) *PositionBuilder {
	b.row.InstrumentCode = code
	return b
}

// WithQuantity sets the purchased quantity.
func (b *PositionBuilder) WithQuantity(q float64) *PositionBuilder {
	b.row.QuantityPurchased = Float(q)
	return b
}

// WithFee sets the fee amount (portfolio value).
func (b *PositionBuilder) WithFee(v float64) *PositionBuilder {
	b.row.FeeAmount = Float(v)
	return b
}

// WithDebt sets the current debt.
func (b *PositionBuilder) WithDebt(v float64) *PositionBuilder {
	b.row.CurrentDebt = Float(v)
	return b
}

// WithProfitLoss sets the final profit/loss.
func (b *PositionBuilder) WithProfitLoss(v float64) *PositionBuilder {
	b.row.FinalProfitLoss = Float(v)
	return b
}

// WithNAV sets the net asset value.
func (b *PositionBuilder) WithNAV(v float64) *PositionBuilder {
	b.row.NetAssetValue = Float(v)
	return b
}

// Off flags the row OFF.
func (b *PositionBuilder) Off() *PositionBuilder {
	b.row.Active = model.FlagOff
	return b
}

// Build returns the row.
func (b *PositionBuilder) Build() model.PositionRow {
	return b.row
}

// NewAccrual creates an accrual row with the given interest.
func NewAccrual(customer string, date time.Time, interest float64) model.AccrualRow {
	return model.AccrualRow{
		Customer:      customer,
		Date:          date,
		DailyInterest: Float(interest),
	}
}

// Day returns midnight UTC of the given calendar date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Float wraps v as a valid nullable float.
func Float(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

// SampleDashboardRows returns a small, fully populated pair of tables used
// by service and handler tests.
func SampleDashboardRows() ([]model.PositionRow, []model.AccrualRow) {
	positions := []model.PositionRow{
		NewPosition("KH01").WithCode("HPG").WithQuantity(1000).WithFee(50_000_000).WithDebt(20_000_000).WithProfitLoss(1_500_000).WithNAV(30_000_000).Build(),
		NewPosition("KH01").WithCode("VNM").WithQuantity(200).WithFee(15_000_000).WithNAV(15_000_000).Build(),
		NewPosition("KH02").WithCode("HPG").WithQuantity(300).WithFee(9_000_000).WithDebt(1_000_000).WithProfitLoss(-250_000).WithNAV(8_000_000).Build(),
		NewPosition("KH03").WithCode("FPT").WithQuantity(50).WithNAV(500_000).Off().Build(),
	}
	accruals := []model.AccrualRow{
		NewAccrual("KH01", Day(2025, 1, 1), 100),
		NewAccrual("KH01", Day(2025, 1, 2), 150),
		NewAccrual("KH01", Day(2025, 1, 3), 120),
		NewAccrual("KH02", Day(2025, 1, 2), 40),
		NewAccrual("KH02", Day(2025, 1, 3), 60),
	}
	return positions, accruals
}
