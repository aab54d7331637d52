package report

import (
	"database/sql"
	"math"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
)

// customerTotals accumulates the sums of one customer.
type customerTotals struct {
	nav       float64
	portfolio float64
	debt      float64
	profit    float64
}

// Summarize groups positions by customer.
//
// NAV sums every row of the customer. Portfolio value (fee amount), current
// debt and final profit/loss only sum rows flagged ON; a customer without ON
// rows still appears with those fields at zero. Absent cells contribute
// nothing, so a sum over absent cells is zero. Rows without a customer are
// dropped. The ratio NAV / portfolio value is nil when the portfolio value is
// zero. Rows are ordered by customer.
func Summarize(rows []model.PositionRow) []model.CustomerSummary {
	totals := make(map[string]*customerTotals)
	for _, r := range rows {
		if !r.HasCustomer() {
			continue
		}
		t, ok := totals[r.Customer]
		if !ok {
			t = &customerTotals{}
			totals[r.Customer] = t
		}
		t.nav += orZero(r.NetAssetValue)
		if r.IsActive() {
			t.portfolio += orZero(r.FeeAmount)
			t.debt += orZero(r.CurrentDebt)
			t.profit += orZero(r.FinalProfitLoss)
		}
	}

	customers := sortedKeys(totals)
	summary := make([]model.CustomerSummary, 0, len(customers))
	for _, c := range customers {
		t := totals[c]
		summary = append(summary, model.CustomerSummary{
			Customer:       c,
			NetAssetValue:  t.nav,
			PortfolioValue: t.portfolio,
			CurrentDebt:    t.debt,
			ProfitLoss:     t.profit,
			Ratio:          ratio(t.nav, t.portfolio),
		})
	}
	return summary
}

// FilterByNAV keeps the rows whose absolute NAV reaches threshold.
// A threshold of zero keeps every row. Sums of kept rows are untouched.
func FilterByNAV(rows []model.CustomerSummary, threshold float64) []model.CustomerSummary {
	kept := make([]model.CustomerSummary, 0, len(rows))
	for _, r := range rows {
		if threshold > 0 && math.Abs(r.NetAssetValue) < threshold {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// SummaryMaxima returns the maximum of each summary column.
// Columns without values (empty input, or no defined ratio) report OK=false.
func SummaryMaxima(rows []model.CustomerSummary) model.SummaryMaxima {
	var m model.SummaryMaxima
	for _, r := range rows {
		observe(&m.NetAssetValue, r.NetAssetValue)
		observe(&m.PortfolioValue, r.PortfolioValue)
		observe(&m.CurrentDebt, r.CurrentDebt)
		observe(&m.ProfitLoss, r.ProfitLoss)
		if r.Ratio != nil {
			observe(&m.Ratio, *r.Ratio)
		}
	}
	return m
}

func observe(c *model.ColumnMax, v float64) {
	if !c.OK || v > c.Value {
		c.Value = v
		c.OK = true
	}
}

func ratio(nav, portfolio float64) *float64 {
	if portfolio == 0 {
		return nil
	}
	r := nav / portfolio
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return nil
	}
	return &r
}

func orZero(v sql.NullFloat64) float64 {
	if !v.Valid {
		return 0
	}
	return v.Float64
}
