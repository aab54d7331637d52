package model

import "time"

// TotalLabel is the reserved customer label of synthetic total rows.
const TotalLabel = "Tổng"

// DateLabelLayout is the layout used for date column labels (dd/mm/YYYY).
const DateLabelLayout = "02/01/2006"

// CustomerSummary is the per-customer NAV view.
// NetAssetValue sums every row of the customer; PortfolioValue, CurrentDebt and
// ProfitLoss only sum rows flagged ON. Ratio is nil when PortfolioValue is zero.
type CustomerSummary struct {
	Customer       string   `json:"customer"`
	NetAssetValue  float64  `json:"nav"`
	PortfolioValue float64  `json:"portfolioValue"`
	CurrentDebt    float64  `json:"currentDebt"`
	ProfitLoss     float64  `json:"profitLoss"`
	Ratio          *float64 `json:"ratio"`
}

// ColumnMax holds the maximum of a column. OK is false when the column had no values.
type ColumnMax struct {
	Value float64 `json:"value"`
	OK    bool    `json:"ok"`
}

// SummaryMaxima holds the per-column maxima of a summary view.
type SummaryMaxima struct {
	NetAssetValue  ColumnMax `json:"nav"`
	PortfolioValue ColumnMax `json:"portfolioValue"`
	CurrentDebt    ColumnMax `json:"currentDebt"`
	ProfitLoss     ColumnMax `json:"profitLoss"`
	Ratio          ColumnMax `json:"ratio"`
}

// PurchasePolicy selects how the purchase pivot presents its totals.
type PurchasePolicy string

const (
	// PurchaseTotalRow appends a total row of column sums.
	PurchaseTotalRow PurchasePolicy = "total_row"
	// PurchaseSortByTotal orders customers by descending row total and has no total row.
	PurchaseSortByTotal PurchasePolicy = "sort_by_total"
)

// Valid reports whether p is a known policy.
func (p PurchasePolicy) Valid() bool {
	return p == PurchaseTotalRow || p == PurchaseSortByTotal
}

// PurchaseRow is one customer row of the purchase pivot.
// Quantities are aligned with PurchasePivot.Codes.
type PurchaseRow struct {
	Customer   string    `json:"customer"`
	Quantities []float64 `json:"quantities"`
	Total      float64   `json:"total"`
}

// PurchasePivot is the customer × instrument code matrix of purchased quantities.
type PurchasePivot struct {
	Policy PurchasePolicy `json:"policy"`
	Codes  []string       `json:"codes"`
	Rows   []PurchaseRow  `json:"rows"`
	Total  *PurchaseRow   `json:"total,omitempty"`
}

// Quantity returns the quantity for a customer and code.
func (p PurchasePivot) Quantity(customer, code string) (float64, bool) {
	col := -1
	for i, c := range p.Codes {
		if c == code {
			col = i
			break
		}
	}
	if col < 0 {
		return 0, false
	}
	for _, r := range p.Rows {
		if r.Customer == customer {
			return r.Quantities[col], true
		}
	}
	return 0, false
}

// MaxQuantity returns the largest customer cell. The total row is never scanned.
func (p PurchasePivot) MaxQuantity() (float64, bool) {
	var best float64
	found := false
	for _, r := range p.Rows {
		for _, q := range r.Quantities {
			if !found || q > best {
				best = q
				found = true
			}
		}
	}
	return best, found
}

// ColumnKind distinguishes value and delta columns of the interest display.
type ColumnKind string

const (
	ColumnValue ColumnKind = "value"
	ColumnDelta ColumnKind = "delta"
)

// InterestColumn is one display column of the interest pivot.
// DateIndex points into InterestPivot.Dates.
type InterestColumn struct {
	Date      time.Time  `json:"date"`
	Kind      ColumnKind `json:"kind"`
	Label     string     `json:"label"`
	DateIndex int        `json:"dateIndex"`
}

// InterestRow is one row of the interest pivot. Values and Deltas are aligned
// with InterestPivot.Dates in ascending order. Deltas[0] is always nil; the
// total row carries no Deltas at all.
type InterestRow struct {
	Customer string     `json:"customer"`
	Values   []float64  `json:"values"`
	Deltas   []*float64 `json:"deltas,omitempty"`
	Total    float64    `json:"total"`
}

// InterestPivot is the customer × date matrix of summed daily interest.
type InterestPivot struct {
	Dates   []time.Time      `json:"dates"`
	Rows    []InterestRow    `json:"rows"`
	Total   *InterestRow     `json:"total,omitempty"`
	Columns []InterestColumn `json:"columns"`
}

// Cell returns the value of row under a display column, or nil when the cell is absent.
func (p InterestPivot) Cell(row InterestRow, col InterestColumn) *float64 {
	if col.DateIndex < 0 || col.DateIndex >= len(row.Values) {
		return nil
	}
	if col.Kind == ColumnDelta {
		if row.Deltas == nil {
			return nil
		}
		return row.Deltas[col.DateIndex]
	}
	v := row.Values[col.DateIndex]
	return &v
}

// DailyTotal is one point of the daily interest series.
type DailyTotal struct {
	Date  time.Time `json:"date"`
	Total float64   `json:"total"`
}

// Dashboard bundles the four views computed from one load of the source tables.
type Dashboard struct {
	GeneratedAt  time.Time         `json:"generatedAt"`
	PositionRows int               `json:"positionRows"`
	AccrualRows  int               `json:"accrualRows"`
	Summary      []CustomerSummary `json:"summary"`
	Purchases    PurchasePivot     `json:"purchases"`
	Interest     InterestPivot     `json:"interest"`
	DailyTotals  []DailyTotal      `json:"dailyTotals"`
}
