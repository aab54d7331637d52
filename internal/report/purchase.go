package report

import (
	"cmp"
	"fmt"
	"slices"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
)

// tradableCodeLength is the length of instrument codes that enter the purchase pivot.
const tradableCodeLength = 3

// PurchasePivot cross-tabulates purchased quantity by customer and instrument code.
//
// Only rows with a customer, an ON flag, a non-zero quantity and a three
// character code are counted. Every customer/code pair is present; pairs
// without rows hold 0. Customers and codes are ordered ascending.
//
// With model.PurchaseTotalRow a total row of column sums is attached as
// pivot.Total. With model.PurchaseSortByTotal rows are ordered by descending
// row total instead and no total row is built. A customer named like the
// total row is reported as apperrors.ErrReservedCustomerLabel.
func PurchasePivot(rows []model.PositionRow, policy model.PurchasePolicy) (model.PurchasePivot, error) {
	if !policy.Valid() {
		return model.PurchasePivot{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidPolicy, policy)
	}

	cells := make(map[string]map[string]float64)
	codeSet := make(map[string]struct{})
	for _, r := range rows {
		if !purchasable(r) {
			continue
		}
		if r.Customer == model.TotalLabel {
			return model.PurchasePivot{}, fmt.Errorf("%w: %q", apperrors.ErrReservedCustomerLabel, r.Customer)
		}
		byCode, ok := cells[r.Customer]
		if !ok {
			byCode = make(map[string]float64)
			cells[r.Customer] = byCode
		}
		byCode[r.InstrumentCode] += r.QuantityPurchased.Float64
		codeSet[r.InstrumentCode] = struct{}{}
	}

	codes := sortedKeys(codeSet)
	customers := sortedKeys(cells)

	pivot := model.PurchasePivot{
		Policy: policy,
		Codes:  codes,
		Rows:   make([]model.PurchaseRow, 0, len(customers)),
	}
	for _, c := range customers {
		quantities := make([]float64, len(codes))
		for i, code := range codes {
			quantities[i] = cells[c][code]
		}
		pivot.Rows = append(pivot.Rows, model.PurchaseRow{
			Customer:   c,
			Quantities: quantities,
			Total:      floats.Sum(quantities),
		})
	}

	switch policy {
	case model.PurchaseTotalRow:
		columnTotals := make([]float64, len(codes))
		for _, r := range pivot.Rows {
			floats.Add(columnTotals, r.Quantities)
		}
		pivot.Total = &model.PurchaseRow{
			Customer:   model.TotalLabel,
			Quantities: columnTotals,
			Total:      floats.Sum(columnTotals),
		}
	case model.PurchaseSortByTotal:
		slices.SortStableFunc(pivot.Rows, func(a, b model.PurchaseRow) int {
			return cmp.Compare(b.Total, a.Total)
		})
	}

	return pivot, nil
}

func purchasable(r model.PositionRow) bool {
	return r.HasCustomer() &&
		r.IsActive() &&
		r.QuantityPurchased.Valid &&
		r.QuantityPurchased.Float64 != 0 &&
		utf8.RuneCountInString(r.InstrumentCode) == tradableCodeLength
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
