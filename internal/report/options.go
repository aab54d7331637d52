// Package report reshapes position and accrual tables into the dashboard views.
//
// Every function in this package is pure: it reads its input slices, never
// mutates them, and returns freshly allocated results. Running an aggregator
// twice on the same input yields identical output.
package report

import (
	"fmt"
	"math"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
)

// Options parameterizes the pipeline. The zero value is not valid; start from DefaultOptions.
type Options struct {
	// MinNAV suppresses summary rows whose absolute NAV is below it. Zero disables the filter.
	MinNAV float64
	// PurchasePolicy selects total row or sort-by-total presentation of the purchase pivot.
	PurchasePolicy model.PurchasePolicy
	// InterestTotalRow appends a total row to the interest pivot.
	InterestTotalRow bool
	// InterestSortByTotal orders interest rows by descending total across all dates.
	InterestSortByTotal bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MinNAV:           0,
		PurchasePolicy:   model.PurchaseTotalRow,
		InterestTotalRow: true,
	}
}

// Validate checks that the options describe a supported pipeline.
func (o Options) Validate() error {
	if err := ValidateThreshold(o.MinNAV); err != nil {
		return err
	}
	if !o.PurchasePolicy.Valid() {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidPolicy, o.PurchasePolicy)
	}
	return nil
}

// ValidateThreshold checks that a NAV threshold is a finite non-negative number.
func ValidateThreshold(threshold float64) error {
	if threshold < 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidThreshold, threshold)
	}
	return nil
}
