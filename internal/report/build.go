package report

import (
	"fmt"
	"time"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
)

// Build runs the four aggregators over one load of the source tables.
//
// The summary is stored unfiltered; opts.MinNAV is applied by views through
// FilterByNAV so that a threshold never changes what is persisted.
func Build(positions []model.PositionRow, accruals []model.AccrualRow, opts Options, generatedAt time.Time) (model.Dashboard, error) {
	if err := opts.Validate(); err != nil {
		return model.Dashboard{}, err
	}

	purchases, err := PurchasePivot(positions, opts.PurchasePolicy)
	if err != nil {
		return model.Dashboard{}, fmt.Errorf("failed to build purchase pivot: %w", err)
	}

	interest, err := InterestPivot(accruals, opts)
	if err != nil {
		return model.Dashboard{}, fmt.Errorf("failed to build interest pivot: %w", err)
	}

	return model.Dashboard{
		GeneratedAt:  generatedAt.UTC(),
		PositionRows: len(positions),
		AccrualRows:  len(accruals),
		Summary:      Summarize(positions),
		Purchases:    purchases,
		Interest:     interest,
		DailyTotals:  DailyTotals(accruals),
	}, nil
}
