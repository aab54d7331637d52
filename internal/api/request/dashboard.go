package request

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/parse"
)

// ParseMinNAV reads the min_nav query parameter.
// An empty value yields def. Thousand separators are accepted ("10,000,000").
//
// Returns ErrInvalidThreshold when the value is not a number. Range checks
// are left to the service.
func ParseMinNAV(raw string, def float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	v := parse.Number(raw)
	if !v.Valid {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidThreshold, raw)
	}
	return v.Float64, nil
}

// ParseLimit reads the limit query parameter.
// An empty value yields def; values above maxLimit are capped.
//
// Returns ErrInvalidLimit when the value is not a positive integer.
func ParseLimit(raw string, def, maxLimit int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidLimit, raw)
	}
	return min(v, maxLimit), nil
}
