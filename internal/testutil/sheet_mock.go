package testutil

import (
	"context"
	"sync"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
)

// MockSource is a mock implementation of sheets.Source for testing.
// It returns predefined rows instead of downloading exports.
// It is safe for the concurrent Positions/Accruals calls made during a refresh.
type MockSource struct {
	mu sync.Mutex
	// PositionRows is returned from Positions
	PositionRows []model.PositionRow
	// AccrualRows is returned from Accruals
	AccrualRows []model.AccrualRow
	// PositionsError is the error to return from Positions
	PositionsError error
	// AccrualsError is the error to return from Accruals
	AccrualsError error
	// QueryCount tracks how many times a load method was called
	QueryCount int
}

// NewMockSource creates a new mock source with SampleDashboardRows.
func NewMockSource() *MockSource {
	positions, accruals := SampleDashboardRows()
	return &MockSource{
		PositionRows: positions,
		AccrualRows:  accruals,
	}
}

// Positions returns the configured PositionRows and PositionsError.
func (m *MockSource) Positions(ctx context.Context) ([]model.PositionRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCount++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.PositionsError != nil {
		return nil, m.PositionsError
	}
	return m.PositionRows, nil
}

// Accruals returns the configured AccrualRows and AccrualsError.
func (m *MockSource) Accruals(ctx context.Context) ([]model.AccrualRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCount++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.AccrualsError != nil {
		return nil, m.AccrualsError
	}
	return m.AccrualRows, nil
}

// WithPositionsError configures the mock to fail loading positions.
func (m *MockSource) WithPositionsError(err error) *MockSource {
	m.PositionsError = err
	return m
}

// WithAccrualsError configures the mock to fail loading accruals.
func (m *MockSource) WithAccrualsError(err error) *MockSource {
	m.AccrualsError = err
	return m
}

// WithRows configures the rows returned by the mock.
func (m *MockSource) WithRows(positions []model.PositionRow, accruals []model.AccrualRow) *MockSource {
	m.PositionRows = positions
	m.AccrualRows = accruals
	return m
}

// Calls returns how many load calls were made.
func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.QueryCount
}
