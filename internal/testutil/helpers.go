package testutil

import (
	"database/sql"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/report"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/service"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/sheets"
)

// NewTestDashboardService creates a DashboardService over db with default
// options, unlimited retention and a silent logger.
func NewTestDashboardService(t *testing.T, db *sql.DB, source sheets.Source) *service.DashboardService {
	t.Helper()

	return NewTestDashboardServiceWithOptions(t, db, source, report.DefaultOptions(), 0)
}

// NewTestDashboardServiceWithOptions creates a DashboardService with explicit
// aggregation options and snapshot retention.
func NewTestDashboardServiceWithOptions(t *testing.T, db *sql.DB, source sheets.Source, opts report.Options, retention int) *service.DashboardService {
	t.Helper()

	return service.NewDashboardService(
		source,
		repository.NewSnapshotRepository(db, nil),
		opts,
		retention,
		zerolog.Nop(),
	)
}

// NewTestSnapshotRepository creates a SnapshotRepository sealing payloads with keys.
func NewTestSnapshotRepository(t *testing.T, db *sql.DB, keys ...*fernet.Key) *repository.SnapshotRepository {
	t.Helper()

	return repository.NewSnapshotRepository(db, keys)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MustRefresh stores one snapshot through svc and returns its ID.
// The test fails if the refresh fails.
func MustRefresh(t *testing.T, svc *service.DashboardService) string {
	t.Helper()

	snapshot, err := svc.Refresh(t.Context())
	if err != nil {
		t.Fatalf("Failed to refresh dashboard: %v", err)
	}
	return snapshot.ID
}
