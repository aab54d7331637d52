package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/report"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/testutil"
)

// TestDashboardService_Refresh tests loading, computing and storing a dashboard.
//
// WHY: Refresh is the only writer. It must load both sheets, persist exactly
// what the pipeline computed, and keep source failures recognisable so the
// API can tell an unreachable sheet from an internal error.
func TestDashboardService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("stores computed dashboard", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		source := testutil.NewMockSource()
		svc := testutil.NewTestDashboardService(t, db, source)

		// Execute
		snapshot, err := svc.Refresh(ctx)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 2, source.Calls())
		assert.Equal(t, 3, snapshot.CustomerCount)
		assert.Equal(t, 4, snapshot.PositionRows)
		assert.Equal(t, 5, snapshot.AccrualRows)

		latest, err := svc.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, snapshot.ID, latest.ID)
		require.NotNil(t, latest.Dashboard)
		assert.Equal(t, []string{"HPG", "VNM"}, latest.Dashboard.Purchases.Codes)
	})

	t.Run("source failure keeps cause", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		source := testutil.NewMockSource().WithAccrualsError(apperrors.ErrSourceUnavailable)
		svc := testutil.NewTestDashboardService(t, db, source)

		// Execute
		_, err := svc.Refresh(ctx)

		// Assert
		require.ErrorIs(t, err, apperrors.ErrFailedToRefreshDashboard)
		assert.ErrorIs(t, err, apperrors.ErrSourceUnavailable)

		_, err = svc.Latest(ctx)
		assert.ErrorIs(t, err, apperrors.ErrSnapshotNotFound)
	})

	t.Run("header error is reported", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		source := testutil.NewMockSource().WithPositionsError(apperrors.ErrInvalidCSVHeaders)
		svc := testutil.NewTestDashboardService(t, db, source)

		_, err := svc.Refresh(ctx)

		assert.ErrorIs(t, err, apperrors.ErrInvalidCSVHeaders)
	})

	t.Run("reserved customer label fails the refresh", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		positions, accruals := testutil.SampleDashboardRows()
		positions = append(positions, testutil.NewPosition(model.TotalLabel).WithCode("HPG").WithQuantity(1).Build())
		svc := testutil.NewTestDashboardService(t, db, testutil.NewMockSource().WithRows(positions, accruals))

		_, err := svc.Refresh(ctx)

		assert.ErrorIs(t, err, apperrors.ErrReservedCustomerLabel)
	})

	t.Run("cancelled context", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDashboardService(t, db, testutil.NewMockSource())
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := svc.Refresh(cctx)

		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("prunes beyond retention", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestDashboardServiceWithOptions(t, db, testutil.NewMockSource(), report.DefaultOptions(), 2)

		// Execute
		first := testutil.MustRefresh(t, svc)
		testutil.MustRefresh(t, svc)
		testutil.MustRefresh(t, svc)

		// Assert
		list, err := svc.Snapshots(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		_, err = svc.Snapshot(ctx, first)
		assert.ErrorIs(t, err, apperrors.ErrSnapshotNotFound)
	})

	t.Run("policy from options", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		opts := report.DefaultOptions()
		opts.PurchasePolicy = model.PurchaseSortByTotal
		svc := testutil.NewTestDashboardServiceWithOptions(t, db, testutil.NewMockSource(), opts, 0)

		snapshot, err := svc.Refresh(ctx)

		require.NoError(t, err)
		assert.Nil(t, snapshot.Dashboard.Purchases.Total)
		assert.Equal(t, model.PurchaseSortByTotal, snapshot.Dashboard.Purchases.Policy)
	})
}

// TestDashboardService_Views tests the threshold applied when serving.
//
// WHY: The threshold is a view setting. Changing it must never require a new
// refresh, and a customer hidden by it must keep counting in the other views.
func TestDashboardService_Views(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestDashboardService(t, db, testutil.NewMockSource())

	t.Run("no snapshot yet", func(t *testing.T) {
		_, err := svc.Summary(ctx, 0)
		assert.ErrorIs(t, err, apperrors.ErrSnapshotNotFound)

		_, err = svc.View(ctx, 0)
		assert.ErrorIs(t, err, apperrors.ErrSnapshotNotFound)
	})

	id := testutil.MustRefresh(t, svc)

	t.Run("summary threshold", func(t *testing.T) {
		view, err := svc.Summary(ctx, 10_000_000)

		require.NoError(t, err)
		assert.Equal(t, id, view.SnapshotID)
		require.Len(t, view.Rows, 1)
		assert.Equal(t, "KH01", view.Rows[0].Customer)
		assert.Equal(t, model.ColumnMax{Value: 45_000_000, OK: true}, view.Maxima.NetAssetValue)
	})

	t.Run("zero threshold keeps all customers", func(t *testing.T) {
		view, err := svc.Summary(ctx, 0)

		require.NoError(t, err)
		assert.Len(t, view.Rows, 3)
	})

	t.Run("threshold does not touch other views", func(t *testing.T) {
		view, err := svc.View(ctx, 10_000_000)

		require.NoError(t, err)
		assert.Len(t, view.Summary.Rows, 1)
		assert.Len(t, view.Purchases.Rows, 2)
		assert.Len(t, view.Interest.Rows, 2)
		assert.Len(t, view.DailyTotals, 3)
	})

	t.Run("negative threshold", func(t *testing.T) {
		_, err := svc.Summary(ctx, -5)

		assert.ErrorIs(t, err, apperrors.ErrInvalidThreshold)
	})

	t.Run("invalid list limit", func(t *testing.T) {
		_, err := svc.Snapshots(ctx, 0)

		assert.ErrorIs(t, err, apperrors.ErrInvalidLimit)
	})

	t.Run("default threshold", func(t *testing.T) {
		assert.Zero(t, svc.DefaultMinNAV())
	})
}
