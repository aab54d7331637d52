package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/report"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/sheets"
)

// DashboardService handles loading the source sheets, computing the dashboard
// and serving the stored snapshots.
//
// A refresh is the only place the sheets are read. Views are served from the
// latest stored snapshot, so the dashboard stays available when the sheet
// export is temporarily unreachable.
type DashboardService struct {
	source       sheets.Source
	snapshotRepo *repository.SnapshotRepository
	opts         report.Options
	retention    int
	log          zerolog.Logger
	now          func() time.Time

	// refreshMu serializes scheduled and manual refreshes.
	refreshMu sync.Mutex
}

// NewDashboardService creates a new DashboardService.
//
// Parameters:
//   - source: Loader of the position and accrual sheets
//   - snapshotRepo: Snapshot store
//   - opts: Aggregation options; opts.MinNAV is the default display threshold
//   - retention: Snapshots kept after each refresh (0 keeps all)
//   - log: Parent logger
func NewDashboardService(
	source sheets.Source,
	snapshotRepo *repository.SnapshotRepository,
	opts report.Options,
	retention int,
	log zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		source:       source,
		snapshotRepo: snapshotRepo,
		opts:         opts,
		retention:    retention,
		log:          log.With().Str("component", "dashboard").Logger(),
		now:          time.Now,
	}
}

// DefaultMinNAV returns the configured display threshold.
func (s *DashboardService) DefaultMinNAV() float64 {
	return s.opts.MinNAV
}

// Refresh loads both sheets concurrently, computes the dashboard and stores it
// as a new snapshot. Old snapshots beyond the retention are pruned.
//
// Returns:
//   - model.Snapshot: The stored snapshot including its dashboard
//   - error: ErrFailedToRefreshDashboard wrapping the cause. Source errors
//     (ErrSourceUnavailable, ErrInvalidCSVHeaders, ...) stay matchable with errors.Is.
func (s *DashboardService) Refresh(ctx context.Context) (model.Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := s.now()

	var positions []model.PositionRow
	var accruals []model.AccrualRow

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.source.Positions(gctx)
		if err != nil {
			return fmt.Errorf("failed to load positions: %w", err)
		}
		positions = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.source.Accruals(gctx)
		if err != nil {
			return fmt.Errorf("failed to load accruals: %w", err)
		}
		accruals = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Msg("refresh failed while loading sheets")
		return model.Snapshot{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRefreshDashboard, err)
	}

	if n := countUnreadableDates(accruals); n > 0 {
		s.log.Warn().Int("rows", n).Msg("accrual rows with unreadable dates were skipped")
	}

	dashboard, err := report.Build(positions, accruals, s.opts, start)
	if err != nil {
		s.log.Error().Err(err).Msg("refresh failed while building dashboard")
		return model.Snapshot{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRefreshDashboard, err)
	}

	snapshot, err := s.snapshotRepo.Save(ctx, model.Snapshot{
		ID:            uuid.NewString(),
		GeneratedAt:   dashboard.GeneratedAt,
		CustomerCount: len(dashboard.Summary),
		PositionRows:  dashboard.PositionRows,
		AccrualRows:   dashboard.AccrualRows,
		Dashboard:     &dashboard,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("refresh failed while saving snapshot")
		return model.Snapshot{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToSaveSnapshot, err)
	}

	removed, err := s.snapshotRepo.Prune(ctx, s.retention)
	if err != nil {
		// The new snapshot is stored; a failed prune is retried next refresh.
		s.log.Warn().Err(err).Msg("failed to prune snapshots")
	}

	s.log.Info().
		Str("snapshot_id", snapshot.ID).
		Int("position_rows", snapshot.PositionRows).
		Int("accrual_rows", snapshot.AccrualRows).
		Int("customers", snapshot.CustomerCount).
		Int64("pruned", removed).
		Dur("duration", s.now().Sub(start)).
		Msg("dashboard refreshed")

	return snapshot, nil
}

// Latest returns the most recent snapshot with its dashboard.
func (s *DashboardService) Latest(ctx context.Context) (model.Snapshot, error) {
	snapshot, err := s.snapshotRepo.Latest(ctx)
	if err != nil {
		return model.Snapshot{}, wrapRetrieve(err)
	}
	return snapshot, nil
}

// Snapshot returns one stored snapshot with its dashboard.
func (s *DashboardService) Snapshot(ctx context.Context, id string) (model.Snapshot, error) {
	snapshot, err := s.snapshotRepo.Get(ctx, id)
	if err != nil {
		return model.Snapshot{}, wrapRetrieve(err)
	}
	return snapshot, nil
}

// Snapshots lists snapshot metadata, newest first.
func (s *DashboardService) Snapshots(ctx context.Context, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrInvalidLimit, limit)
	}
	snapshots, err := s.snapshotRepo.List(ctx, limit)
	if err != nil {
		return nil, wrapRetrieve(err)
	}
	return snapshots, nil
}

// Summary returns the latest customer summary with rows below minNAV hidden.
func (s *DashboardService) Summary(ctx context.Context, minNAV float64) (model.SummaryView, error) {
	if err := report.ValidateThreshold(minNAV); err != nil {
		return model.SummaryView{}, err
	}
	snapshot, err := s.Latest(ctx)
	if err != nil {
		return model.SummaryView{}, err
	}
	return summaryView(snapshot, minNAV), nil
}

// View returns the latest dashboard with its summary filtered by minNAV.
func (s *DashboardService) View(ctx context.Context, minNAV float64) (model.DashboardView, error) {
	if err := report.ValidateThreshold(minNAV); err != nil {
		return model.DashboardView{}, err
	}
	snapshot, err := s.Latest(ctx)
	if err != nil {
		return model.DashboardView{}, err
	}
	d := snapshot.Dashboard
	return model.DashboardView{
		SnapshotID:  snapshot.ID,
		GeneratedAt: snapshot.GeneratedAt,
		Summary:     summaryView(snapshot, minNAV),
		Purchases:   d.Purchases,
		Interest:    d.Interest,
		DailyTotals: d.DailyTotals,
	}, nil
}

func summaryView(snapshot model.Snapshot, minNAV float64) model.SummaryView {
	rows := report.FilterByNAV(snapshot.Dashboard.Summary, minNAV)
	return model.SummaryView{
		SnapshotID:  snapshot.ID,
		GeneratedAt: snapshot.GeneratedAt,
		MinNAV:      minNAV,
		Rows:        rows,
		Maxima:      report.SummaryMaxima(rows),
	}
}

func wrapRetrieve(err error) error {
	if errors.Is(err, apperrors.ErrSnapshotNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveSnapshot, err)
}

func countUnreadableDates(rows []model.AccrualRow) int {
	n := 0
	for _, r := range rows {
		if r.Date.IsZero() {
			n++
		}
	}
	return n
}
