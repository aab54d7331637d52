package scheduler

import (
	"context"
	"time"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
)

// Refresher recomputes and stores the dashboard.
type Refresher interface {
	Refresh(ctx context.Context) (model.Snapshot, error)
}

// RefreshJob runs a dashboard refresh bounded by a timeout.
type RefreshJob struct {
	ctx       context.Context
	refresher Refresher
	timeout   time.Duration
}

// NewRefreshJob creates a RefreshJob. Runs are cancelled when ctx is done.
func NewRefreshJob(ctx context.Context, refresher Refresher, timeout time.Duration) *RefreshJob {
	return &RefreshJob{ctx: ctx, refresher: refresher, timeout: timeout}
}

// Name returns the job name used in logs.
func (j *RefreshJob) Name() string {
	return "dashboard_refresh"
}

// Run refreshes the dashboard once.
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(j.ctx, j.timeout)
	defer cancel()

	_, err := j.refresher.Refresh(ctx)
	return err
}
