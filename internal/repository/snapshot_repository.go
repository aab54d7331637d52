package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
)

// noExpiry disables the fernet token age check; snapshots are pruned by count.
const noExpiry = -1

// SnapshotRepository provides data access methods for the dashboard_snapshot table.
// Payloads are the JSON encoded dashboard, sealed with fernet when keys are configured.
type SnapshotRepository struct {
	db   *sql.DB
	keys []*fernet.Key
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
//
// Parameters:
//   - db: Database connection with the dashboard_snapshot table migrated
//   - keys: Fernet keys; the first seals new payloads, all are tried when opening.
//     Nil stores plain JSON.
func NewSnapshotRepository(db *sql.DB, keys []*fernet.Key) *SnapshotRepository {
	return &SnapshotRepository{db: db, keys: keys}
}

// Save inserts a snapshot. The snapshot must carry its dashboard.
func (r *SnapshotRepository) Save(ctx context.Context, s model.Snapshot) (model.Snapshot, error) {
	if s.Dashboard == nil {
		return model.Snapshot{}, fmt.Errorf("snapshot %s has no dashboard", s.ID)
	}

	payload, err := json.Marshal(s.Dashboard)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to encode dashboard: %w", err)
	}

	s.Encrypted = len(r.keys) > 0
	if s.Encrypted {
		payload, err = fernet.EncryptAndSign(payload, r.keys[0])
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("failed to seal dashboard: %w", err)
		}
	}

	query := `
          INSERT INTO dashboard_snapshot (id, generated_at, customer_count, position_rows, accrual_rows, payload, encrypted)
          VALUES (?, ?, ?, ?, ?, ?, ?)
      `
	_, err = r.db.ExecContext(ctx, query,
		s.ID,
		FormatTime(s.GeneratedAt),
		s.CustomerCount,
		s.PositionRows,
		s.AccrualRows,
		payload,
		s.Encrypted,
	)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return s, nil
}

// Latest retrieves the most recently generated snapshot with its dashboard.
func (r *SnapshotRepository) Latest(ctx context.Context) (model.Snapshot, error) {
	query := `
          SELECT id, generated_at, customer_count, position_rows, accrual_rows, encrypted, payload
          FROM dashboard_snapshot
          ORDER BY generated_at DESC, id DESC
          LIMIT 1
      `
	return r.scanOne(r.db.QueryRowContext(ctx, query))
}

// Get retrieves one snapshot with its dashboard.
func (r *SnapshotRepository) Get(ctx context.Context, id string) (model.Snapshot, error) {
	query := `
          SELECT id, generated_at, customer_count, position_rows, accrual_rows, encrypted, payload
          FROM dashboard_snapshot
          WHERE id = ?
      `
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// List retrieves snapshot metadata, newest first. Dashboards are not loaded.
// Returns an empty slice if no snapshots exist.
func (r *SnapshotRepository) List(ctx context.Context, limit int) ([]model.Snapshot, error) {
	query := `
          SELECT id, generated_at, customer_count, position_rows, accrual_rows, encrypted
          FROM dashboard_snapshot
          ORDER BY generated_at DESC, id DESC
          LIMIT ?
      `
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard_snapshot table: %w", err)
	}
	defer rows.Close()

	snapshots := []model.Snapshot{}

	for rows.Next() {
		var s model.Snapshot
		var generatedAt string

		if err := rows.Scan(&s.ID, &generatedAt, &s.CustomerCount, &s.PositionRows, &s.AccrualRows, &s.Encrypted); err != nil {
			return nil, fmt.Errorf("failed to scan dashboard_snapshot table results: %w", err)
		}
		if s.GeneratedAt, err = ParseTime(generatedAt); err != nil {
			return nil, err
		}

		snapshots = append(snapshots, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dashboard_snapshot table: %w", err)
	}

	return snapshots, nil
}

// Prune deletes all but the newest keep snapshots and returns how many were removed.
// A keep of zero or less keeps everything.
func (r *SnapshotRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	query := `
          DELETE FROM dashboard_snapshot
          WHERE id NOT IN (
              SELECT id FROM dashboard_snapshot
              ORDER BY generated_at DESC, id DESC
              LIMIT ?
          )
      `
	res, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned snapshots: %w", err)
	}
	return removed, nil
}

func (r *SnapshotRepository) scanOne(row *sql.Row) (model.Snapshot, error) {
	var s model.Snapshot
	var generatedAt string
	var payload []byte

	err := row.Scan(&s.ID, &generatedAt, &s.CustomerCount, &s.PositionRows, &s.AccrualRows, &s.Encrypted, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Snapshot{}, apperrors.ErrSnapshotNotFound
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to query snapshot: %w", err)
	}

	if s.GeneratedAt, err = ParseTime(generatedAt); err != nil {
		return model.Snapshot{}, err
	}

	if s.Encrypted {
		payload = fernet.VerifyAndDecrypt(payload, noExpiry, r.keys)
		if payload == nil {
			return model.Snapshot{}, fmt.Errorf("%w: %s", apperrors.ErrSnapshotDecrypt, s.ID)
		}
	}

	var d model.Dashboard
	if err := json.Unmarshal(payload, &d); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to decode snapshot %s: %w", s.ID, err)
	}
	s.Dashboard = &d

	return s, nil
}
