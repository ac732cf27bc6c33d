package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "github.com/mohammadpnp/content-inventory/internal/domain/content"
	"github.com/mohammadpnp/content-inventory/internal/infrastructure/db/models"
)

// IndexJobRepository drives the lifecycle of queued index jobs: lease-based
// claiming for the worker pool plus the best-effort administrative actions
// (retry failed, resume stuck leases).
type IndexJobRepository struct {
	db *gorm.DB
}

func NewIndexJobRepository(db *gorm.DB) *IndexJobRepository {
	return &IndexJobRepository{db: db}
}

// ClaimNext atomically claims the oldest runnable job (queued, or running
// with an expired lease) and returns nil when the queue is drained.
func (r *IndexJobRepository) ClaimNext(ctx context.Context, leaseDuration time.Duration) (*domain.QueuedIndexJob, error) {
	var row models.IndexJob
	err := r.db.WithContext(ctx).Raw(`
UPDATE index_jobs SET
  status = 'running',
  attempts = attempts + 1,
  started_at = COALESCE(started_at, NOW()),
  heartbeat_at = NOW(),
  lease_expires_at = NOW() + make_interval(secs => ?),
  updated_at = NOW()
WHERE id = (
  SELECT id FROM index_jobs
  WHERE status = 'queued'
     OR (status = 'running' AND lease_expires_at < NOW())
  ORDER BY created_at
  FOR UPDATE SKIP LOCKED
  LIMIT 1
)
RETURNING *`, leaseDuration.Seconds()).Scan(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim next index job: %w", err)
	}
	if row.ID == "" {
		return nil, nil
	}

	return &domain.QueuedIndexJob{
		ID:            row.ID,
		ContentItemID: row.ContentItemID,
		URL:           row.URL,
		Attempts:      row.Attempts,
		MaxAttempts:   row.MaxAttempts,
	}, nil
}

func (r *IndexJobRepository) Heartbeat(ctx context.Context, jobID string, leaseDuration time.Duration) error {
	err := r.db.WithContext(ctx).Exec(`
UPDATE index_jobs SET
  heartbeat_at = NOW(),
  lease_expires_at = NOW() + make_interval(secs => ?),
  updated_at = NOW()
WHERE id = ? AND status = 'running'`, leaseDuration.Seconds(), jobID).Error
	if err != nil {
		return fmt.Errorf("heartbeat index job: %w", err)
	}
	return nil
}

func (r *IndexJobRepository) Complete(ctx context.Context, jobID string) error {
	err := r.db.WithContext(ctx).Model(&models.IndexJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"status":           "succeeded",
			"error_message":    nil,
			"finished_at":      gorm.Expr("NOW()"),
			"lease_expires_at": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("complete index job: %w", err)
	}
	return nil
}

func (r *IndexJobRepository) Requeue(ctx context.Context, jobID string, reason string) error {
	err := r.db.WithContext(ctx).Model(&models.IndexJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"status":           "queued",
			"error_message":    reason,
			"lease_expires_at": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("requeue index job: %w", err)
	}
	return nil
}

func (r *IndexJobRepository) Fail(ctx context.Context, jobID string, reason string) error {
	err := r.db.WithContext(ctx).Model(&models.IndexJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"status":           "failed",
			"error_message":    reason,
			"finished_at":      gorm.Expr("NOW()"),
			"lease_expires_at": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("fail index job: %w", err)
	}
	return nil
}

// RetryFailed requeues every failed job, resetting its attempt budget.
// Fire-and-report: returns how many rows changed, no stronger guarantee.
func (r *IndexJobRepository) RetryFailed(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.IndexJob{}).
		Where("status = 'failed'").
		Updates(map[string]any{
			"status":        "queued",
			"attempts":      0,
			"error_message": nil,
			"finished_at":   nil,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("retry failed index jobs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ResumeStuck releases running jobs whose lease has expired back to the
// queue so workers pick them up again.
func (r *IndexJobRepository) ResumeStuck(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.IndexJob{}).
		Where("status = 'running' AND lease_expires_at < NOW()").
		Updates(map[string]any{
			"status":           "queued",
			"lease_expires_at": nil,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("resume stuck index jobs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
