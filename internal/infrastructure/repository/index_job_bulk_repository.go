package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	domain "github.com/mohammadpnp/content-inventory/internal/domain/content"
)

// IndexJobBulkRepository hands successfully-imported items to the indexing
// queue. The batched COPY path is the throughput-critical one when
// reprocessing large backlogs; per-job inserts are the fallback when the
// batch as a whole is rejected, so one bad job cannot sink the rest.
type IndexJobBulkRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewIndexJobBulkRepository(pool *pgxpool.Pool, logger *zap.Logger) *IndexJobBulkRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IndexJobBulkRepository{pool: pool, logger: logger.With(zap.String("component", "index_queue"))}
}

func (r *IndexJobBulkRepository) EnqueueBatch(ctx context.Context, jobs []domain.IndexJob) (domain.EnqueueResult, error) {
	if len(jobs) == 0 {
		return domain.EnqueueResult{}, nil
	}

	valid := make([]domain.IndexJob, 0, len(jobs))
	result := domain.EnqueueResult{}
	for _, job := range jobs {
		if strings.TrimSpace(job.ContentItemID) == "" || strings.TrimSpace(job.URL) == "" {
			result.Failed++
			continue
		}
		valid = append(valid, job)
	}
	if len(valid) == 0 {
		return result, nil
	}

	rows := make([][]any, 0, len(valid))
	for _, job := range valid {
		rows = append(rows, []any{job.ContentItemID, job.URL, "queued"})
	}

	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"index_jobs"},
		[]string{"content_item_id", "url", "status"},
		pgx.CopyFromRows(rows),
	)
	if err == nil {
		result.Enqueued = len(valid)
		return result, nil
	}

	r.logger.Warn("batched index-job enqueue failed, retrying per job", zap.Error(err))
	for _, job := range valid {
		if insertErr := r.insertOne(ctx, job); insertErr != nil {
			r.logger.Warn("enqueue index job failed",
				zap.String("content_item_id", job.ContentItemID),
				zap.Error(insertErr))
			result.Failed++
			continue
		}
		result.Enqueued++
	}

	if result.Enqueued == 0 {
		return result, fmt.Errorf("enqueue index jobs: %w", err)
	}
	return result, nil
}

func (r *IndexJobBulkRepository) insertOne(ctx context.Context, job domain.IndexJob) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO index_jobs (content_item_id, url, status) VALUES ($1, $2, 'queued')`,
		job.ContentItemID, job.URL,
	)
	return err
}
