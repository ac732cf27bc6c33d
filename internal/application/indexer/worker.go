package indexer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	domain "github.com/mohammadpnp/content-inventory/internal/domain/content"
)

// Job is one claimed unit of indexing work.
type Job = domain.QueuedIndexJob

// ContentIndexer makes one persisted content item searchable. The actual
// embedding/full-text engine lives behind this port.
type ContentIndexer interface {
	Index(ctx context.Context, contentItemID, url string) error
}

type jobRepo interface {
	ClaimNext(ctx context.Context, leaseDuration time.Duration) (*Job, error)
	Heartbeat(ctx context.Context, jobID string, leaseDuration time.Duration) error
	Complete(ctx context.Context, jobID string) error
	Requeue(ctx context.Context, jobID string, reason string) error
	Fail(ctx context.Context, jobID string, reason string) error
}

type WorkerConfig struct {
	Workers       int
	PollInterval  time.Duration
	LeaseDuration time.Duration
}

// Worker drains the index-job queue: claims jobs under a lease, runs the
// indexer, and completes or requeues. Delivery is at-least-once; a crashed
// worker's lease expires and another claim picks the job up.
type Worker struct {
	repo    jobRepo
	indexer ContentIndexer
	logger  *zap.Logger
	cfg     WorkerConfig

	once sync.Once
}

func NewWorker(repo jobRepo, indexer ContentIndexer, logger *zap.Logger, cfg WorkerConfig) *Worker {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.LeaseDuration <= 0 {
		cfg.LeaseDuration = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Worker{
		repo:    repo,
		indexer: indexer,
		logger:  logger.With(zap.String("component", "index_worker")),
		cfg:     cfg,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.once.Do(func() {
		for i := 0; i < w.cfg.Workers; i++ {
			go w.workerLoop(ctx)
		}
	})
}

func (w *Worker) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.repo.ClaimNext(ctx, w.cfg.LeaseDuration)
		if err != nil {
			w.logger.Warn("claim next index job failed", zap.Error(err))
			if !sleepWithContext(ctx, w.cfg.PollInterval) {
				return
			}
			continue
		}

		if job == nil {
			if !sleepWithContext(ctx, w.cfg.PollInterval) {
				return
			}
			continue
		}

		if err := w.ProcessJob(ctx, *job); err != nil {
			w.logger.Warn("process index job failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}

func (w *Worker) ProcessJob(ctx context.Context, job Job) error {
	if err := w.indexer.Index(ctx, job.ContentItemID, job.URL); err != nil {
		return w.onProcessingError(ctx, job, fmt.Errorf("index content item %s: %w", job.ContentItemID, err))
	}

	if err := w.repo.Complete(ctx, job.ID); err != nil {
		return fmt.Errorf("complete index job: %w", err)
	}

	w.logger.Debug("content item indexed",
		zap.String("job_id", job.ID),
		zap.String("content_item_id", job.ContentItemID))
	return nil
}

func (w *Worker) onProcessingError(ctx context.Context, job Job, err error) error {
	reason := truncateReason(err.Error())
	if job.Attempts < job.MaxAttempts {
		if requeueErr := w.repo.Requeue(ctx, job.ID, reason); requeueErr != nil {
			return fmt.Errorf("%v; requeue failed: %w", err, requeueErr)
		}
		return err
	}

	if failErr := w.repo.Fail(ctx, job.ID, reason); failErr != nil {
		return fmt.Errorf("%v; fail update failed: %w", err, failErr)
	}
	return err
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func truncateReason(reason string) string {
	const maxLen = 1000
	reason = strings.TrimSpace(reason)
	if len(reason) <= maxLen {
		return reason
	}
	return reason[:maxLen]
}
