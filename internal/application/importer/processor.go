package importer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	domain "github.com/mohammadpnp/content-inventory/internal/domain/content"
)

// maxStoredErrors caps the per-row error list in the result; failure counts
// stay exact past the cap.
const maxStoredErrors = 1000

type TitleFetcher interface {
	FetchTitle(ctx context.Context, url string) (string, bool)
}

type contentInserter interface {
	urlChecker
	Insert(ctx context.Context, item *domain.ContentItem) (string, error)
}

type indexEnqueuer interface {
	EnqueueBatch(ctx context.Context, jobs []domain.IndexJob) (domain.EnqueueResult, error)
}

type Config struct {
	// FetchConcurrency bounds concurrent title fetches. The default of 1
	// keeps enrichment strictly sequential out of politeness toward the
	// fetched hosts, not because the fetcher requires it.
	FetchConcurrency int
}

// Processor drives one import batch through its phases:
// enriching -> validating -> inserting -> indexing -> complete.
// Per-row failures never abort the batch; only infrastructure failures do.
type Processor struct {
	fetcher          TitleFetcher
	content          contentInserter
	campaigns        campaignEnsurer
	queue            indexEnqueuer
	logger           *zap.Logger
	fetchConcurrency int
}

func NewProcessor(fetcher TitleFetcher, content contentInserter, campaigns campaignEnsurer, queue indexEnqueuer, logger *zap.Logger, cfg Config) *Processor {
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		fetcher:          fetcher,
		content:          content,
		campaigns:        campaigns,
		queue:            queue,
		logger:           logger.With(zap.String("component", "import_processor")),
		fetchConcurrency: cfg.FetchConcurrency,
	}
}

type validatedRow struct {
	index int
	item  *domain.ContentItem
}

// Process runs the whole pipeline over rows and returns the terminal
// summary. sink may be nil. A cancelled ctx lets the running phase finish
// but stops the run at the next phase boundary.
func (p *Processor) Process(ctx context.Context, rows []domain.ImportRow, sink domain.ProgressSink) (*domain.ImportResult, error) {
	if sink == nil {
		sink = func(domain.Progress) {}
	}

	result := &domain.ImportResult{Errors: []domain.RowError{}}

	result.Enrichment = p.enrich(ctx, rows, sink)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	valid, err := p.validate(ctx, rows, result, sink)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jobs := p.insert(ctx, valid, result, sink)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.index(ctx, jobs, result, sink)

	sink(domain.Progress{
		Phase:      domain.PhaseComplete,
		Current:    len(rows),
		Total:      len(rows),
		Message:    "import complete",
		ErrorCount: len(result.Errors),
	})

	p.logger.Info("import finished",
		zap.Int("rows", len(rows)),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
		zap.Int("indexed", result.Indexed))

	return result, nil
}

// enrich fills blank titles from the linked pages. Rows with a pre-filled
// title are never touched; fetch failures leave the title blank for the
// validator's URL fallback.
func (p *Processor) enrich(ctx context.Context, rows []domain.ImportRow, sink domain.ProgressSink) domain.EnrichmentStats {
	total := len(rows)
	sink(domain.Progress{Phase: domain.PhaseEnriching, Current: 0, Total: total, Message: "enriching titles"})

	stats := domain.EnrichmentStats{}
	var mu sync.Mutex
	processed := 0
	report := func() {
		processed++
		sink(domain.Progress{Phase: domain.PhaseEnriching, Current: processed, Total: total, Message: "enriching titles"})
	}

	sem := make(chan struct{}, p.fetchConcurrency)
	var wg sync.WaitGroup

	for i := range rows {
		if rows[i].Title() != "" || !domain.ValidURL(rows[i].URL()) {
			mu.Lock()
			report()
			mu.Unlock()
			continue
		}

		stats.Attempted++
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			title, ok := p.fetcher.FetchTitle(ctx, rows[idx].URL())

			mu.Lock()
			defer mu.Unlock()
			if ok {
				rows[idx].SetField("title", title)
				stats.Successful++
			} else {
				stats.Failed++
			}
			report()
		}(i)
	}
	wg.Wait()

	return stats
}

func (p *Processor) validate(ctx context.Context, rows []domain.ImportRow, result *domain.ImportResult, sink domain.ProgressSink) ([]validatedRow, error) {
	total := len(rows)
	sink(domain.Progress{Phase: domain.PhaseValidating, Current: 0, Total: total, Message: "validating rows", ErrorCount: len(result.Errors)})

	campaignIDs, err := p.ensureCampaigns(ctx, rows)
	if err != nil {
		return nil, err
	}

	validator := NewValidator(p.content, campaignIDs)
	valid := make([]validatedRow, 0, total)

	for i := range rows {
		item, rowErrors, err := validator.ValidateRow(ctx, rows[i], i)
		if err != nil {
			return nil, fmt.Errorf("validate row %d: %w", i, err)
		}
		if len(rowErrors) > 0 {
			result.Failed++
			p.storeErrors(result, rowErrors)
		} else {
			valid = append(valid, validatedRow{index: i, item: item})
		}
		sink(domain.Progress{Phase: domain.PhaseValidating, Current: i + 1, Total: total, Message: "validating rows", ErrorCount: len(result.Errors)})
	}

	return valid, nil
}

// ensureCampaigns upserts every distinct campaign name in the batch once,
// ahead of per-row validation, and returns the name -> id mapping.
func (p *Processor) ensureCampaigns(ctx context.Context, rows []domain.ImportRow) (map[string]string, error) {
	ids := make(map[string]string)
	for i := range rows {
		name := campaignName(rows[i])
		if name == "" {
			continue
		}
		if _, ok := ids[name]; ok {
			continue
		}
		id, err := p.campaigns.EnsureByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("ensure campaign %q: %w", name, err)
		}
		ids[name] = id
	}
	return ids, nil
}

// insert persists each validated row. Insert failures, including a unique
// URL race against a concurrent import, degrade the row instead of aborting
// the batch.
func (p *Processor) insert(ctx context.Context, valid []validatedRow, result *domain.ImportResult, sink domain.ProgressSink) []domain.IndexJob {
	total := len(valid)
	sink(domain.Progress{Phase: domain.PhaseInserting, Current: 0, Total: total, Message: "inserting items", ErrorCount: len(result.Errors)})

	jobs := make([]domain.IndexJob, 0, total)
	for i, entry := range valid {
		id, err := p.content.Insert(ctx, entry.item)
		if err != nil {
			result.Failed++
			p.storeErrors(result, []domain.RowError{{
				Row:     entry.index,
				Field:   "url",
				Message: fmt.Sprintf("insert failed: %v", err),
			}})
			p.logger.Warn("content item insert failed",
				zap.Int("row", entry.index),
				zap.String("url", entry.item.CurrentURL),
				zap.Error(err))
		} else {
			result.Successful++
			jobs = append(jobs, domain.IndexJob{ContentItemID: id, URL: entry.item.CurrentURL})
		}
		sink(domain.Progress{Phase: domain.PhaseInserting, Current: i + 1, Total: total, Message: "inserting items", ErrorCount: len(result.Errors)})
	}

	return jobs
}

// index hands persisted items to the indexing queue. Enqueue failures are
// counted but never unwind the already-committed inserts.
func (p *Processor) index(ctx context.Context, jobs []domain.IndexJob, result *domain.ImportResult, sink domain.ProgressSink) {
	total := len(jobs)
	sink(domain.Progress{Phase: domain.PhaseIndexing, Current: 0, Total: total, Message: "queueing for indexing", ErrorCount: len(result.Errors)})

	if total > 0 {
		res, err := p.queue.EnqueueBatch(ctx, jobs)
		if err != nil {
			p.logger.Warn("index enqueue failed", zap.Error(err))
		}
		result.Indexed = res.Enqueued
		result.IndexingFailed = total - res.Enqueued
	}

	sink(domain.Progress{Phase: domain.PhaseIndexing, Current: total, Total: total, Message: "queueing for indexing", ErrorCount: len(result.Errors)})
}

func (p *Processor) storeErrors(result *domain.ImportResult, rowErrors []domain.RowError) {
	for _, rowError := range rowErrors {
		if len(result.Errors) >= maxStoredErrors {
			return
		}
		result.Errors = append(result.Errors, rowError)
	}
}
