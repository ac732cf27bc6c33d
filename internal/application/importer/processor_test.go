package importer_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/mohammadpnp/content-inventory/internal/application/importer"
	domain "github.com/mohammadpnp/content-inventory/internal/domain/content"
)

type fakeFetcher struct {
	mu     sync.Mutex
	titles map[string]string
	calls  []string
}

func (f *fakeFetcher) FetchTitle(ctx context.Context, url string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	title, ok := f.titles[url]
	return title, ok
}

type fakeContentStore struct {
	mu        sync.Mutex
	existing  map[string]bool
	insertErr map[string]error
	inserted  []*domain.ContentItem
	checkErr  error
	nextID    int
}

func newFakeContentStore() *fakeContentStore {
	return &fakeContentStore{
		existing:  make(map[string]bool),
		insertErr: make(map[string]error),
	}
}

func (s *fakeContentStore) URLExists(ctx context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkErr != nil {
		return false, s.checkErr
	}
	return s.existing[url], nil
}

func (s *fakeContentStore) Insert(ctx context.Context, item *domain.ContentItem) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.insertErr[item.CurrentURL]; err != nil {
		return "", err
	}
	if s.existing[item.CurrentURL] {
		return "", domain.ErrDuplicateURL
	}
	s.existing[item.CurrentURL] = true
	s.inserted = append(s.inserted, item)
	s.nextID++
	return fmt.Sprintf("item-%d", s.nextID), nil
}

type fakeCampaigns struct {
	creates map[string]int
}

func (c *fakeCampaigns) EnsureByName(ctx context.Context, name string) (string, error) {
	if c.creates == nil {
		c.creates = make(map[string]int)
	}
	c.creates[name]++
	return "campaign-" + name, nil
}

type fakeQueue struct {
	jobs      []domain.IndexJob
	overrideF func(jobs []domain.IndexJob) (domain.EnqueueResult, error)
}

func (q *fakeQueue) EnqueueBatch(ctx context.Context, jobs []domain.IndexJob) (domain.EnqueueResult, error) {
	q.jobs = append(q.jobs, jobs...)
	if q.overrideF != nil {
		return q.overrideF(jobs)
	}
	return domain.EnqueueResult{Enqueued: len(jobs)}, nil
}

func newProcessor(fetcher importer.TitleFetcher, store *fakeContentStore, queue *fakeQueue) *importer.Processor {
	return importer.NewProcessor(fetcher, store, &fakeCampaigns{}, queue, nil, importer.Config{})
}

func rowsFromURLs(urls ...string) []domain.ImportRow {
	rows := make([]domain.ImportRow, 0, len(urls))
	for _, u := range urls {
		rows = append(rows, domain.ImportRow{"title": "", "url": u})
	}
	return rows
}

func TestProcessorEnrichesBlankTitles(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{titles: map[string]string{
		"https://example.com/a": "Post A",
		"https://example.com/b": "Post B",
		"https://example.com/c": "Post C",
	}}
	store := newFakeContentStore()
	queue := &fakeQueue{}
	p := newProcessor(fetcher, store, queue)

	result, err := p.Process(context.Background(), rowsFromURLs(
		"https://example.com/a", "https://example.com/b", "https://example.com/c",
	), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Enrichment.Attempted != 3 || result.Enrichment.Successful != 3 || result.Enrichment.Failed != 0 {
		t.Fatalf("unexpected enrichment stats: %+v", result.Enrichment)
	}
	if result.Successful != 3 || result.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.Indexed != 3 || result.IndexingFailed != 0 {
		t.Fatalf("unexpected indexing counts: %+v", result)
	}
	if store.inserted[0].Title != "Post A" {
		t.Fatalf("expected fetched title persisted, got %q", store.inserted[0].Title)
	}
	if len(queue.jobs) != 3 {
		t.Fatalf("expected 3 index jobs, got %d", len(queue.jobs))
	}
}

func TestProcessorNeverOverwritesProvidedTitle(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{titles: map[string]string{
		"https://example.com/a": "Fetched Title",
	}}
	store := newFakeContentStore()
	p := newProcessor(fetcher, store, &fakeQueue{})

	rows := []domain.ImportRow{
		{"title": "User Title", "url": "https://example.com/a"},
	}

	result, err := p.Process(context.Background(), rows, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Enrichment.Attempted != 0 {
		t.Fatalf("expected no fetch for pre-filled title, stats %+v", result.Enrichment)
	}
	if len(fetcher.calls) != 0 {
		t.Fatalf("fetcher should not have been called, calls %v", fetcher.calls)
	}
	if store.inserted[0].Title != "User Title" {
		t.Fatalf("provided title was altered: %q", store.inserted[0].Title)
	}
}

func TestProcessorFallsBackToURLOnFetchFailure(t *testing.T) {
	t.Parallel()

	// Only one of three URLs resolves; the others simulate a timeout and a
	// PDF, both of which the fetcher reports as failures.
	fetcher := &fakeFetcher{titles: map[string]string{
		"https://example.com/ok": "Good Post",
	}}
	store := newFakeContentStore()
	p := newProcessor(fetcher, store, &fakeQueue{})

	result, err := p.Process(context.Background(), rowsFromURLs(
		"https://example.com/ok", "https://example.com/slow", "https://example.com/file.pdf",
	), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Enrichment.Failed != 2 {
		t.Fatalf("expected 2 failed fetches, stats %+v", result.Enrichment)
	}
	if result.Enrichment.Attempted != result.Enrichment.Successful+result.Enrichment.Failed {
		t.Fatalf("enrichment stats do not add up: %+v", result.Enrichment)
	}
	if result.Successful != 3 || result.Failed != 0 {
		t.Fatalf("fetch failures must not fail rows: %+v", result)
	}

	titles := map[string]string{}
	for _, item := range store.inserted {
		titles[item.CurrentURL] = item.Title
	}
	if titles["https://example.com/slow"] != "https://example.com/slow" {
		t.Fatalf("expected URL fallback title, got %q", titles["https://example.com/slow"])
	}
	if titles["https://example.com/file.pdf"] != "https://example.com/file.pdf" {
		t.Fatalf("expected URL fallback title, got %q", titles["https://example.com/file.pdf"])
	}
}

func TestProcessorRejectsDuplicateURL(t *testing.T) {
	t.Parallel()

	store := newFakeContentStore()
	store.existing["https://example.com/dupe"] = true
	p := newProcessor(&fakeFetcher{}, store, &fakeQueue{})

	rows := []domain.ImportRow{
		{"title": "Dupe", "url": "https://example.com/dupe"},
	}

	result, err := p.Process(context.Background(), rows, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Successful != 0 || result.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error entry, got %d", len(result.Errors))
	}
	entry := result.Errors[0]
	if entry.Row != 0 || entry.Field != "url" || !strings.Contains(entry.Message, "duplicate") {
		t.Fatalf("unexpected error entry: %+v", entry)
	}
}

func TestProcessorReplayYieldsZeroNewSuccesses(t *testing.T) {
	t.Parallel()

	store := newFakeContentStore()
	p := newProcessor(&fakeFetcher{}, store, &fakeQueue{})

	rows := []domain.ImportRow{
		{"title": "A", "url": "https://example.com/a"},
		{"title": "B", "url": "https://example.com/b"},
	}

	first, err := p.Process(context.Background(), rows, nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Successful != 2 {
		t.Fatalf("first run should import all rows: %+v", first)
	}

	replay, err := p.Process(context.Background(), rows, nil)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replay.Successful != 0 || replay.Failed != len(rows) {
		t.Fatalf("replay should reject every row as duplicate: %+v", replay)
	}
}

func TestProcessorInsertRaceDegradesRow(t *testing.T) {
	t.Parallel()

	store := newFakeContentStore()
	store.insertErr["https://example.com/raced"] = domain.ErrDuplicateURL
	p := newProcessor(&fakeFetcher{}, store, &fakeQueue{})

	rows := []domain.ImportRow{
		{"title": "Raced", "url": "https://example.com/raced"},
		{"title": "Fine", "url": "https://example.com/fine"},
	}

	result, err := p.Process(context.Background(), rows, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Successful != 1 || result.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.Errors[0].Row != 0 {
		t.Fatalf("error should reference the original row index: %+v", result.Errors[0])
	}
}

func TestProcessorIndexingFailureDoesNotUnwindInserts(t *testing.T) {
	t.Parallel()

	store := newFakeContentStore()
	queue := &fakeQueue{overrideF: func(jobs []domain.IndexJob) (domain.EnqueueResult, error) {
		return domain.EnqueueResult{Enqueued: 1, Failed: len(jobs) - 1}, nil
	}}
	p := newProcessor(&fakeFetcher{}, store, queue)

	rows := []domain.ImportRow{
		{"title": "A", "url": "https://example.com/a"},
		{"title": "B", "url": "https://example.com/b"},
	}

	result, err := p.Process(context.Background(), rows, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Successful != 2 {
		t.Fatalf("indexing failure must not touch successful count: %+v", result)
	}
	if result.Indexed != 1 || result.IndexingFailed != 1 {
		t.Fatalf("unexpected indexing counts: %+v", result)
	}
}

func TestProcessorPersistenceFailureAbortsRun(t *testing.T) {
	t.Parallel()

	store := newFakeContentStore()
	store.checkErr = errors.New("connection refused")
	p := newProcessor(&fakeFetcher{}, store, &fakeQueue{})

	rows := []domain.ImportRow{
		{"title": "A", "url": "https://example.com/a"},
	}

	if _, err := p.Process(context.Background(), rows, nil); err == nil {
		t.Fatal("expected unrecoverable persistence failure to abort the run")
	}
}

func TestProcessorProgressIsMonotonicPerPhase(t *testing.T) {
	t.Parallel()

	const batchSize = 1000

	store := newFakeContentStore()
	p := newProcessor(&fakeFetcher{}, store, &fakeQueue{})

	rows := make([]domain.ImportRow, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		rows = append(rows, domain.ImportRow{
			"title": fmt.Sprintf("Post %d", i),
			"url":   fmt.Sprintf("https://example.com/post-%d", i),
		})
	}

	var updates []domain.Progress
	result, err := p.Process(context.Background(), rows, func(p domain.Progress) {
		updates = append(updates, p)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Successful != batchSize {
		t.Fatalf("expected all rows imported: %+v", result)
	}

	perPhase := map[domain.ImportPhase][]domain.Progress{}
	for _, u := range updates {
		perPhase[u.Phase] = append(perPhase[u.Phase], u)
	}

	for _, phase := range []domain.ImportPhase{domain.PhaseEnriching, domain.PhaseValidating, domain.PhaseInserting, domain.PhaseIndexing} {
		seq := perPhase[phase]
		if len(seq) == 0 {
			t.Fatalf("no progress updates for phase %s", phase)
		}
		reachedTotal := 0
		prev := -1
		for _, u := range seq {
			if u.Current < prev {
				t.Fatalf("phase %s progress went backwards: %d after %d", phase, u.Current, prev)
			}
			prev = u.Current
			if u.Current == u.Total && u.Total > 0 {
				reachedTotal++
			}
		}
		if reachedTotal != 1 {
			t.Fatalf("phase %s should reach total exactly once, did %d times", phase, reachedTotal)
		}
	}

	if len(perPhase[domain.PhaseComplete]) != 1 {
		t.Fatalf("expected exactly one complete update, got %d", len(perPhase[domain.PhaseComplete]))
	}
}

func TestProcessorStopsAtPhaseBoundaryWhenCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newProcessor(&fakeFetcher{}, newFakeContentStore(), &fakeQueue{})
	_, err := p.Process(ctx, rowsFromURLs("https://example.com/a"), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
