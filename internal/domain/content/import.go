package content

import (
	"fmt"
	"strings"
	"time"
)

// ImportRow is one uploaded CSV line: arbitrary column names mapped to
// untyped cell values. Rows live only for the duration of an import session.
type ImportRow map[string]any

// Field returns the trimmed string value of the first column whose
// (case-insensitive) name matches one of keys.
func (r ImportRow) Field(keys ...string) string {
	for _, key := range keys {
		for column, value := range r {
			if !strings.EqualFold(strings.TrimSpace(column), key) {
				continue
			}
			if value == nil {
				return ""
			}
			switch v := value.(type) {
			case string:
				return strings.TrimSpace(v)
			default:
				return strings.TrimSpace(fmt.Sprintf("%v", v))
			}
		}
	}
	return ""
}

// SetField overwrites (or adds) a column value, preferring an existing
// column whose name matches case-insensitively.
func (r ImportRow) SetField(key, value string) {
	for column := range r {
		if strings.EqualFold(strings.TrimSpace(column), key) {
			r[column] = value
			return
		}
	}
	r[key] = value
}

// Title returns the row's title cell, trying the common column spellings.
func (r ImportRow) Title() string {
	return r.Field("title", "name")
}

// URL returns the row's URL cell, trying the common column spellings.
func (r ImportRow) URL() string {
	return r.Field("url", "current_url", "currenturl", "link")
}

// ImportSession links an uploaded batch to the streaming endpoint that
// will consume it. Consumed at most once; expired sessions read as absent.
type ImportSession struct {
	ID        string
	UserID    string
	Rows      []ImportRow
	CreatedAt time.Time
}

type EnrichmentStats struct {
	Attempted  int `json:"attempted"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ImportResult is the terminal, immutable summary of one import run.
type ImportResult struct {
	Successful     int             `json:"successful"`
	Failed         int             `json:"failed"`
	Errors         []RowError      `json:"errors"`
	Enrichment     EnrichmentStats `json:"enrichment"`
	Indexed        int             `json:"indexed"`
	IndexingFailed int             `json:"indexingFailed"`
}

// IndexJob is one unit of work handed to the indexing worker after an
// item is persisted.
type IndexJob struct {
	ContentItemID string
	URL           string
}

// QueuedIndexJob is an IndexJob claimed from the durable queue, carrying
// its retry bookkeeping.
type QueuedIndexJob struct {
	ID            string
	ContentItemID string
	URL           string
	Attempts      int
	MaxAttempts   int
}

// EnqueueResult reports a batched enqueue that tolerates partial failure.
type EnqueueResult struct {
	Enqueued int
	Failed   int
}

type ImportPhase string

const (
	PhaseEnriching  ImportPhase = "enriching"
	PhaseValidating ImportPhase = "validating"
	PhaseInserting  ImportPhase = "inserting"
	PhaseIndexing   ImportPhase = "indexing"
	PhaseComplete   ImportPhase = "complete"
	PhaseErrored    ImportPhase = "errored"
)

type Progress struct {
	Phase      ImportPhase
	Current    int
	Total      int
	Message    string
	ErrorCount int
}

// ProgressSink receives progress updates from the processor. The processor
// has no knowledge of how updates reach a client; the stream transport is
// one implementation, tests supply recording sinks.
type ProgressSink func(Progress)
