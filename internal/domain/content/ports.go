package content

import "context"

type ContentRepository interface {
	URLExists(ctx context.Context, url string) (bool, error)
	Insert(ctx context.Context, item *ContentItem) (string, error)
}

type CampaignRepository interface {
	// EnsureByName returns the campaign id for name, creating the campaign
	// if it does not exist yet. Safe to call repeatedly with the same name.
	EnsureByName(ctx context.Context, name string) (string, error)
}

type IndexQueue interface {
	EnqueueBatch(ctx context.Context, jobs []IndexJob) (EnqueueResult, error)
}

type SessionStore interface {
	Create(ctx context.Context, session ImportSession) error
	Get(ctx context.Context, sessionID string) (*ImportSession, error)
	Delete(ctx context.Context, sessionID string) error
}
