package echo_test

import (
	"context"
	"errors"
	"sync"

	domain "github.com/mohammadpnp/content-inventory/internal/domain/content"
	"github.com/mohammadpnp/content-inventory/internal/domain/identity"
)

// Shared fakes for the handler tests.

type fakeUserRepo struct {
	users map[string]*identity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*identity.User{
		"contributor-key": {ID: "user-1", Name: "Casey", Role: identity.RoleContributor},
		"viewer-key":      {ID: "user-2", Name: "Vee", Role: identity.RoleViewer},
		"admin-key":       {ID: "user-3", Name: "Ada", Role: identity.RoleAdmin},
		"other-key":       {ID: "user-9", Name: "Ozan", Role: identity.RoleContributor},
	}}
}

func (f *fakeUserRepo) GetByAPIKey(ctx context.Context, apiKey string) (*identity.User, error) {
	user, ok := f.users[apiKey]
	if !ok {
		return nil, identity.ErrUnknownAPIKey
	}
	return user, nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.ImportSession
	deleted  []string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]domain.ImportSession)}
}

func (f *fakeSessionStore) Create(ctx context.Context, session domain.ImportSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, sessionID string) (*domain.ImportSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	f.deleted = append(f.deleted, sessionID)
	return nil
}

type fakeProcessor struct {
	result   *domain.ImportResult
	err      error
	panicMsg string
	gotRows  []domain.ImportRow
	progress []domain.Progress
}

func (f *fakeProcessor) Process(ctx context.Context, rows []domain.ImportRow, sink domain.ProgressSink) (*domain.ImportResult, error) {
	f.gotRows = rows
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	if sink != nil {
		for _, p := range f.progress {
			sink(p)
		}
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.ImportResult{Errors: []domain.RowError{}}, nil
}

var errProcessorBoom = errors.New("boom")

var importResultFixture = domain.ImportResult{
	Successful: 2,
	Failed:     1,
	Errors: []domain.RowError{
		{Row: 2, Field: "url", Message: "duplicate url: https://example.com/dupe"},
	},
	Enrichment: domain.EnrichmentStats{Attempted: 2, Successful: 1, Failed: 1},
	Indexed:    2,
}
