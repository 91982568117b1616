package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scholar-feed/backend/internal/domain"
	"github.com/scholar-feed/backend/internal/provider"
)

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*domain.User
	updates int
	err     error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: make(map[uuid.UUID]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return domain.NewAlreadyExistsError("user", user.Email)
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) UpdateInterests(_ context.Context, id uuid.UUID, interests []string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	u, ok := r.byID[id]
	if !ok {
		return domain.NewNotFoundError("user", id.String())
	}
	r.updates++
	u.Interests = append([]string(nil), interests...)
	u.InterestsUpdatedAt = &updatedAt
	return nil
}

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (g *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

type fakeSearcher struct {
	name    provider.Name
	papers  []provider.PaperRecord
	authors []provider.AuthorRecord
	err     error

	queries []string
	limits  []int
}

func (s *fakeSearcher) Name() provider.Name { return s.name }

func (s *fakeSearcher) SearchPapers(_ context.Context, query string, opts provider.Options) ([]provider.PaperRecord, error) {
	s.queries = append(s.queries, query)
	s.limits = append(s.limits, opts.Limit)
	return s.papers, s.err
}

func (s *fakeSearcher) SearchAuthors(_ context.Context, query string, opts provider.Options) ([]provider.AuthorRecord, error) {
	s.queries = append(s.queries, query)
	s.limits = append(s.limits, opts.Limit)
	return s.authors, s.err
}

func ptr[T any](v T) *T { return &v }
