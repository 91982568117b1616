package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/scholar-feed/backend/internal/domain"
	"github.com/scholar-feed/backend/internal/normalize"
	"github.com/scholar-feed/backend/internal/provider"
)

var (
	ErrNoInterests  = fmt.Errorf("%w: no interests found", domain.ErrValidation)
	ErrMissingQuery = fmt.Errorf("%w: search query is required", domain.ErrValidation)
)

const (
	personalizedLimit = 5
	generalLimit      = 10
	researcherLimit   = 10
)

type InterestReader interface {
	GetInterests(ctx context.Context, userID uuid.UUID) (*Interests, error)
}

type Optimizer interface {
	OptimizeInterests(ctx context.Context, interests []string) (string, error)
	OptimizeQuery(ctx context.Context, raw string) (string, error)
}

// RecommendationUsecase turns interests or free-text queries into
// normalized provider results. Provider order is preserved.
type RecommendationUsecase struct {
	interests InterestReader
	optimizer Optimizer
	searcher  provider.Searcher
	logger    zerolog.Logger
}

func NewRecommendationUsecase(interests InterestReader, optimizer Optimizer, searcher provider.Searcher, logger zerolog.Logger) *RecommendationUsecase {
	return &RecommendationUsecase{
		interests: interests,
		optimizer: optimizer,
		searcher:  searcher,
		logger:    logger,
	}
}

func (u *RecommendationUsecase) GetPersonalizedRecommendations(ctx context.Context, userID uuid.UUID) ([]domain.Paper, error) {
	stored, err := u.interests.GetInterests(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(stored.Interests) == 0 {
		return nil, ErrNoInterests
	}

	query, err := u.optimizer.OptimizeInterests(ctx, stored.Interests)
	if err != nil {
		return nil, err
	}

	u.logger.Info().
		Str("user_id", userID.String()).
		Strs("interests", stored.Interests).
		Str("query", query).
		Msg("personalized search")

	records, err := u.searcher.SearchPapers(ctx, query, provider.Options{Limit: personalizedLimit})
	if err != nil {
		return nil, err
	}
	return normalize.Papers(records), nil
}

// GetRecommendations searches for query, first rewriting it through the
// optimizer when optimize is set.
func (u *RecommendationUsecase) GetRecommendations(ctx context.Context, query string, optimize bool) ([]domain.Paper, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrMissingQuery
	}

	if optimize {
		rewritten, err := u.optimizer.OptimizeQuery(ctx, query)
		if err != nil {
			return nil, err
		}
		u.logger.Debug().Str("query", query).Str("rewritten", rewritten).Msg("query rewritten")
		query = rewritten
	}

	records, err := u.searcher.SearchPapers(ctx, query, provider.Options{Limit: generalLimit})
	if err != nil {
		return nil, err
	}
	return normalize.Papers(records), nil
}

func (u *RecommendationUsecase) SearchResearchers(ctx context.Context, query string) ([]domain.Researcher, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrMissingQuery
	}

	records, err := u.searcher.SearchAuthors(ctx, query, provider.Options{Limit: researcherLimit})
	if err != nil {
		return nil, err
	}

	if u.searcher.Name() == provider.Arxiv {
		return aggregateArxivAuthors(records, query), nil
	}

	researchers := make([]domain.Researcher, 0, len(records))
	for _, r := range records {
		if r.Scholar == nil {
			continue
		}
		researchers = append(researchers, normalize.Researcher(r.Scholar))
	}
	return researchers, nil
}

// aggregateArxivAuthors builds one researcher per distinct author name
// across the entries, in first-seen order, keeping only names that contain
// query case-insensitively.
func aggregateArxivAuthors(records []provider.AuthorRecord, query string) []domain.Researcher {
	type acc struct {
		name   string
		papers []domain.RecentPaper
	}

	var order []string
	byName := make(map[string]*acc)
	for _, r := range records {
		if r.Arxiv == nil {
			continue
		}
		paper := normalize.FromArxiv(r.Arxiv)
		for _, name := range paper.Authors {
			a, ok := byName[name]
			if !ok {
				a = &acc{name: name}
				byName[name] = a
				order = append(order, name)
			}
			a.papers = append(a.papers, domain.RecentPaper{Title: paper.Title, Year: paper.Year})
		}
	}

	needle := strings.ToLower(query)
	researchers := make([]domain.Researcher, 0, len(order))
	for _, name := range order {
		if !strings.Contains(strings.ToLower(name), needle) {
			continue
		}
		a := byName[name]
		researchers = append(researchers, domain.Researcher{
			Name:         a.name,
			PaperCount:   len(a.papers),
			RecentPapers: normalize.RecentPapers(a.papers),
		})
	}
	return researchers
}
