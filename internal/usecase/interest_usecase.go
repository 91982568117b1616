package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scholar-feed/backend/internal/domain"
)

// Interests is a user's stored interest set. UpdatedAt is nil until the
// first SetInterests.
type Interests struct {
	Interests []string   `json:"interests"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// InterestUsecase is the only writer of a user's interest set.
type InterestUsecase struct {
	userRepo domain.UserRepository
	now      func() time.Time
}

func NewInterestUsecase(userRepo domain.UserRepository) *InterestUsecase {
	return &InterestUsecase{
		userRepo: userRepo,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// DecodeInterests accepts either a single JSON string or an array of
// strings.
func DecodeInterests(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, domain.NewValidationError("interests", "interests are required")
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, domain.NewValidationError("interests", "interests must be a string or an array of strings")
		}
		return []string{s}, nil
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, domain.NewValidationError("interests", "interests must be an array of strings")
		}
		out := make([]string, 0, len(elems))
		for i, e := range elems {
			var s string
			if len(e) == 0 || e[0] != '"' || json.Unmarshal(e, &s) != nil {
				return nil, domain.NewValidationError("interests", fmt.Sprintf("element %d is not a string", i))
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, domain.NewValidationError("interests", "interests must be a string or an array of strings")
	}
}

func (u *InterestUsecase) GetInterests(ctx context.Context, userID uuid.UUID) (*Interests, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.NewStoreError("load user", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user", userID.String())
	}

	interests := user.Interests
	if interests == nil {
		interests = []string{}
	}
	return &Interests{Interests: interests, UpdatedAt: user.InterestsUpdatedAt}, nil
}

// SetInterests trims and dedupes the input, keeping first occurrences, and
// replaces the stored set in one write. Nothing is written when validation
// fails.
func (u *InterestUsecase) SetInterests(ctx context.Context, userID uuid.UUID, interests []string) ([]string, error) {
	cleaned, err := cleanInterests(interests)
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.UpdateInterests(ctx, userID, cleaned, u.now()); err != nil {
		return nil, domain.NewStoreError("update interests", err)
	}
	return cleaned, nil
}

func cleanInterests(interests []string) ([]string, error) {
	seen := make(map[string]struct{}, len(interests))
	out := make([]string, 0, len(interests))
	for i, raw := range interests {
		s := strings.TrimSpace(raw)
		if s == "" {
			return nil, domain.NewValidationError("interests", fmt.Sprintf("element %d is empty", i))
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) > domain.MaxInterests {
		return nil, domain.NewValidationError("interests", fmt.Sprintf("at most %d interests allowed", domain.MaxInterests))
	}
	return out, nil
}
