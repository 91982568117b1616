package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MaxInterests is the upper bound on a user's stored interest set.
const MaxInterests = 10

type User struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	Name               string     `json:"name,omitempty"`
	Expertise          string     `json:"expertise,omitempty"`
	Interests          []string   `json:"interests"`
	InterestsUpdatedAt *time.Time `json:"interests_updated_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// UserRepository is the document store for user records. Lookups return
// (nil, nil) when no record matches.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// UpdateInterests replaces the whole interest set in one write. It
	// returns a NotFoundError when the user does not exist.
	UpdateInterests(ctx context.Context, id uuid.UUID, interests []string, updatedAt time.Time) error
}
