// Package bolt stores user records in a single-file bbolt database. It backs
// local and single-node deployments where Postgres is not available.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/scholar-feed/backend/internal/domain"
)

var (
	usersBucket  = []byte("users")
	emailsBucket = []byte("users_by_email")
)

type UserRepository struct {
	db *bbolt.DB
}

var _ domain.UserRepository = (*UserRepository)(nil)

// Open creates the database file and its buckets when missing.
func Open(path string) (*UserRepository, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(usersBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(emailsBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}
	return &UserRepository{db: db}, nil
}

func (r *UserRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// record is the stored form. domain.User hides the password hash from JSON.
type record struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"password_hash"`
	Name               string     `json:"name"`
	Expertise          string     `json:"expertise"`
	Interests          []string   `json:"interests"`
	InterestsUpdatedAt *time.Time `json:"interests_updated_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func toRecord(u *domain.User) record {
	return record{
		ID:                 u.ID,
		Email:              u.Email,
		PasswordHash:       u.PasswordHash,
		Name:               u.Name,
		Expertise:          u.Expertise,
		Interests:          u.Interests,
		InterestsUpdatedAt: u.InterestsUpdatedAt,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func (rec record) user() *domain.User {
	interests := rec.Interests
	if interests == nil {
		interests = []string{}
	}
	return &domain.User{
		ID:                 rec.ID,
		Email:              rec.Email,
		PasswordHash:       rec.PasswordHash,
		Name:               rec.Name,
		Expertise:          rec.Expertise,
		Interests:          interests,
		InterestsUpdatedAt: rec.InterestsUpdatedAt,
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Interests == nil {
		user.Interests = []string{}
	}

	data, err := json.Marshal(toRecord(user))
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		emails := tx.Bucket(emailsBucket)
		if emails.Get([]byte(user.Email)) != nil {
			return domain.NewAlreadyExistsError("user", user.Email)
		}
		key := user.ID[:]
		if err := tx.Bucket(usersBucket).Put(key, data); err != nil {
			return err
		}
		return emails.Put([]byte(user.Email), key)
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user *domain.User
	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		user, err = load(tx, id[:])
		return err
	})
	return user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user *domain.User
	err := r.db.View(func(tx *bbolt.Tx) error {
		key := tx.Bucket(emailsBucket).Get([]byte(email))
		if key == nil {
			return nil
		}
		var err error
		user, err = load(tx, key)
		return err
	})
	return user, err
}

func (r *UserRepository) UpdateInterests(ctx context.Context, id uuid.UUID, interests []string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if interests == nil {
		interests = []string{}
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		user, err := load(tx, id[:])
		if err != nil {
			return err
		}
		if user == nil {
			return domain.NewNotFoundError("user", id.String())
		}

		user.Interests = interests
		user.InterestsUpdatedAt = &updatedAt
		user.UpdatedAt = updatedAt

		data, err := json.Marshal(toRecord(user))
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		return tx.Bucket(usersBucket).Put(id[:], data)
	})
}

// load returns (nil, nil) when key is absent.
func load(tx *bbolt.Tx, key []byte) (*domain.User, error) {
	data := tx.Bucket(usersBucket).Get(key)
	if data == nil {
		return nil, nil
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return rec.user(), nil
}
