package bolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholar-feed/backend/internal/domain"
)

func openTestRepo(t *testing.T) *UserRepository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "nested", "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateAndLookup(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	user := &domain.User{Email: "a@b.com", PasswordHash: "hash", Name: "Ada"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEqual(t, uuid.Nil, user.ID)

	byEmail, err := repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)
	assert.Equal(t, []string{}, byEmail.Interests)
	assert.Nil(t, byEmail.InterestsUpdatedAt)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{Email: "a@b.com"}))
	err := repo.Create(ctx, &domain.User{Email: "a@b.com"})
	assert.True(t, errors.Is(err, domain.ErrAlreadyExists))
}

func TestLookupMissing(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	u, err := repo.GetByEmail(ctx, "nobody@b.com")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUpdateInterests(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	user := &domain.User{Email: "a@b.com"}
	require.NoError(t, repo.Create(ctx, user))

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateInterests(ctx, user.ID, []string{"ml", "nlp"}, at))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ml", "nlp"}, got.Interests)
	require.NotNil(t, got.InterestsUpdatedAt)
	assert.True(t, at.Equal(*got.InterestsUpdatedAt))

	require.NoError(t, repo.UpdateInterests(ctx, user.ID, []string{}, at.Add(time.Hour)))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Interests)
}

func TestUpdateInterestsMissingUser(t *testing.T) {
	repo := openTestRepo(t)
	err := repo.UpdateInterests(context.Background(), uuid.New(), []string{"x"}, time.Now())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	ctx := context.Background()

	repo, err := Open(path)
	require.NoError(t, err)
	user := &domain.User{Email: "a@b.com"}
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.Close())

	repo, err = Open(path)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
}
