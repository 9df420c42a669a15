package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/device-cost-service/internal/domain"
	"github.com/spec-kit/device-cost-service/internal/localstore"
)

func newLocalStore() (*localstore.Store, *localstore.MemoryTier) {
	tier := localstore.NewMemoryTier("memory")
	return localstore.New(localstore.Options{Primary: tier}), tier
}

func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func newProductRepo(store *localstore.Store) *localProductRepository {
	repo := NewLocalProductRepository(store).(*localProductRepository)
	repo.now = steppingClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return repo
}

func TestLocalProductRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	store, _ := newLocalStore()
	repo := newProductRepo(store)

	first := &domain.Product{ID: "p1", UserID: "u1", Name: "Phone", Price: 3000, Tags: []string{"daily"}}
	second := &domain.Product{ID: "p2", UserID: "u1", Name: "Laptop", Price: 9000}
	other := &domain.Product{ID: "p3", UserID: "u2", Name: "Camera", Price: 5000}
	for _, p := range []*domain.Product{first, second, other} {
		require.NoError(t, repo.Create(ctx, p))
	}

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p2", list[0].ID, "newest first")
	assert.Equal(t, "p1", list[1].ID)

	_, err = repo.GetByID(ctx, "u2", "p1")
	assert.ErrorIs(t, err, ErrNotFound)

	name := "Phone 2"
	require.NoError(t, repo.Update(ctx, "u1", "p1", domain.ProductPatch{Name: &name}))
	got, err := repo.GetByID(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Phone 2", got.Name)
	assert.Equal(t, []string{"daily"}, got.Tags)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	assert.ErrorIs(t, repo.Update(ctx, "u2", "p1", domain.ProductPatch{Name: &name}), ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "u1", "p2"))
	assert.ErrorIs(t, repo.Delete(ctx, "u1", "p2"), ErrNotFound)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLocalProductRepository_SurvivesPrimaryLoss(t *testing.T) {
	ctx := context.Background()
	store, tier := newLocalStore()
	repo := newProductRepo(store)

	require.NoError(t, repo.Create(ctx, &domain.Product{ID: "p1", UserID: "u1", Name: "Tablet"}))
	require.NoError(t, tier.Delete(ctx, ProductsKey))

	reopened := newProductRepo(store)
	got, err := reopened.GetByID(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Tablet", got.Name)
}

func TestLocalProductRepository_AddTag(t *testing.T) {
	ctx := context.Background()
	store, _ := newLocalStore()
	repo := newProductRepo(store)
	require.NoError(t, repo.Create(ctx, &domain.Product{ID: "p1", UserID: "u1", Name: "Camera", Tags: []string{"travel"}}))
	before, err := repo.GetByID(ctx, "u1", "p1")
	require.NoError(t, err)

	added, err := repo.AddTag(ctx, "u1", "p1", "work")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddTag(ctx, "u1", "p1", "travel")
	require.NoError(t, err)
	assert.False(t, added)

	got, err := repo.GetByID(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"travel", "work"}, got.Tags)
	assert.True(t, got.UpdatedAt.After(before.UpdatedAt))

	_, err = repo.AddTag(ctx, "u2", "p1", "stolen")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalUserRepository(t *testing.T) {
	ctx := context.Background()
	store, _ := newLocalStore()
	repo := NewLocalUserRepository(store)

	alice := &domain.User{ID: "u1", Name: "alice", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, alice))
	assert.False(t, alice.CreatedAt.IsZero())
	assert.ErrorIs(t, repo.Create(ctx, &domain.User{ID: "u2", Name: "alice"}), ErrNameTaken)

	byName, err := repo.GetByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ID)

	at := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLogin(ctx, "u1", at))
	require.NoError(t, repo.TouchLogout(ctx, "u1", at.Add(time.Hour)))

	byID, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, byID.LastLoginAt)
	require.NotNil(t, byID.LastLogoutAt)
	assert.True(t, byID.LastLoginAt.Equal(at))
	assert.True(t, byID.LastLogoutAt.Equal(at.Add(time.Hour)))

	_, err = repo.GetByName(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.TouchLogin(ctx, "missing", at), ErrNotFound)
}
