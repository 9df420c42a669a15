package repository

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/spec-kit/device-cost-service/internal/domain"
	"github.com/spec-kit/device-cost-service/internal/localstore"
)

// Keys used by the local-mode repositories.
const (
	ProductsKey = "products"
	UsersKey    = "users"
)

// localProductRepository keeps all products under one durable key. Rows
// still carry user_id, and every query filters on it.
type localProductRepository struct {
	products *localstore.Value[[]domain.Product]
	now      func() time.Time
}

// NewLocalProductRepository returns a ProductRepository backed by the durable local store.
func NewLocalProductRepository(store *localstore.Store) ProductRepository {
	return &localProductRepository{
		products: localstore.NewValue(store, ProductsKey, []domain.Product{}),
		now:      time.Now,
	}
}

func (r *localProductRepository) Create(ctx context.Context, product *domain.Product) error {
	now := r.now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	row := *product
	row.Tags = slices.Clone(product.Tags)
	r.products.Update(ctx, func(list []domain.Product) []domain.Product {
		return append(slices.Clone(list), row)
	})
	return nil
}

func (r *localProductRepository) GetByID(ctx context.Context, userID, id string) (*domain.Product, error) {
	for _, p := range r.products.Read(ctx) {
		if p.ID == id && p.UserID == userID {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *localProductRepository) ListByUser(ctx context.Context, userID string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.products.Read(ctx) {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *localProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	out := slices.Clone(r.products.Read(ctx))
	sortNewestFirst(out)
	return out, nil
}

func (r *localProductRepository) Update(ctx context.Context, userID, id string, patch domain.ProductPatch) error {
	found := false
	r.products.Update(ctx, func(list []domain.Product) []domain.Product {
		next := slices.Clone(list)
		for i := range next {
			if next[i].ID == id && next[i].UserID == userID {
				patch.Apply(&next[i])
				next[i].UpdatedAt = r.now().UTC()
				found = true
			}
		}
		return next
	})
	if !found {
		return ErrNotFound
	}
	return nil
}

func (r *localProductRepository) Delete(ctx context.Context, userID, id string) error {
	found := false
	r.products.Update(ctx, func(list []domain.Product) []domain.Product {
		return slices.DeleteFunc(slices.Clone(list), func(p domain.Product) bool {
			match := p.ID == id && p.UserID == userID
			found = found || match
			return match
		})
	})
	if !found {
		return ErrNotFound
	}
	return nil
}

func (r *localProductRepository) AddTag(ctx context.Context, userID, id, tag string) (bool, error) {
	found, added := false, false
	r.products.Update(ctx, func(list []domain.Product) []domain.Product {
		next := slices.Clone(list)
		for i := range next {
			if next[i].ID != id || next[i].UserID != userID {
				continue
			}
			found = true
			tags := domain.AddTag(slices.Clone(next[i].Tags), tag)
			if len(tags) != len(next[i].Tags) {
				next[i].Tags = tags
				next[i].UpdatedAt = r.now().UTC()
				added = true
			}
		}
		return next
	})
	if !found {
		return false, ErrNotFound
	}
	return added, nil
}

func sortNewestFirst(products []domain.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}

type localUserRepository struct {
	users *localstore.Value[[]domain.User]
	now   func() time.Time
}

// NewLocalUserRepository returns a UserRepository backed by the durable local store.
func NewLocalUserRepository(store *localstore.Store) UserRepository {
	return &localUserRepository{
		users: localstore.NewValue(store, UsersKey, []domain.User{}),
		now:   time.Now,
	}
}

func (r *localUserRepository) Create(ctx context.Context, user *domain.User) error {
	taken := false
	user.CreatedAt = r.now().UTC()
	r.users.Update(ctx, func(list []domain.User) []domain.User {
		for _, u := range list {
			if u.Name == user.Name {
				taken = true
				return list
			}
		}
		return append(slices.Clone(list), *user)
	})
	if taken {
		return ErrNameTaken
	}
	return nil
}

func (r *localUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.find(ctx, func(u domain.User) bool { return u.ID == id })
}

func (r *localUserRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	return r.find(ctx, func(u domain.User) bool { return u.Name == name })
}

func (r *localUserRepository) find(ctx context.Context, match func(domain.User) bool) (*domain.User, error) {
	for _, u := range r.users.Read(ctx) {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *localUserRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.touch(ctx, id, func(u *domain.User) { u.LastLoginAt = &at })
}

func (r *localUserRepository) TouchLogout(ctx context.Context, id string, at time.Time) error {
	return r.touch(ctx, id, func(u *domain.User) { u.LastLogoutAt = &at })
}

func (r *localUserRepository) touch(ctx context.Context, id string, fn func(*domain.User)) error {
	found := false
	r.users.Update(ctx, func(list []domain.User) []domain.User {
		next := slices.Clone(list)
		for i := range next {
			if next[i].ID == id {
				fn(&next[i])
				found = true
			}
		}
		return next
	})
	if !found {
		return ErrNotFound
	}
	return nil
}
