package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/device-cost-service/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
	TouchLogin(ctx context.Context, id string, at time.Time) error
	TouchLogout(ctx context.Context, id string, at time.Time) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, name, password_hash, last_login)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.PasswordHash,
		user.LastLoginAt,
	).Scan(&user.CreatedAt)
	return mapPgError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, name, password_hash, created_at, last_login, last_logout
        FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	const query = `
        SELECT id, name, password_hash, created_at, last_login, last_logout
        FROM users WHERE name=$1`
	return r.fetchSingle(ctx, query, name)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.LastLoginAt,
		&user.LastLogoutAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &user, nil
}

func (r *userRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.touch(ctx, `UPDATE users SET last_login=$1 WHERE id=$2`, id, at)
}

func (r *userRepository) TouchLogout(ctx context.Context, id string, at time.Time) error {
	return r.touch(ctx, `UPDATE users SET last_logout=$1 WHERE id=$2`, id, at)
}

func (r *userRepository) touch(ctx context.Context, query, id string, at time.Time) error {
	cmd, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
