package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/device-cost-service/internal/domain"
)

// ProductRepository encapsulates product persistence. Every call except
// ListAll is scoped to the owning user.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, userID, id string) (*domain.Product, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Product, error)
	Update(ctx context.Context, userID, id string, patch domain.ProductPatch) error
	Delete(ctx context.Context, userID, id string) error
	// AddTag appends tag unless present, reporting whether the row changed.
	AddTag(ctx context.Context, userID, id, tag string) (bool, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates the Postgres repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, user_id, name, category, purpose, price, currency, status,
        purchase_date, expected_lifespan, notes, reason_to_buy, tags, created_at, updated_at`

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (id, user_id, name, category, purpose, price, currency, status,
            purchase_date, expected_lifespan, notes, reason_to_buy, tags)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		product.ID,
		product.UserID,
		product.Name,
		product.Category,
		product.Purpose,
		product.Price,
		product.Currency,
		product.Status,
		product.PurchaseDate,
		product.ExpectedLifespanYears,
		product.Notes,
		product.ReasonToBuy,
		product.Tags,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) GetByID(ctx context.Context, userID, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id=$1 AND user_id=$2`
	rows, err := r.pool.Query(ctx, query, id, userID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	products, err := scanProducts(rows)
	if err != nil {
		return nil, mapPgError(err)
	}
	if len(products) == 0 {
		return nil, ErrNotFound
	}
	return &products[0], nil
}

func (r *productRepository) ListByUser(ctx context.Context, userID string) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepository) Update(ctx context.Context, userID, id string, patch domain.ProductPatch) error {
	sets := []string{}
	args := []any{}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Purpose != nil {
		set("purpose", *patch.Purpose)
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.Currency != nil {
		set("currency", *patch.Currency)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.PurchaseDate != nil {
		set("purchase_date", *patch.PurchaseDate)
	}
	if patch.ExpectedLifespanYears != nil {
		set("expected_lifespan", *patch.ExpectedLifespanYears)
	}
	if patch.Notes != nil {
		set("notes", *patch.Notes)
	}
	if patch.ReasonToBuy != nil {
		set("reason_to_buy", *patch.ReasonToBuy)
	}
	if patch.Tags != nil {
		set("tags", domain.NormalizeTags(patch.Tags))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at=NOW()")

	args = append(args, id, userID)
	query := fmt.Sprintf(`UPDATE products SET %s WHERE id=$%d AND user_id=$%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, userID, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) AddTag(ctx context.Context, userID, id, tag string) (bool, error) {
	const query = `
        UPDATE products SET tags = array_append(tags, $1::text), updated_at = NOW()
        WHERE id=$2 AND user_id=$3 AND NOT ($1::text = ANY(tags))`
	cmd, err := r.pool.Exec(ctx, query, tag, id, userID)
	if err != nil {
		return false, mapPgError(err)
	}
	if cmd.RowsAffected() > 0 {
		return true, nil
	}
	if _, err := r.GetByID(ctx, userID, id); err != nil {
		return false, err
	}
	return false, nil
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Name,
			&p.Category,
			&p.Purpose,
			&p.Price,
			&p.Currency,
			&p.Status,
			&p.PurchaseDate,
			&p.ExpectedLifespanYears,
			&p.Notes,
			&p.ReasonToBuy,
			&p.Tags,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, mapPgError(err)
		}
		result = append(result, p)
	}
	return result, mapPgError(rows.Err())
}
