package menu

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justasSav/eeps/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const q = `
SELECT id, name, sort_order
FROM categories
ORDER BY sort_order ASC, name ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, domain.NewRemoteUnavailable("list categories", err)
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.SortOrder); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRemoteUnavailable("list categories", err)
	}
	return result, nil
}

func (r *postgresRepo) ListAvailableProducts(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT id, category_id, name, description, base_price, image_url, is_available, dietary_tags, sort_order
FROM products
WHERE is_available
ORDER BY sort_order ASC, name ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, domain.NewRemoteUnavailable("list products", err)
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRemoteUnavailable("list products", err)
	}
	return result, nil
}

func (r *postgresRepo) ListModifierGroups(ctx context.Context, productID string) ([]domain.ModifierGroup, error) {
	const q = `
SELECT id, name, min_required, max_allowed
FROM modifier_groups
WHERE product_id = $1
ORDER BY sort_order ASC
`
	rows, err := r.pool.Query(ctx, q, productID)
	if err != nil {
		return nil, domain.NewRemoteUnavailable("list modifier groups", err)
	}
	defer rows.Close()

	var result []domain.ModifierGroup
	for rows.Next() {
		var g domain.ModifierGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.MinRequired, &g.MaxAllowed); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRemoteUnavailable("list modifier groups", err)
	}
	return result, nil
}

func (r *postgresRepo) ListModifierOptions(ctx context.Context, groupID string) ([]domain.ModifierOption, error) {
	const q = `
SELECT id, name, price_mod
FROM modifier_options
WHERE group_id = $1
ORDER BY sort_order ASC
`
	rows, err := r.pool.Query(ctx, q, groupID)
	if err != nil {
		return nil, domain.NewRemoteUnavailable("list modifier options", err)
	}
	defer rows.Close()

	var result []domain.ModifierOption
	for rows.Next() {
		var o domain.ModifierOption
		if err := rows.Scan(&o.ID, &o.Name, &o.PriceMod); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRemoteUnavailable("list modifier options", err)
	}
	return result, nil
}

func (r *postgresRepo) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT id, category_id, name, description, base_price, image_url, is_available, dietary_tags, sort_order
FROM products
WHERE id = $1
`
	row := r.pool.QueryRow(ctx, q, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewRemoteUnavailable("get product", err)
	}
	return &p, nil
}

func (r *postgresRepo) UpsertCategory(ctx context.Context, c domain.Category) error {
	const q = `
INSERT INTO categories (id, name, sort_order)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    sort_order = EXCLUDED.sort_order
`
	_, err := r.pool.Exec(ctx, q, c.ID, c.Name, c.SortOrder)
	return err
}

func (r *postgresRepo) UpsertProduct(ctx context.Context, p domain.Product) error {
	const q = `
INSERT INTO products (id, category_id, name, description, base_price, image_url, is_available, dietary_tags, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE
SET category_id = EXCLUDED.category_id,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    base_price = EXCLUDED.base_price,
    image_url = EXCLUDED.image_url,
    is_available = EXCLUDED.is_available,
    dietary_tags = EXCLUDED.dietary_tags,
    sort_order = EXCLUDED.sort_order
`
	tags := p.DietaryTags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.pool.Exec(ctx, q, p.ID, p.CategoryID, p.Name, p.Description, p.BasePrice, p.ImageURL, p.IsAvailable, tags, p.SortOrder)
	return err
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.CategoryID,
		&p.Name,
		&p.Description,
		&p.BasePrice,
		&p.ImageURL,
		&p.IsAvailable,
		&p.DietaryTags,
		&p.SortOrder,
	)
	if err != nil {
		return domain.Product{}, err
	}
	if p.DietaryTags == nil {
		p.DietaryTags = []string{}
	}
	return p, nil
}
