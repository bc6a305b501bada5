package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type categorySeed struct {
	ID        string
	Name      string
	SortOrder int
}

type productSeed struct {
	ID          string
	CategoryID  string
	Name        string
	Description string
	BasePrice   int64
	DietaryTags []string
	SortOrder   int
	Groups      []groupSeed
}

type groupSeed struct {
	ID          string
	Name        string
	MinRequired int
	MaxAllowed  int
	Options     []optionSeed
}

type optionSeed struct {
	ID       string
	Name     string
	PriceMod int64
}

// Apply inserts a demo menu for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	categories := []categorySeed{
		{ID: "pizza", Name: "Pizza", SortOrder: 1},
		{ID: "kebab", Name: "Kebab", SortOrder: 2},
		{ID: "drinks", Name: "Drinks", SortOrder: 3},
	}

	sizeGroup := groupSeed{
		ID: "size", Name: "Size", MinRequired: 1, MaxAllowed: 1,
		Options: []optionSeed{
			{ID: "size-medium", Name: "Medium", PriceMod: 0},
			{ID: "size-large", Name: "Large", PriceMod: 300},
		},
	}
	toppingsGroup := groupSeed{
		ID: "toppings", Name: "Extra toppings", MinRequired: 0, MaxAllowed: 4,
		Options: []optionSeed{
			{ID: "topping-cheese", Name: "Cheese", PriceMod: 150},
			{ID: "topping-olives", Name: "Olives", PriceMod: 100},
			{ID: "topping-mushrooms", Name: "Mushrooms", PriceMod: 120},
			{ID: "topping-ham", Name: "Ham", PriceMod: 200},
		},
	}

	products := []productSeed{
		{
			ID: "margarita", CategoryID: "pizza", Name: "Margarita",
			Description: "Tomato sauce, mozzarella, basil",
			BasePrice:   800, DietaryTags: []string{"vegetarian"}, SortOrder: 1,
			Groups: []groupSeed{forProduct(sizeGroup, "margarita"), forProduct(toppingsGroup, "margarita")},
		},
		{
			ID: "pepperoni", CategoryID: "pizza", Name: "Pepperoni",
			Description: "Tomato sauce, mozzarella, pepperoni",
			BasePrice:   950, SortOrder: 2,
			Groups: []groupSeed{forProduct(sizeGroup, "pepperoni"), forProduct(toppingsGroup, "pepperoni")},
		},
		{
			ID: "chicken-kebab", CategoryID: "kebab", Name: "Chicken kebab",
			Description: "Grilled chicken, fresh vegetables, garlic sauce",
			BasePrice:   650, SortOrder: 1,
			Groups: []groupSeed{
				{
					ID: "sauce-chicken-kebab", Name: "Sauce", MinRequired: 1, MaxAllowed: 1,
					Options: []optionSeed{
						{ID: "sauce-garlic-chicken-kebab", Name: "Garlic", PriceMod: 0},
						{ID: "sauce-spicy-chicken-kebab", Name: "Spicy", PriceMod: 0},
						{ID: "sauce-mixed-chicken-kebab", Name: "Mixed", PriceMod: 50},
					},
				},
			},
		},
		{
			ID: "cola", CategoryID: "drinks", Name: "Cola 0.5l",
			BasePrice: 250, DietaryTags: []string{"vegan"}, SortOrder: 1,
		},
	}

	for _, c := range categories {
		if err := upsertCategory(ctx, pool, c); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.ID, err)
		}
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}
	return nil
}

// forProduct clones a shared group template for one product, keeping row ids
// unique across products.
func forProduct(g groupSeed, productID string) groupSeed {
	cp := g
	cp.ID = g.ID + "-" + productID
	cp.Options = make([]optionSeed, len(g.Options))
	for i, o := range g.Options {
		cp.Options[i] = o
		cp.Options[i].ID = o.ID + "-" + productID
	}
	return cp
}

func upsertCategory(ctx context.Context, pool *pgxpool.Pool, c categorySeed) error {
	const q = `
INSERT INTO categories (id, name, sort_order)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, sort_order = EXCLUDED.sort_order
`
	_, err := pool.Exec(ctx, q, c.ID, c.Name, c.SortOrder)
	return err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (id, category_id, name, description, base_price, is_available, dietary_tags, sort_order)
VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    category_id = EXCLUDED.category_id,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    base_price = EXCLUDED.base_price,
    dietary_tags = EXCLUDED.dietary_tags,
    sort_order = EXCLUDED.sort_order
`
	tags := p.DietaryTags
	if tags == nil {
		tags = []string{}
	}
	if _, err := pool.Exec(ctx, q, p.ID, p.CategoryID, p.Name, p.Description, p.BasePrice, tags, p.SortOrder); err != nil {
		return err
	}

	const gq = `
INSERT INTO modifier_groups (id, product_id, name, min_required, max_allowed, sort_order)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    min_required = EXCLUDED.min_required,
    max_allowed = EXCLUDED.max_allowed,
    sort_order = EXCLUDED.sort_order
`
	const oq = `
INSERT INTO modifier_options (id, group_id, name, price_mod, sort_order)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    price_mod = EXCLUDED.price_mod,
    sort_order = EXCLUDED.sort_order
`
	for gi, g := range p.Groups {
		if _, err := pool.Exec(ctx, gq, g.ID, p.ID, g.Name, g.MinRequired, g.MaxAllowed, gi+1); err != nil {
			return fmt.Errorf("group %s: %w", g.ID, err)
		}
		for oi, o := range g.Options {
			if _, err := pool.Exec(ctx, oq, o.ID, g.ID, o.Name, o.PriceMod, oi+1); err != nil {
				return fmt.Errorf("option %s: %w", o.ID, err)
			}
		}
	}
	return nil
}
