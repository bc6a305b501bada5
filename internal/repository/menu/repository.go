package menu

import (
	"context"

	"github.com/justasSav/eeps/internal/domain"
)

// Repository is the read interface onto the catalog store, plus the upserts
// the seed and importer tooling need. Reads return flat rows; nesting is the
// menu service's job.
type Repository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListAvailableProducts(ctx context.Context) ([]domain.Product, error)
	ListModifierGroups(ctx context.Context, productID string) ([]domain.ModifierGroup, error)
	ListModifierOptions(ctx context.Context, groupID string) ([]domain.ModifierOption, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	UpsertCategory(ctx context.Context, c domain.Category) error
	UpsertProduct(ctx context.Context, p domain.Product) error
}
