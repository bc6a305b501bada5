package menu

import (
	"context"

	"github.com/justasSav/eeps/internal/domain"
	menurepo "github.com/justasSav/eeps/internal/repository/menu"
)

// Service assembles the nested menu projection: categories in sort order,
// available products only, each product carrying its modifier groups and
// options in display order. Read path only.
type Service struct {
	repo menuRepo
}

type menuRepo interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListAvailableProducts(ctx context.Context) ([]domain.Product, error)
	ListModifierGroups(ctx context.Context, productID string) ([]domain.ModifierGroup, error)
	ListModifierOptions(ctx context.Context, groupID string) ([]domain.ModifierOption, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo menurepo.Repository) *Service {
	return &Service{repo: repo}
}

// GetMenu returns a point-in-time snapshot of the catalog. An error means
// "failed to load", which callers must keep distinct from an empty catalog.
func (s *Service) GetMenu(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ListAvailableProducts(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]domain.Product, len(categories))
	for _, p := range products {
		if err := s.attachModifiers(ctx, &p); err != nil {
			return nil, err
		}
		byCategory[p.CategoryID] = append(byCategory[p.CategoryID], p)
	}

	for i := range categories {
		prods := byCategory[categories[i].ID]
		if prods == nil {
			prods = []domain.Product{}
		}
		categories[i].Products = prods
	}
	return categories, nil
}

// GetProduct loads one product with its modifier groups, regardless of
// availability; callers decide whether unavailable products are sellable.
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachModifiers(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) attachModifiers(ctx context.Context, p *domain.Product) error {
	groups, err := s.repo.ListModifierGroups(ctx, p.ID)
	if err != nil {
		return err
	}
	for i := range groups {
		options, err := s.repo.ListModifierOptions(ctx, groups[i].ID)
		if err != nil {
			return err
		}
		if options == nil {
			options = []domain.ModifierOption{}
		}
		groups[i].Options = options
	}
	p.ModifierGroups = groups
	return nil
}
