package cart

import (
	"context"
	"strings"

	"github.com/justasSav/eeps/internal/domain"
	"github.com/justasSav/eeps/internal/pricing"
	cartrepo "github.com/justasSav/eeps/internal/repository/cart"
)

// Service owns all cart mutation. Every operation loads the session's cart,
// applies the change in memory and writes the full state back, so the
// persisted copy always mirrors what the caller saw.
type Service struct {
	repo cartRepo
}

type cartRepo interface {
	Get(ctx context.Context, sessionID string) (domain.Cart, error)
	Save(ctx context.Context, sessionID string, cart domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

func New(repo cartrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Key derives the canonical line-item key for a product + modifier
// configuration. Equivalent selections always map to the same key.
func Key(productID string, selections domain.Selections) string {
	canonical := selections.Canonical()
	if canonical == "" {
		return productID
	}
	return productID + "|" + canonical
}

func (s *Service) Get(ctx context.Context, sessionID string) (domain.Cart, error) {
	return s.repo.Get(ctx, sessionID)
}

// AddItem merges the configuration into the cart: an existing line with the
// same key gains quantity 1, otherwise a new line is appended.
func (s *Service) AddItem(ctx context.Context, sessionID string, product domain.Product, selections domain.Selections) (domain.Cart, error) {
	if !product.IsAvailable {
		return domain.Cart{}, domain.NewValidationError("product_id", "product is not available")
	}
	if err := pricing.ValidateSelections(product, selections); err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	key := Key(product.ID, selections)
	merged := false
	for i := range cart.Items {
		if cart.Items[i].CartKey == key {
			cart.Items[i].Quantity++
			cart.Items[i].ItemTotal = pricing.LineTotal(cart.Items[i].UnitPrice, cart.Items[i].Quantity)
			merged = true
			break
		}
	}
	if !merged {
		unit := pricing.ResolveUnitPrice(product, selections)
		cart.Items = append(cart.Items, domain.CartItem{
			CartKey:     key,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    1,
			BasePrice:   product.BasePrice,
			UnitPrice:   unit,
			Modifiers:   selections.Clone(),
			ItemTotal:   unit,
		})
	}

	if err := s.repo.Save(ctx, sessionID, cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// UpdateQuantity sets the line's quantity; zero or negative removes it. An
// unknown key is a no-op, not an error.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, cartKey string, quantity int) (domain.Cart, error) {
	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].CartKey == cartKey {
			idx = i
			break
		}
	}
	if idx < 0 {
		return cart, nil
	}

	if quantity <= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = quantity
		cart.Items[idx].ItemTotal = pricing.LineTotal(cart.Items[idx].UnitPrice, quantity)
	}

	if err := s.repo.Save(ctx, sessionID, cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, cartKey string) (domain.Cart, error) {
	return s.UpdateQuantity(ctx, sessionID, cartKey, 0)
}

// Clear empties the cart and resets the fulfillment context, dropping the
// persisted slot entirely.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.repo.Delete(ctx, sessionID)
}

// CheckoutInfo carries the in-progress fulfillment context set from the
// checkout form.
type CheckoutInfo struct {
	FulfillmentType domain.FulfillmentType  `json:"fulfillment_type"`
	DeliveryAddress *domain.DeliveryAddress `json:"delivery_address"`
	ContactPhone    string                  `json:"contact_phone"`
	Notes           string                  `json:"notes"`
}

func (s *Service) SetCheckoutInfo(ctx context.Context, sessionID string, in CheckoutInfo) (domain.Cart, error) {
	switch in.FulfillmentType {
	case domain.FulfillmentPickup, domain.FulfillmentDelivery:
	default:
		return domain.Cart{}, domain.NewValidationError("fulfillment_type", "must be pickup or delivery")
	}

	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart.FulfillmentType = in.FulfillmentType
	if in.FulfillmentType == domain.FulfillmentDelivery {
		cart.DeliveryAddress = in.DeliveryAddress
	} else {
		cart.DeliveryAddress = nil
	}
	cart.ContactPhone = strings.TrimSpace(in.ContactPhone)
	cart.Notes = in.Notes

	if err := s.repo.Save(ctx, sessionID, cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}
