package cart

import (
	"context"

	"github.com/justasSav/eeps/internal/domain"
)

// Repository is the durable slot a session's cart round-trips through. A
// missing slot reads back as a fresh empty cart.
type Repository interface {
	Get(ctx context.Context, sessionID string) (domain.Cart, error)
	Save(ctx context.Context, sessionID string, cart domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}
