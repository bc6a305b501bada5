package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/justasSav/eeps/internal/domain"
)

const keyPrefix = "cart:"

// cartTTL keeps abandoned carts from accumulating; every save refreshes it,
// so an active session never expires mid-browse.
const cartTTL = 24 * time.Hour

type redisRepo struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) Repository {
	return &redisRepo{rdb: rdb}
}

func (r *redisRepo) Get(ctx context.Context, sessionID string) (domain.Cart, error) {
	val, err := r.rdb.Get(ctx, keyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.NewCart(), nil
		}
		return domain.Cart{}, domain.NewRemoteUnavailable("cart read", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(val), &cart); err != nil {
		return domain.Cart{}, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return cart, nil
}

func (r *redisRepo) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", sessionID, err)
	}
	if err := r.rdb.Set(ctx, keyPrefix+sessionID, data, cartTTL).Err(); err != nil {
		return domain.NewRemoteUnavailable("cart save", err)
	}
	return nil
}

func (r *redisRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return domain.NewRemoteUnavailable("cart delete", err)
	}
	return nil
}
