package order

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/justasSav/eeps/internal/domain"
)

var ordersBucket = []byte("orders")

// storedOrder re-attaches the user id, which the domain struct hides from
// API responses.
type storedOrder struct {
	UserID string `json:"user_id"`
	domain.Order
}

func encodeOrder(o *domain.Order) ([]byte, error) {
	return json.Marshal(storedOrder{UserID: o.UserID, Order: *o})
}

func decodeOrder(raw []byte) (domain.Order, error) {
	var s storedOrder
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.Order{}, err
	}
	o := s.Order
	o.UserID = s.UserID
	return o, nil
}

type boltRepo struct {
	db *bolt.DB
}

// NewBolt opens (or creates) the local-first order store at path. Orders are
// stored as JSON values keyed by order id.
func NewBolt(path string) (Repository, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open local order store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(ordersBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init local order store: %w", err)
	}
	return &boltRepo{db: db}, nil
}

func (r *boltRepo) Create(_ context.Context, o *domain.Order) (SyncOutcome, error) {
	data, err := encodeOrder(o)
	if err != nil {
		return "", fmt.Errorf("encode order %s: %w", o.ID, err)
	}
	err = r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(ordersBucket).Put([]byte(o.ID), data)
	})
	if err != nil {
		return "", err
	}
	return AppliedLocal, nil
}

func (r *boltRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	var o *domain.Order
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(ordersBucket).Get([]byte(id))
		if raw == nil {
			return domain.ErrNotFound
		}
		decoded, err := decodeOrder(raw)
		if err != nil {
			return fmt.Errorf("decode order %s: %w", id, err)
		}
		o = &decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *boltRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	orders, err := r.scan(func(o domain.Order) bool { return o.UserID == userID })
	if err != nil {
		return nil, err
	}
	sortNewestFirst(orders)
	return orders, nil
}

func (r *boltRepo) ListByStatus(_ context.Context, statuses []domain.OrderStatus) ([]domain.Order, error) {
	want := make(map[domain.OrderStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	orders, err := r.scan(func(o domain.Order) bool { return want[o.Status] })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *boltRepo) ListAll(_ context.Context) ([]domain.Order, error) {
	orders, err := r.scan(func(domain.Order) bool { return true })
	if err != nil {
		return nil, err
	}
	sortNewestFirst(orders)
	return orders, nil
}

func (r *boltRepo) SetStatus(_ context.Context, id string, status domain.OrderStatus, updatedAt time.Time) (SyncOutcome, error) {
	err := r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(ordersBucket)
		raw := bucket.Get([]byte(id))
		if raw == nil {
			return domain.ErrNotFound
		}
		o, err := decodeOrder(raw)
		if err != nil {
			return fmt.Errorf("decode order %s: %w", id, err)
		}
		o.Status = status
		o.UpdatedAt = updatedAt
		data, err := encodeOrder(&o)
		if err != nil {
			return fmt.Errorf("encode order %s: %w", id, err)
		}
		return bucket.Put([]byte(id), data)
	})
	if err != nil {
		return "", err
	}
	return AppliedLocal, nil
}

// Close releases the underlying bolt file.
func (r *boltRepo) Close() error {
	return r.db.Close()
}

func (r *boltRepo) scan(keep func(domain.Order) bool) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(ordersBucket).ForEach(func(k, v []byte) error {
			o, err := decodeOrder(v)
			if err != nil {
				return fmt.Errorf("decode order %s: %w", string(k), err)
			}
			if keep(o) {
				orders = append(orders, o)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func sortNewestFirst(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
