package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justasSav/eeps/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres returns the remote system-of-record implementation.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, o *domain.Order) (SyncOutcome, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", domain.NewRemoteUnavailable("create order", err)
	}
	defer tx.Rollback(ctx)

	var addr interface{}
	if o.DeliveryAddress != nil {
		data, err := json.Marshal(o.DeliveryAddress)
		if err != nil {
			return "", fmt.Errorf("encode delivery address: %w", err)
		}
		addr = data
	}

	const orderQ = `
INSERT INTO orders (id, user_id, fulfillment_type, status, delivery_address, contact_phone, notes, total_amount, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	if _, err := tx.Exec(ctx, orderQ,
		o.ID, o.UserID, string(o.FulfillmentType), string(o.Status), addr,
		o.ContactPhone, o.Notes, o.TotalAmount, o.CreatedAt, o.UpdatedAt,
	); err != nil {
		return "", domain.NewRemoteUnavailable("create order", err)
	}

	const itemQ = `
INSERT INTO order_items (order_id, position, product_id, product_name, quantity, base_price, modifiers, item_total)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	for i, item := range o.Items {
		mods, err := json.Marshal(item.Modifiers)
		if err != nil {
			return "", fmt.Errorf("encode modifiers: %w", err)
		}
		if _, err := tx.Exec(ctx, itemQ,
			o.ID, i, item.ProductID, item.ProductName, item.Quantity, item.BasePrice, mods, item.ItemTotal,
		); err != nil {
			return "", domain.NewRemoteUnavailable("create order items", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", domain.NewRemoteUnavailable("create order", err)
	}
	return SyncedRemote, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = orderColumns + `
FROM orders
WHERE id = $1
`
	row := r.pool.QueryRow(ctx, q, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewRemoteUnavailable("get order", err)
	}
	if err := r.attachItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	const q = orderColumns + `
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`
	return r.fetchOrders(ctx, q, userID)
}

func (r *postgresRepo) ListByStatus(ctx context.Context, statuses []domain.OrderStatus) ([]domain.Order, error) {
	vals := make([]string, 0, len(statuses))
	for _, s := range statuses {
		vals = append(vals, string(s))
	}
	const q = orderColumns + `
FROM orders
WHERE status = ANY($1)
ORDER BY created_at ASC
`
	return r.fetchOrders(ctx, q, vals)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	const q = orderColumns + `
FROM orders
ORDER BY created_at DESC
`
	return r.fetchOrders(ctx, q)
}

func (r *postgresRepo) SetStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) (SyncOutcome, error) {
	const q = `
UPDATE orders
SET status = $1, updated_at = $2
WHERE id = $3
`
	cmd, err := r.pool.Exec(ctx, q, string(status), updatedAt, id)
	if err != nil {
		return "", domain.NewRemoteUnavailable("set order status", err)
	}
	if cmd.RowsAffected() == 0 {
		return "", domain.ErrNotFound
	}
	return SyncedRemote, nil
}

const orderColumns = `
SELECT id::text, user_id, fulfillment_type, status, delivery_address, contact_phone, notes, total_amount, created_at, updated_at`

func (r *postgresRepo) fetchOrders(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.NewRemoteUnavailable("list orders", err)
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRemoteUnavailable("list orders", err)
	}

	for i := range result {
		if err := r.attachItems(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *postgresRepo) attachItems(ctx context.Context, o *domain.Order) error {
	const q = `
SELECT product_id, product_name, quantity, base_price, modifiers, item_total
FROM order_items
WHERE order_id = $1
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, q, o.ID)
	if err != nil {
		return domain.NewRemoteUnavailable("list order items", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		var mods []byte
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.BasePrice, &mods, &item.ItemTotal); err != nil {
			return err
		}
		if len(mods) > 0 {
			if err := json.Unmarshal(mods, &item.Modifiers); err != nil {
				return fmt.Errorf("decode modifiers for order %s: %w", o.ID, err)
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.NewRemoteUnavailable("list order items", err)
	}
	o.Items = items
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var fulfillment, status string
	var addr []byte
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&fulfillment,
		&status,
		&addr,
		&o.ContactPhone,
		&o.Notes,
		&o.TotalAmount,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.FulfillmentType = domain.FulfillmentType(fulfillment)
	o.Status = domain.OrderStatus(status)
	if len(addr) > 0 {
		var da domain.DeliveryAddress
		if err := json.Unmarshal(addr, &da); err != nil {
			return nil, fmt.Errorf("decode delivery address for order %s: %w", o.ID, err)
		}
		o.DeliveryAddress = &da
	}
	return &o, nil
}
