package order

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/justasSav/eeps/internal/domain"
)

// hybridRepo keeps the remote store as the system of record while mirroring
// every order into the local store, so submission and status updates keep
// working when the remote side is down. Status writes are optimistic: local
// first, remote best-effort.
type hybridRepo struct {
	remote Repository
	local  Repository
	logger *log.Logger
}

func NewHybrid(remote, local Repository, logger *log.Logger) Repository {
	return &hybridRepo{remote: remote, local: local, logger: logger}
}

func (r *hybridRepo) Create(ctx context.Context, o *domain.Order) (SyncOutcome, error) {
	if _, err := r.remote.Create(ctx, o); err != nil {
		r.logger.Printf("remote create failed for order %s, keeping local copy: %v", o.ID, err)
		if _, lerr := r.local.Create(ctx, o); lerr != nil {
			return "", lerr
		}
		return AppliedLocal, nil
	}
	if _, err := r.local.Create(ctx, o); err != nil {
		r.logger.Printf("local mirror failed for order %s: %v", o.ID, err)
	}
	return SyncedRemote, nil
}

func (r *hybridRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := r.remote.GetByID(ctx, id)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		r.logger.Printf("remote get failed for order %s, trying local: %v", id, err)
	}
	return r.local.GetByID(ctx, id)
}

func (r *hybridRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := r.remote.ListByUser(ctx, userID)
	if err != nil {
		r.logger.Printf("remote list by user failed, serving local: %v", err)
		return r.local.ListByUser(ctx, userID)
	}
	return orders, nil
}

func (r *hybridRepo) ListByStatus(ctx context.Context, statuses []domain.OrderStatus) ([]domain.Order, error) {
	orders, err := r.remote.ListByStatus(ctx, statuses)
	if err != nil {
		r.logger.Printf("remote list by status failed, serving local: %v", err)
		return r.local.ListByStatus(ctx, statuses)
	}
	return orders, nil
}

func (r *hybridRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	orders, err := r.remote.ListAll(ctx)
	if err != nil {
		r.logger.Printf("remote list all failed, serving local: %v", err)
		return r.local.ListAll(ctx)
	}
	return orders, nil
}

func (r *hybridRepo) SetStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) (SyncOutcome, error) {
	_, localErr := r.local.SetStatus(ctx, id, status, updatedAt)
	if localErr != nil && !errors.Is(localErr, domain.ErrNotFound) {
		return "", localErr
	}

	if _, err := r.remote.SetStatus(ctx, id, status, updatedAt); err != nil {
		if errors.Is(localErr, domain.ErrNotFound) {
			// Neither store knows the order.
			if errors.Is(err, domain.ErrNotFound) {
				return "", domain.ErrNotFound
			}
			return "", err
		}
		r.logger.Printf("remote status sync failed for order %s -> %s: %v", id, status, err)
		return AppliedLocal, nil
	}
	return SyncedRemote, nil
}

// Close releases the local store's file handle when it holds one.
func (r *hybridRepo) Close() error {
	if closer, ok := r.local.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
