package order

import (
	"context"
	"time"

	"github.com/justasSav/eeps/internal/domain"
)

// SyncOutcome tells the caller which backing store actually holds a write:
// synced to the remote system of record, or applied to the local store only.
// The distinction is observability, not an error.
type SyncOutcome string

const (
	SyncedRemote SyncOutcome = "remote"
	AppliedLocal SyncOutcome = "local"
)

// Repository is the storage port orders are persisted through. One
// implementation is chosen at startup (postgres, local, or hybrid); domain
// logic never knows which.
//
// List ordering contract: ListByStatus returns oldest-created-first (staff
// work FIFO); ListByUser and ListAll return newest-created-first.
type Repository interface {
	Create(ctx context.Context, o *domain.Order) (SyncOutcome, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListByStatus(ctx context.Context, statuses []domain.OrderStatus) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	SetStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) (SyncOutcome, error)
}
