package order

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/justasSav/eeps/internal/domain"
	orderrepo "github.com/justasSav/eeps/internal/repository/order"
)

// Service owns order submission and the status workflow. All status mutation
// funnels through it so every transition is persisted and published.
type Service struct {
	repo   orderRepo
	bus    statusPublisher
	logger *log.Logger
}

type orderRepo interface {
	Create(ctx context.Context, o *domain.Order) (orderrepo.SyncOutcome, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListByStatus(ctx context.Context, statuses []domain.OrderStatus) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	SetStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) (orderrepo.SyncOutcome, error)
}

type statusPublisher interface {
	PublishStatus(orderID string, status domain.OrderStatus, updatedAt time.Time)
}

func New(repo orderrepo.Repository, bus statusPublisher, logger *log.Logger) *Service {
	return &Service{repo: repo, bus: bus, logger: logger}
}

// SubmitInput mirrors the checkout payload: the cart contents plus the
// fulfillment context captured on the form.
type SubmitInput struct {
	UserID          string
	Items           []domain.CartItem
	FulfillmentType domain.FulfillmentType
	DeliveryAddress *domain.DeliveryAddress
	ContactPhone    string
	Notes           string
	TotalAmount     int64
}

// Submit validates the input, snapshots the cart into an immutable order and
// persists it. The returned order is immediately retrievable by its id even
// when only the local store accepted the write.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "cart is empty")
	}
	if strings.TrimSpace(in.ContactPhone) == "" {
		return nil, domain.NewValidationError("contact_phone", "contact phone is required")
	}
	if in.FulfillmentType == domain.FulfillmentDelivery {
		if in.DeliveryAddress == nil || strings.TrimSpace(in.DeliveryAddress.Street) == "" {
			return nil, domain.NewValidationError("delivery_address.street", "street address is required for delivery")
		}
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	var total int64
	for _, line := range in.Items {
		items = append(items, domain.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			BasePrice:   line.BasePrice,
			Modifiers:   line.Modifiers.Clone(),
			ItemTotal:   line.ItemTotal,
		})
		total += line.ItemTotal
	}
	if in.TotalAmount != 0 && in.TotalAmount != total {
		return nil, domain.NewValidationError("total_amount", "does not match the sum of item totals")
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		FulfillmentType: in.FulfillmentType,
		Status:          domain.StatusCreated,
		DeliveryAddress: copyAddress(in.DeliveryAddress),
		ContactPhone:    strings.TrimSpace(in.ContactPhone),
		Items:           items,
		TotalAmount:     total,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if order.FulfillmentType == "" {
		order.FulfillmentType = domain.FulfillmentPickup
	}

	outcome, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	if outcome == orderrepo.AppliedLocal {
		s.logger.Printf("order %s stored locally only, remote sync pending", order.ID)
	}
	return order, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// Advance moves the order one step along the forward chain. Terminal orders
// and COMPLETED stay untouched; the call is a no-op then, not an error.
func (s *Service) Advance(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, ok := o.Status.Next()
	if !ok {
		return o, nil
	}
	return s.applyStatus(ctx, o, next)
}

// Cancel transitions any non-terminal order to CANCELLED. Cancelling twice
// leaves it cancelled.
func (s *Service) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return o, nil
	}
	return s.applyStatus(ctx, o, domain.StatusCancelled)
}

// SetStatus applies an externally-delivered status value directly. The
// forward chain governs the staff advance action only; out-of-band updates
// are accepted as long as the value is one of the six known statuses.
func (s *Service) SetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "unknown order status")
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.applyStatus(ctx, o, status)
}

// GetActive returns all non-terminal orders, oldest first, so staff process
// them FIFO.
func (s *Service) GetActive(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.ListByStatus(ctx, domain.ActiveStatuses())
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders, nil
}

// GetHistory returns the user's orders regardless of status, newest first.
func (s *Service) GetHistory(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(orders)
	return orders, nil
}

// ListAll returns every order, newest first, for the staff dashboard's full
// view.
func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(orders)
	return orders, nil
}

func (s *Service) applyStatus(ctx context.Context, o *domain.Order, status domain.OrderStatus) (*domain.Order, error) {
	now := time.Now().UTC()
	outcome, err := s.repo.SetStatus(ctx, o.ID, status, now)
	if err != nil {
		return nil, err
	}
	if outcome == orderrepo.AppliedLocal {
		s.logger.Printf("status %s for order %s applied locally, remote sync failed or skipped", status, o.ID)
	}

	updated := *o
	updated.Status = status
	updated.UpdatedAt = now
	if s.bus != nil {
		s.bus.PublishStatus(updated.ID, status, now)
	}
	return &updated, nil
}

func copyAddress(a *domain.DeliveryAddress) *domain.DeliveryAddress {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

func sortNewestFirst(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
