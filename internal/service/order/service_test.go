package order

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/justasSav/eeps/internal/domain"
	orderrepo "github.com/justasSav/eeps/internal/repository/order"
)

type stubStore struct {
	orders    map[string]*domain.Order
	createErr error
	setErr    error
}

func newStubStore() *stubStore {
	return &stubStore{orders: map[string]*domain.Order{}}
}

func (s *stubStore) Create(_ context.Context, o *domain.Order) (orderrepo.SyncOutcome, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	cp := *o
	s.orders[o.ID] = &cp
	return orderrepo.SyncedRemote, nil
}

func (s *stubStore) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubStore) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubStore) ListByStatus(_ context.Context, statuses []domain.OrderStatus) ([]domain.Order, error) {
	want := map[domain.OrderStatus]bool{}
	for _, st := range statuses {
		want[st] = true
	}
	var out []domain.Order
	for _, o := range s.orders {
		if want[o.Status] {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubStore) ListAll(_ context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *stubStore) SetStatus(_ context.Context, id string, status domain.OrderStatus, updatedAt time.Time) (orderrepo.SyncOutcome, error) {
	if s.setErr != nil {
		return "", s.setErr
	}
	o, ok := s.orders[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	return orderrepo.SyncedRemote, nil
}

type recordingBus struct {
	events []domain.OrderStatus
}

func (b *recordingBus) PublishStatus(_ string, status domain.OrderStatus, _ time.Time) {
	b.events = append(b.events, status)
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newService(store *stubStore, bus *recordingBus) *Service {
	return &Service{repo: store, bus: bus, logger: discardLogger()}
}

func pickupInput() SubmitInput {
	return SubmitInput{
		UserID: "session-1",
		Items: []domain.CartItem{
			{
				CartKey:     "margarita",
				ProductID:   "margarita",
				ProductName: "Margarita",
				Quantity:    2,
				BasePrice:   800,
				UnitPrice:   800,
				Modifiers:   domain.Selections{},
				ItemTotal:   1600,
			},
		},
		FulfillmentType: domain.FulfillmentPickup,
		ContactPhone:    "+37060000000",
	}
}

func TestSubmitAndAdvanceToCompletion(t *testing.T) {
	store := newStubStore()
	bus := &recordingBus{}
	svc := newService(store, bus)
	ctx := context.Background()

	o, err := svc.Submit(ctx, pickupInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if o.ID == "" {
		t.Fatal("expected a non-empty order id")
	}
	if o.Status != domain.StatusCreated {
		t.Fatalf("status = %s, want %s", o.Status, domain.StatusCreated)
	}
	if o.TotalAmount != 1600 {
		t.Fatalf("total = %d, want 1600", o.TotalAmount)
	}

	got, err := svc.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("Get right after Submit: %v", err)
	}
	if got.TotalAmount != 1600 || len(got.Items) != 1 {
		t.Fatalf("stored order = %+v", got)
	}

	want := []domain.OrderStatus{
		domain.StatusAccepted,
		domain.StatusPreparing,
		domain.StatusReady,
		domain.StatusCompleted,
	}
	for _, st := range want {
		o, err = svc.Advance(ctx, o.ID)
		if err != nil {
			t.Fatalf("Advance to %s: %v", st, err)
		}
		if o.Status != st {
			t.Fatalf("status = %s, want %s", o.Status, st)
		}
	}

	// COMPLETED is terminal; a further advance changes nothing.
	o, err = svc.Advance(ctx, o.ID)
	if err != nil {
		t.Fatalf("Advance past terminal: %v", err)
	}
	if o.Status != domain.StatusCompleted {
		t.Fatalf("status after extra advance = %s", o.Status)
	}

	active, err := svc.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("completed order still listed active: %+v", active)
	}
	if len(bus.events) != 4 {
		t.Fatalf("published %d status events, want 4", len(bus.events))
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := newService(newStubStore(), &recordingBus{})
	ctx := context.Background()

	in := pickupInput()
	in.Items = nil
	if _, err := svc.Submit(ctx, in); !isFieldError(err, "items") {
		t.Fatalf("empty cart: got %v", err)
	}

	in = pickupInput()
	in.ContactPhone = "   "
	if _, err := svc.Submit(ctx, in); !isFieldError(err, "contact_phone") {
		t.Fatalf("blank phone: got %v", err)
	}

	in = pickupInput()
	in.FulfillmentType = domain.FulfillmentDelivery
	in.DeliveryAddress = &domain.DeliveryAddress{City: "Vilnius"}
	if _, err := svc.Submit(ctx, in); !isFieldError(err, "delivery_address.street") {
		t.Fatalf("delivery without street: got %v", err)
	}

	in = pickupInput()
	in.TotalAmount = 9999
	if _, err := svc.Submit(ctx, in); !isFieldError(err, "total_amount") {
		t.Fatalf("mismatched client total: got %v", err)
	}
}

func TestSubmitSnapshotsModifiers(t *testing.T) {
	store := newStubStore()
	svc := newService(store, &recordingBus{})
	ctx := context.Background()

	sel := domain.Selections{
		"Size":     domain.SingleSelect("Large"),
		"Toppings": domain.MultiSelect("Cheese", "Olives"),
	}
	in := pickupInput()
	in.Items[0].Modifiers = sel
	in.Items[0].UnitPrice = 1350
	in.Items[0].ItemTotal = 2700

	o, err := svc.Submit(ctx, in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if o.TotalAmount != 2700 {
		t.Fatalf("total = %d, want 2700", o.TotalAmount)
	}

	// Mutating the cart selections afterwards must not reach the order.
	sel["Size"] = domain.SingleSelect("Small")
	stored, err := svc.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := stored.Items[0].Modifiers["Size"].Option; got != "Large" {
		t.Fatalf("snapshot leaked cart mutation, size = %q", got)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	store := newStubStore()
	bus := &recordingBus{}
	svc := newService(store, bus)
	ctx := context.Background()

	o, err := svc.Submit(ctx, pickupInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	o, err = svc.Cancel(ctx, o.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if o.Status != domain.StatusCancelled {
		t.Fatalf("status = %s", o.Status)
	}
	o, err = svc.Cancel(ctx, o.ID)
	if err != nil {
		t.Fatalf("second Cancel: %v", err)
	}
	if o.Status != domain.StatusCancelled {
		t.Fatalf("status after second cancel = %s", o.Status)
	}
	if len(bus.events) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.events))
	}
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	store := newStubStore()
	svc := newService(store, &recordingBus{})
	ctx := context.Background()

	o, err := svc.Submit(ctx, pickupInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := svc.SetStatus(ctx, o.ID, domain.OrderStatus("SHIPPED")); !isFieldError(err, "status") {
		t.Fatalf("unknown status: got %v", err)
	}
	if _, err := svc.SetStatus(ctx, o.ID, domain.StatusReady); err != nil {
		t.Fatalf("direct SetStatus: %v", err)
	}
	got, _ := svc.Get(ctx, o.ID)
	if got.Status != domain.StatusReady {
		t.Fatalf("status = %s, want %s", got.Status, domain.StatusReady)
	}
}

func TestActiveOrderingOldestFirst(t *testing.T) {
	store := newStubStore()
	svc := newService(store, &recordingBus{})
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"first", "second", "third"} {
		store.orders[id] = &domain.Order{
			ID:        id,
			UserID:    "u1",
			Status:    domain.StatusCreated,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}

	active, err := svc.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if len(active) != 3 || active[0].ID != "first" || active[2].ID != "third" {
		t.Fatalf("active order wrong: %+v", active)
	}

	history, err := svc.GetHistory(ctx, "u1")
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 3 || history[0].ID != "third" || history[2].ID != "first" {
		t.Fatalf("history order wrong: %+v", history)
	}
}

func TestAdvanceMissingOrder(t *testing.T) {
	svc := newService(newStubStore(), &recordingBus{})
	if _, err := svc.Advance(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func isFieldError(err error, field string) bool {
	var ve *domain.ValidationError
	return errors.As(err, &ve) && ve.Field == field
}
