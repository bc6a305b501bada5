// Package realtime propagates order status changes to subscribed trackers.
// Delivery is in-process fan-out; consumers must treat each incoming status
// as authoritative-at-that-moment, not as a delta.
package realtime

import (
	"time"

	"github.com/asaskevich/EventBus"

	"github.com/justasSav/eeps/internal/domain"
)

// ResourceOrders is the only subscribable resource type today.
const ResourceOrders = "orders"

// StatusChange carries the changed fields delivered to subscribers.
type StatusChange struct {
	OrderID   string             `json:"order_id"`
	Status    domain.OrderStatus `json:"status"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Subscription identifies one active callback registration. Callers must
// hand it back to Unsubscribe when no longer interested; leaking it leaks
// the callback.
type Subscription struct {
	topic string
	fn    func(StatusChange)
}

type Bridge struct {
	bus EventBus.Bus
}

func NewBridge() *Bridge {
	return &Bridge{bus: EventBus.New()}
}

// Subscribe registers fn for changes to the given resource row. An empty
// filter means "do not subscribe": the returned subscription is nil and fn
// will never fire.
func (b *Bridge) Subscribe(resource, filterID string, fn func(StatusChange)) (*Subscription, error) {
	if filterID == "" {
		return nil, nil
	}
	topic := resource + ":" + filterID
	if err := b.bus.Subscribe(topic, fn); err != nil {
		return nil, err
	}
	return &Subscription{topic: topic, fn: fn}, nil
}

// Unsubscribe removes the registration. Safe to call with nil.
func (b *Bridge) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.bus.Unsubscribe(sub.topic, sub.fn)
}

// PublishStatus notifies subscribers filtered on the given order.
func (b *Bridge) PublishStatus(orderID string, status domain.OrderStatus, updatedAt time.Time) {
	b.bus.Publish(ResourceOrders+":"+orderID, StatusChange{
		OrderID:   orderID,
		Status:    status,
		UpdatedAt: updatedAt,
	})
}
