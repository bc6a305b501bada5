package domain

import "time"

type OrderStatus string

const (
	StatusCreated   OrderStatus = "CREATED"
	StatusAccepted  OrderStatus = "ACCEPTED"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// forwardChain is the staff-advance mapping. It deliberately covers only the
// forward path; out-of-band updates may set any valid status directly.
var forwardChain = map[OrderStatus]OrderStatus{
	StatusCreated:   StatusAccepted,
	StatusAccepted:  StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusCompleted,
}

// Next returns the status the staff advance action moves to, if any.
func (s OrderStatus) Next() (OrderStatus, bool) {
	next, ok := forwardChain[s]
	return next, ok
}

// Terminal reports whether no further transition is legal.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is one of the six known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusAccepted, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ActiveStatuses lists the statuses shown on the staff dashboard.
func ActiveStatuses() []OrderStatus {
	return []OrderStatus{StatusCreated, StatusAccepted, StatusPreparing, StatusReady}
}

// OrderItem is a deep snapshot of a cart line taken at submission time.
// Later cart mutations never touch it.
type OrderItem struct {
	ProductID   string     `json:"product_id"`
	ProductName string     `json:"product_name"`
	Quantity    int        `json:"quantity"`
	BasePrice   int64      `json:"base_price"`
	Modifiers   Selections `json:"modifiers"`
	ItemTotal   int64      `json:"item_total"`
}

// Order is immutable once created except for its status and updated_at.
type Order struct {
	ID              string           `json:"id"`
	UserID          string           `json:"-"`
	FulfillmentType FulfillmentType  `json:"fulfillment_type"`
	Status          OrderStatus      `json:"status"`
	DeliveryAddress *DeliveryAddress `json:"delivery_address"`
	ContactPhone    string           `json:"contact_phone"`
	Items           []OrderItem      `json:"items"`
	TotalAmount     int64            `json:"total_amount"`
	Notes           string           `json:"notes"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
