package domain

type FulfillmentType string

const (
	FulfillmentPickup   FulfillmentType = "pickup"
	FulfillmentDelivery FulfillmentType = "delivery"
)

type DeliveryAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Notes      string `json:"notes"`
}

// CartItem is one distinct purchasable configuration within a cart. CartKey
// combines the product id with the canonical modifier serialization, so the
// same configuration added twice merges into one line.
type CartItem struct {
	CartKey     string     `json:"cart_key"`
	ProductID   string     `json:"product_id"`
	ProductName string     `json:"product_name"`
	Quantity    int        `json:"quantity"`
	BasePrice   int64      `json:"base_price"`
	UnitPrice   int64      `json:"unit_price"`
	Modifiers   Selections `json:"modifiers"`
	ItemTotal   int64      `json:"item_total"`
}

// Cart holds the line items (insertion order) plus the in-progress
// fulfillment context for the current session.
type Cart struct {
	Items           []CartItem       `json:"items"`
	FulfillmentType FulfillmentType  `json:"fulfillment_type"`
	DeliveryAddress *DeliveryAddress `json:"delivery_address"`
	ContactPhone    string           `json:"contact_phone"`
	Notes           string           `json:"notes"`
}

// NewCart returns the empty cart a session starts with.
func NewCart() Cart {
	return Cart{
		Items:           []CartItem{},
		FulfillmentType: FulfillmentPickup,
	}
}

// Total sums all line totals.
func (c Cart) Total() int64 {
	var sum int64
	for _, item := range c.Items {
		sum += item.ItemTotal
	}
	return sum
}

// ItemCount sums all line quantities.
func (c Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}
