package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justasSav/eeps/internal/domain"
	"github.com/justasSav/eeps/internal/realtime"
	ordersvc "github.com/justasSav/eeps/internal/service/order"
)

type submitOrderRequest struct {
	FulfillmentType domain.FulfillmentType  `json:"fulfillment_type"`
	DeliveryAddress *domain.DeliveryAddress `json:"delivery_address"`
	ContactPhone    string                  `json:"contact_phone"`
	Notes           string                  `json:"notes"`
	TotalAmount     int64                   `json:"total_amount"`
}

// submitOrder snapshots the session's cart into an order. The body may
// restate the checkout fields; when absent, the values saved on the cart via
// PUT /api/cart/info are used.
func (h *handlers) submitOrder(c *gin.Context) {
	var req submitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	sid := sessionID(c)
	cart, err := h.deps.Cart.Get(ctx, sid)
	if err != nil {
		respondError(c, err)
		return
	}

	in := ordersvc.SubmitInput{
		UserID:          sid,
		Items:           cart.Items,
		FulfillmentType: cart.FulfillmentType,
		DeliveryAddress: cart.DeliveryAddress,
		ContactPhone:    cart.ContactPhone,
		Notes:           cart.Notes,
		TotalAmount:     req.TotalAmount,
	}
	if req.FulfillmentType != "" {
		in.FulfillmentType = req.FulfillmentType
		in.DeliveryAddress = req.DeliveryAddress
	}
	if req.ContactPhone != "" {
		in.ContactPhone = req.ContactPhone
	}
	if req.Notes != "" {
		in.Notes = req.Notes
	}

	order, err := h.deps.Orders.Submit(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.deps.Cart.Clear(ctx, sid); err != nil {
		h.logger.Printf("clearing cart %s after order %s: %v", sid, order.ID, err)
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.deps.Orders.GetHistory(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.deps.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// orderEvents streams status changes for one order as server-sent events.
// Without an order id there is nothing to watch, matching the bridge's
// empty-filter contract.
func (h *handlers) orderEvents(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.deps.Orders.Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	events := make(chan realtime.StatusChange, 8)
	sub, err := h.deps.Bridge.Subscribe(realtime.ResourceOrders, id, func(ev realtime.StatusChange) {
		select {
		case events <- ev:
		default:
		}
	})
	if err != nil {
		respondError(c, err)
		return
	}
	defer h.deps.Bridge.Unsubscribe(sub)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-events:
			c.SSEvent("status", ev)
			return !ev.Status.Terminal()
		case <-c.Request.Context().Done():
			return false
		}
	})
}
