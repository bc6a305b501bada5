package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justasSav/eeps/internal/domain"
	cartsvc "github.com/justasSav/eeps/internal/service/cart"
)

type addItemRequest struct {
	ProductID string            `json:"product_id" binding:"required"`
	Modifiers domain.Selections `json:"modifiers"`
	Quantity  int               `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *handlers) getCart(c *gin.Context) {
	cart, err := h.deps.Cart.Get(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Modifiers == nil {
		req.Modifiers = domain.Selections{}
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	ctx := c.Request.Context()
	product, err := h.deps.Menu.GetProduct(ctx, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	var cart domain.Cart
	for i := 0; i < req.Quantity; i++ {
		cart, err = h.deps.Cart.AddItem(ctx, sessionID(c), *product, req.Modifiers)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cart, err := h.deps.Cart.UpdateQuantity(c.Request.Context(), sessionID(c), c.Param("key"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	cart, err := h.deps.Cart.RemoveItem(c.Request.Context(), sessionID(c), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

func (h *handlers) clearCart(c *gin.Context) {
	if err := h.deps.Cart.Clear(c.Request.Context(), sessionID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(domain.NewCart()))
}

func (h *handlers) setCheckoutInfo(c *gin.Context) {
	var req cartsvc.CheckoutInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cart, err := h.deps.Cart.SetCheckoutInfo(c.Request.Context(), sessionID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

func cartResponse(cart domain.Cart) gin.H {
	return gin.H{
		"cart":       cart,
		"total":      cart.Total(),
		"item_count": cart.ItemCount(),
	}
}
