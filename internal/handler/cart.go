package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
)

type cartResponse struct {
	Cart       *commerce.Cart `json:"cart"`
	TotalItems int            `json:"total_items"`
	IsLoading  bool           `json:"is_loading"`
}

func (h *Handler) cartView() cartResponse {
	return cartResponse{
		Cart:       h.cart.Cart(),
		TotalItems: h.cart.TotalItems(),
		IsLoading:  h.cart.IsLoading(),
	}
}

// getCart returns the local snapshot; it never calls the commerce API.
func (h *Handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartView())
}

func (h *Handler) refreshCart(c *gin.Context) {
	if err := h.cart.FetchCart(c.Request.Context()); err != nil {
		respondError(c, err, "could not load cart")
		return
	}
	c.JSON(http.StatusOK, h.cartView())
}

type addItemRequest struct {
	ProductID commerce.ID `json:"product_id" binding:"required"`
	Quantity  int         `json:"quantity"`
}

func (h *Handler) addItem(c *gin.Context) {
	req := addItemRequest{Quantity: 1}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "product_id is required",
		})
		return
	}

	if err := h.cart.AddToCart(c.Request.Context(), req.ProductID, req.Quantity); err != nil {
		respondError(c, err, "could not add product to cart")
		return
	}
	c.JSON(http.StatusOK, h.cartView())
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid body",
		})
		return
	}

	itemID := commerce.ID(c.Param("id"))
	if err := h.cart.UpdateQuantity(c.Request.Context(), itemID, req.Quantity); err != nil {
		respondError(c, err, "could not update quantity")
		return
	}
	c.JSON(http.StatusOK, h.cartView())
}

func (h *Handler) removeItem(c *gin.Context) {
	itemID := commerce.ID(c.Param("id"))
	if err := h.cart.RemoveFromCart(c.Request.Context(), itemID); err != nil {
		respondError(c, err, "could not remove product")
		return
	}
	c.JSON(http.StatusOK, h.cartView())
}

func (h *Handler) clearCart(c *gin.Context) {
	if err := h.cart.ClearCart(c.Request.Context()); err != nil {
		respondError(c, err, "could not empty cart")
		return
	}
	c.Status(http.StatusNoContent)
}
