package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
)

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err, "could not load products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), commerce.ID(c.Param("id")))
	if err != nil {
		respondError(c, err, "could not load product")
		return
	}
	c.JSON(http.StatusOK, product)
}
