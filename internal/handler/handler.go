// Package handler exposes the session and cart stores to a local
// presentation layer over JSON.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leavalz/Natural-Triade-Shop/internal/cart"
	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
	"github.com/leavalz/Natural-Triade-Shop/internal/logger"
	"github.com/leavalz/Natural-Triade-Shop/internal/middleware"
	"github.com/leavalz/Natural-Triade-Shop/internal/notify"
	"github.com/leavalz/Natural-Triade-Shop/internal/remote"
	"github.com/leavalz/Natural-Triade-Shop/internal/session"
)

// Catalog is the read-only product source.
type Catalog interface {
	ListProducts(ctx context.Context, category string) ([]commerce.Product, error)
	GetProduct(ctx context.Context, id commerce.ID) (*commerce.Product, error)
}

type Handler struct {
	session *session.Store
	cart    *cart.Store
	catalog Catalog
	feed    *notify.Feed
}

func NewHandler(
	sessionStore *session.Store,
	cartStore *cart.Store,
	catalog Catalog,
	feed *notify.Feed,
) *Handler {
	return &Handler{
		session: sessionStore,
		cart:    cartStore,
		catalog: catalog,
		feed:    feed,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/session/login", h.login)
	r.POST("/session/register", h.register)
	r.POST("/session/logout", h.logout)
	r.GET("/session", h.state)

	r.GET("/products", h.listProducts)
	r.GET("/products/:id", h.getProduct)

	r.GET("/notifications", h.notifications)

	protected := r.Group("/cart")
	protected.Use(middleware.GinRequireSession(middleware.NewSessionMiddleware(h.session)))

	protected.GET("", h.getCart)
	protected.POST("/refresh", h.refreshCart)
	protected.POST("/items", h.addItem)
	protected.PUT("/items/:id", h.updateItem)
	protected.DELETE("/items/:id", h.removeItem)
	protected.DELETE("", h.clearCart)

	for _, route := range r.Routes() {
		logger.Debug("route registered", map[string]any{
			"method": route.Method,
			"path":   route.Path,
		})
	}
}

func (h *Handler) notifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.feed.Drain())
}

// statusFor maps a store or remote error onto the bridge's answer.
func statusFor(err error) int {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, remote.ErrUnauthorized), errors.Is(err, remote.ErrNoCredential):
		return http.StatusUnauthorized
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	var apiErr *remote.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}

func respondError(c *gin.Context, err error, fallback string) {
	msg := remote.Detail(err, fallback)
	if errors.Is(err, cart.ErrInvalidQuantity) {
		msg = "quantity must be at least 1"
	}
	c.JSON(statusFor(err), gin.H{
		"error": msg,
	})
}
