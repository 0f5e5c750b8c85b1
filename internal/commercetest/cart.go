package commercetest

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
)

type line struct {
	id              commerce.ID
	productID       commerce.ID
	quantity        int
	priceAtAddition float64
}

type addItemBody struct {
	ProductID commerce.ID `json:"product_id"`
	Quantity  int         `json:"quantity"`
}

type updateItemBody struct {
	Quantity int `json:"quantity"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CartOf returns the server's current snapshot for username.
func (s *Server) CartOf(username string) *commerce.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(username)
}

func (s *Server) snapshotLocked(username string) *commerce.Cart {
	cart := &commerce.Cart{Items: []commerce.CartItem{}}
	subtotal := 0.0

	for _, l := range s.carts[username] {
		p := s.productLocked(l.productID)
		if p == nil || !p.IsActive {
			continue
		}
		itemSubtotal := round2(l.priceAtAddition * float64(l.quantity))
		cart.Items = append(cart.Items, commerce.CartItem{
			ID:              l.id,
			ProductID:       l.productID,
			ProductName:     p.Name,
			ProductPrice:    p.Price,
			ProductImageURL: p.ImageURL,
			Quantity:        l.quantity,
			PriceAtAddition: l.priceAtAddition,
			Subtotal:        itemSubtotal,
		})
		subtotal += itemSubtotal
	}

	tax := subtotal * TaxRate
	cart.Subtotal = round2(subtotal)
	cart.Tax = round2(tax)
	cart.Total = round2(subtotal + tax)
	cart.ItemsCount = len(cart.Items)
	return cart
}

func (s *Server) lineLocked(username string, id commerce.ID) (int, *line) {
	for i, l := range s.carts[username] {
		if l.id == id {
			return i, l
		}
	}
	return -1, nil
}

func (s *Server) getCart(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.snapshotLocked(c.GetString("username")))
}

func (s *Server) addItem(c *gin.Context) {
	var body addItemBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Quantity <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "quantity must be greater than 0"}}})
		return
	}

	username := c.GetString("username")

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.productLocked(body.ProductID)
	if p == nil || !p.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Product not found or unavailable"})
		return
	}

	for _, l := range s.carts[username] {
		if l.productID != body.ProductID {
			continue
		}
		want := l.quantity + body.Quantity
		if p.Stock < want {
			c.JSON(http.StatusBadRequest, gin.H{
				"detail": fmt.Sprintf("Insufficient stock. Available: %d, in cart: %d", p.Stock, l.quantity),
			})
			return
		}
		l.quantity = want
		c.JSON(http.StatusCreated, gin.H{"id": l.id, "quantity": l.quantity})
		return
	}

	if p.Stock < body.Quantity {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Insufficient stock. Available: %d", p.Stock)})
		return
	}

	l := &line{
		id:              commerce.ID(strconv.Itoa(s.nextItemID)),
		productID:       p.ID,
		quantity:        body.Quantity,
		priceAtAddition: p.Price,
	}
	s.nextItemID++
	s.carts[username] = append(s.carts[username], l)

	c.JSON(http.StatusCreated, gin.H{"id": l.id, "quantity": l.quantity})
}

func (s *Server) updateItem(c *gin.Context) {
	var body updateItemBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Quantity <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "quantity must be greater than 0"}}})
		return
	}

	username := c.GetString("username")

	s.mu.Lock()
	defer s.mu.Unlock()

	_, l := s.lineLocked(username, commerce.ID(c.Param("id")))
	if l == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Item not found in cart"})
		return
	}

	p := s.productLocked(l.productID)
	if p == nil || !p.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Product unavailable"})
		return
	}
	if p.Stock < body.Quantity {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Insufficient stock. Available: %d", p.Stock)})
		return
	}

	l.quantity = body.Quantity
	c.JSON(http.StatusOK, gin.H{"id": l.id, "quantity": l.quantity})
}

func (s *Server) removeItem(c *gin.Context) {
	username := c.GetString("username")

	s.mu.Lock()
	defer s.mu.Unlock()

	i, l := s.lineLocked(username, commerce.ID(c.Param("id")))
	if l == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Item not found in cart"})
		return
	}

	lines := s.carts[username]
	s.carts[username] = append(lines[:i:i], lines[i+1:]...)
	c.Status(http.StatusNoContent)
}

func (s *Server) clearCart(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, c.GetString("username"))
	c.Status(http.StatusNoContent)
}
