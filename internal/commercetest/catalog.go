package commercetest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
)

// AddProduct seeds the catalog. The product is stored as given.
func (s *Server) AddProduct(p commerce.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := p
	s.products = append(s.products, &cp)
}

// SetStock adjusts stock of a seeded product.
func (s *Server) SetStock(id commerce.ID, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := s.productLocked(id); p != nil {
		p.Stock = stock
	}
}

func (s *Server) productLocked(id commerce.ID) *commerce.Product {
	for _, p := range s.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Server) listProducts(c *gin.Context) {
	category := c.Query("category")

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]commerce.Product, 0, len(s.products))
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, *p)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getProduct(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.productLocked(commerce.ID(c.Param("id")))
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}
