// Package commercetest runs an in-process commerce API with the same routes,
// payloads and error details as the real backend, for tests and local runs.
package commercetest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
)

// TaxRate is applied to the cart subtotal, as the backend does.
const TaxRate = 0.19

type fault struct {
	status int
	detail string
}

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	users      map[string]*user // by username
	tokens     map[string]string
	products   []*commerce.Product
	carts      map[string][]*line
	nextItemID int
	nextUserID int
	failMe     bool
	faults     map[string]fault
	calls      map[string]int
}

func New() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		users:      make(map[string]*user),
		tokens:     make(map[string]string),
		carts:      make(map[string][]*line),
		faults:     make(map[string]fault),
		calls:      make(map[string]int),
		nextItemID: 1,
		nextUserID: 1,
	}

	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.track)

	r.POST("/auth/login", s.login)
	r.POST("/auth/register", s.register)
	r.GET("/auth/me", s.requireToken, s.me)

	r.GET("/products/", s.listProducts)
	r.GET("/products/:id", s.getProduct)

	cart := r.Group("/cart", s.requireToken)
	cart.GET("/", s.getCart)
	cart.DELETE("/", s.clearCart)
	cart.POST("/items", s.addItem)
	cart.PUT("/items/:id", s.updateItem)
	cart.DELETE("/items/:id", s.removeItem)

	return r
}

func routeKey(method, route string) string {
	return method + " " + route
}

// track counts calls per route and applies injected faults.
func (s *Server) track(c *gin.Context) {
	key := routeKey(c.Request.Method, c.FullPath())

	s.mu.Lock()
	s.calls[key]++
	f, faulty := s.faults[key]
	delete(s.faults, key)
	s.mu.Unlock()

	if faulty {
		c.AbortWithStatusJSON(f.status, gin.H{"detail": f.detail})
		return
	}
	c.Next()
}

func (s *Server) requireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}

	s.mu.Lock()
	username, ok := s.tokens[token]
	s.mu.Unlock()

	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
		return
	}

	c.Set("username", username)
	c.Next()
}

// FailNext makes the next call to route answer status with detail. route is
// the gin route template, e.g. "/cart/items/:id".
func (s *Server) FailNext(method, route string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[routeKey(method, route)] = fault{status: status, detail: detail}
}

// FailIdentity makes GET /auth/me fail with 500 until reset.
func (s *Server) FailIdentity(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failMe = fail
}

// Revoke invalidates token server-side.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// Calls reports how many requests reached route.
func (s *Server) Calls(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[routeKey(method, route)]
}

// TotalCalls reports every request received.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, v := range s.calls {
		n += v
	}
	return n
}
