package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
)

type fakeSession struct {
	identity *commerce.Identity
}

func (f fakeSession) Authenticated() bool { return f.identity != nil }
func (f fakeSession) User() *commerce.Identity { return f.identity }

func newRouter(s SessionReader) (*gin.Engine, *bool) {
	gin.SetMode(gin.TestMode)

	reached := false
	r := gin.New()
	r.GET("/cart", GinRequireSession(NewSessionMiddleware(s)), func(c *gin.Context) {
		reached = true
		c.JSON(http.StatusOK, gin.H{"username": c.GetString("username")})
	})
	return r, &reached
}

func TestRequireSessionRejectsAnonymous(t *testing.T) {
	r, reached := newRouter(fakeSession{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"not logged in"}`, w.Body.String())
	assert.False(t, *reached)
}

func TestRequireSessionPassesUsername(t *testing.T) {
	r, reached := newRouter(fakeSession{identity: &commerce.Identity{Username: "ana"}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"ana"}`, w.Body.String())
	assert.True(t, *reached)
}

func TestUsernameFromContextMissing(t *testing.T) {
	_, ok := UsernameFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
