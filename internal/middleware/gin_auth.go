package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinRequireSession adapts SessionMiddleware.RequireSession to Gin and
// exposes the username under the "username" key.
func GinRequireSession(m *SessionMiddleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			if name, ok := UsernameFromContext(r.Context()); ok {
				c.Set("username", name)
			}
			c.Next()
		})

		m.RequireSession(next).ServeHTTP(c.Writer, c.Request)

		// rejected requests never reached c.Next; stop the chain here
		if c.Writer.Written() {
			c.Abort()
		}
	}
}
