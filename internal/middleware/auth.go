package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
	"github.com/leavalz/Natural-Triade-Shop/internal/logger"
)

// unexported, collision-proof context key
type usernameContextKeyType struct{}

var usernameKey = usernameContextKeyType{}

// UsernameFromContext extracts the logged-in username from context.
func UsernameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(usernameKey).(string)
	return name, ok
}

// SessionReader is the read side of the session store.
type SessionReader interface {
	Authenticated() bool
	User() *commerce.Identity
}

type SessionMiddleware struct {
	Session SessionReader
}

func NewSessionMiddleware(s SessionReader) *SessionMiddleware {
	return &SessionMiddleware{Session: s}
}

// RequireSession answers 401 while the client is anonymous. It does not
// revalidate the credential; the commerce API does that on the next call.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := m.Session.User()
		if !m.Session.Authenticated() || identity == nil {
			logger.Debug("anonymous request to session route", map[string]any{
				"path": r.URL.Path,
			})
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not logged in"})
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, identity.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
