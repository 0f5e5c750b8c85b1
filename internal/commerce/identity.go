package commerce

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Identity is the logged-in principal as returned by GET /auth/me.
// It is stored verbatim and never edited client-side.
type Identity struct {
	ID         ID     `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FullName   string `json:"full_name,omitempty"`
	Role       string `json:"role"`
	IsActive   bool   `json:"is_active"`
	IsVerified bool   `json:"is_verified"`
	CreatedAt  string `json:"created_at,omitempty"` // server-local timestamp, kept as sent
}

// IsAdmin is safe to call on a nil identity.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Profile is the registration payload forwarded to POST /auth/register.
type Profile struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password"`
}
