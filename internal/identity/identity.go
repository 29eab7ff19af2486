package identity

import (
	"net/http"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the cart identity
const CookieName = "cart_id"

// Identity is the opaque cart scope of one browser
type Identity struct {
	ID string
	// Issued is true when the identity was created for this request, so the
	// client has never used it before.
	Issued bool
}

// Provider reads or assigns the cart identity of a request
type Provider interface {
	Resolve(w http.ResponseWriter, r *http.Request) Identity
}

// CookieProvider keeps the identity in a script-readable, non-expiring cookie
type CookieProvider struct {
	name   string
	secure bool
}

// NewCookieProvider creates a cookie-backed provider. secure marks the cookie
// HTTPS-only.
func NewCookieProvider(secure bool) *CookieProvider {
	return &CookieProvider{name: CookieName, secure: secure}
}

func (p *CookieProvider) Resolve(w http.ResponseWriter, r *http.Request) Identity {
	if c, err := r.Cookie(p.name); err == nil && c.Value != "" {
		return Identity{ID: c.Value}
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     p.name,
		Value:    id,
		Path:     "/",
		HttpOnly: false,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return Identity{ID: id, Issued: true}
}
