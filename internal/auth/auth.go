package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the HttpOnly cookie holding the admin session token
const CookieName = "storefront_session"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no session")
)

// User is the identity exposed by /api/me
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Claims is the signed content of an admin session token
type Claims struct {
	jwt.RegisteredClaims
	Admin bool `json:"admin"`
	User  User `json:"user"`
}

// Authenticator checks the single admin account and issues session tokens
type Authenticator struct {
	username string
	password string
	email    string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthenticator creates an authenticator for one username/password pair
func NewAuthenticator(username, password, email, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{
		username: username,
		password: password,
		email:    email,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL is how long an issued session stays valid
func (a *Authenticator) TTL() time.Duration { return a.ttl }

// Login verifies the credentials and returns a signed session token
func (a *Authenticator) Login(username, password string) (string, *Claims, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !userOK || !passOK {
		return "", nil, ErrInvalidCredentials
	}

	now := a.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		Admin: true,
		User:  User{Email: a.email, Name: "Admin"},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session: %w", err)
	}
	return token, claims, nil
}

// Parse validates a session token
func (a *Authenticator) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// FromRequest reads the session from the cookie or an Authorization bearer header
func (a *Authenticator) FromRequest(r *http.Request) (*Claims, error) {
	tokenString := ""
	if c, err := r.Cookie(CookieName); err == nil {
		tokenString = c.Value
	} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		tokenString = strings.TrimPrefix(h, "Bearer ")
	}
	if tokenString == "" {
		return nil, ErrNoSession
	}
	return a.Parse(tokenString)
}
