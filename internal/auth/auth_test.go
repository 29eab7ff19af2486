package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth() *Authenticator {
	return NewAuthenticator("admin", "admin123", "ops@example.com", "test-secret", time.Hour)
}

func TestLogin(t *testing.T) {
	a := newTestAuth()

	_, _, err := a.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = a.Login("root", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, claims, err := a.Login("admin", "admin123")
	require.NoError(t, err)
	assert.True(t, claims.Admin)
	assert.Equal(t, User{Email: "ops@example.com", Name: "Admin"}, claims.User)

	parsed, err := a.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", parsed.Subject)
	assert.True(t, parsed.Admin)
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	a := newTestAuth()

	other := NewAuthenticator("admin", "admin123", "", "other-secret", time.Hour)
	token, _, err := other.Login("admin", "admin123")
	require.NoError(t, err)
	_, err = a.Parse(token)
	assert.Error(t, err)

	token, _, err = a.Login("admin", "admin123")
	require.NoError(t, err)
	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = a.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newTestAuth()

	r := gin.New()
	r.GET("/secret", a.RequireAdmin(), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		c.String(http.StatusOK, claims.Subject)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/secret", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _, err := a.Login("admin", "admin123")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
