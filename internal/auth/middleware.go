package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const claimsKey = "auth_claims"

// RequireAdmin aborts with 401 unless the request carries a valid admin session
func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := a.FromRequest(c.Request)
		if err != nil || !claims.Admin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
				"code":  "unauthorized",
			})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the session stored by RequireAdmin
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
