package api

import (
	"net/http"

	"storefront/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// login accepts JSON or form credentials and sets the admin session cookie
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		req = loginRequest{}
	}

	token, _, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		h.logger.Info("Rejected admin login", zap.String("username", req.Username))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials", "code": "unauthorized"})
		return
	}

	h.setSessionCookie(c, token, int(h.auth.TTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{"ok": true, "redirect": "/admin.html"})
}

func (h *Handler) logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// me returns the logged-in admin, or null
func (h *Handler) me(c *gin.Context) {
	claims, err := h.auth.FromRequest(c.Request)
	if err != nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, claims.User)
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
