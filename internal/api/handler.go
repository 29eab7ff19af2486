package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/auth"
	"storefront/internal/identity"
	"storefront/internal/notify"
	"storefront/internal/service"
	"storefront/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports whether a backing dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries everything the HTTP surface is wired to
type Options struct {
	Catalog        *service.CatalogService
	Cart           *service.CartService
	Orders         *service.OrderService
	Checkout       *service.CheckoutService
	Auth           *auth.Authenticator
	Identity       identity.Provider
	Database       Pinger
	Hub            *notify.Hub
	Webhook        *notify.Webhook
	UploadDir      string
	AllowedOrigins []string
	SecureCookies  bool
}

// Handler contains HTTP handlers
type Handler struct {
	catalog       *service.CatalogService
	cart          *service.CartService
	orders        *service.OrderService
	checkout      *service.CheckoutService
	auth          *auth.Authenticator
	identity      identity.Provider
	db            Pinger
	hub           *notify.Hub
	webhook       *notify.Webhook
	uploadDir     string
	origins       []string
	secureCookies bool
	logger        *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(opts Options) *Handler {
	return &Handler{
		catalog:       opts.Catalog,
		cart:          opts.Cart,
		orders:        opts.Orders,
		checkout:      opts.Checkout,
		auth:          opts.Auth,
		identity:      opts.Identity,
		db:            opts.Database,
		hub:           opts.Hub,
		webhook:       opts.Webhook,
		uploadDir:     opts.UploadDir,
		origins:       opts.AllowedOrigins,
		secureCookies: opts.SecureCookies,
		logger:        util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())
	router.Use(cors.New(h.corsConfig()))
	router.Use(h.cartIdentity())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/login", h.login)
	router.POST("/logout", h.logout)
	router.Static("/uploads", h.uploadDir)

	admin := h.auth.RequireAdmin()

	api := router.Group("/api")
	{
		api.GET("/me", h.me)

		api.GET("/products", h.listProducts)
		api.GET("/products/:id", h.getProduct)
		api.POST("/products", admin, h.createProduct)
		api.DELETE("/products/:id", admin, h.deleteProduct)

		api.GET("/cart", h.listCart)
		api.POST("/cart", h.addToCart)
		api.PATCH("/cart/:id", h.updateCartLine)
		api.DELETE("/cart/:id", h.removeCartLine)

		api.POST("/orders", h.createOrder)
		api.POST("/orders/checkout", h.checkoutCart)
		api.GET("/orders", admin, h.listOrders)
		api.DELETE("/orders/:id", admin, h.deleteOrder)
		api.GET("/orders/export", admin, h.exportOrders)
		api.GET("/orders/stream", admin, h.streamOrders)

		api.POST("/upload", admin, h.upload)
		api.GET("/test/notify", admin, h.testNotify)
	}
}

// corsConfig allows credentialed requests from the configured origins, or
// echoes any origin when none are configured
func (h *Handler) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(h.origins) > 0 {
		cfg.AllowOrigins = h.origins
	} else {
		cfg.AllowOriginFunc = func(string) bool { return true }
	}
	return cfg
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready once the database answers
func (h *Handler) readinessCheck(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"details": err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

const identityKey = "cart_identity"

// cartIdentity resolves the cart cookie for every request, issuing one when absent
func (h *Handler) cartIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(identityKey, h.identity.Resolve(c.Writer, c.Request))
		c.Next()
	}
}

func cartIdentityFrom(c *gin.Context) identity.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(identity.Identity); ok {
			return id
		}
	}
	return identity.Identity{}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid id",
			"code":  "invalid_id",
		})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
