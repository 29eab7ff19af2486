package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/api"
	"storefront/internal/auth"
	"storefront/internal/broker"
	"storefront/internal/identity"
	"storefront/internal/notify"
	"storefront/internal/redisclient"
	"storefront/internal/service"
	"storefront/internal/store"
	"storefront/internal/util"
	"storefront/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionTTL = 12 * time.Hour

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront")

	tp, err := util.InitTracer(util.TracingOptions{
		ServiceName:    "storefront",
		Environment:    cfg.Server.Env,
		JaegerEndpoint: cfg.Observ.JaegerEndpoint,
		Enabled:        cfg.Observ.TracingEnabled,
		SampleRatio:    cfg.Observ.SampleRatio,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	db, err := store.NewStore(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connected", zap.String("driver", db.Driver()))

	if cfg.Database.Migrate {
		if err := db.RunMigrations(); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	shipping, err := service.ParseShippingPolicy(cfg.Business.ShippingPolicy)
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	notifyTimeout := time.Duration(cfg.Notify.TimeoutSeconds) * time.Second
	webhook := notify.NewWebhook(cfg.Notify.WebhookURL, notifyTimeout)
	hub := notify.NewHub(cfg.Server.AllowedOrigins)
	sinks := []notify.Notifier{hub}

	relayMode := cfg.Notify.Mode == "kafka"
	if relayMode && !cfg.Kafka.Enabled {
		logger.Warn("NOTIFY_MODE=kafka requires KAFKA_ENABLED, notifying directly")
		relayMode = false
	}
	if !relayMode {
		sinks = append(sinks, webhook)
	}

	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
		defer producer.Close()
		sinks = append(sinks, broker.NewEventPublisher(producer))
		logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicOrder))
	}

	dispatcher := notify.NewDispatcher(notifyTimeout, sinks...)

	var checkoutOpts []service.CheckoutOption
	if cfg.Redis.Enabled {
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		lockTTL := time.Duration(cfg.Business.CheckoutLockSeconds) * time.Second
		checkoutOpts = append(checkoutOpts, service.WithLocker(redisClient, lockTTL))
		logger.Info("Redis connected, checkout lock enabled")
	}

	catalogService := service.NewCatalogService(db)
	cartService := service.NewCartService(db)
	orderService := service.NewOrderService(db, dispatcher)
	checkoutService := service.NewCheckoutService(db, dispatcher, shipping, checkoutOpts...)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var relayWorker *worker.NotifyRelayWorker
	if relayMode {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
		relayWorker = worker.NewNotifyRelayWorker(consumer, notifyTimeout, webhook)
		go func() {
			if err := relayWorker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
				logger.Error("Notify relay worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	production := cfg.Server.Env == "production"
	router := gin.New()
	handler := api.NewHandler(api.Options{
		Catalog:        catalogService,
		Cart:           cartService,
		Orders:         orderService,
		Checkout:       checkoutService,
		Auth:           auth.NewAuthenticator(cfg.Admin.User, cfg.Admin.Pass, cfg.Admin.Email, cfg.Admin.SessionSecret, sessionTTL),
		Identity:       identity.NewCookieProvider(production),
		Database:       db,
		Hub:            hub,
		Webhook:        webhook,
		UploadDir:      cfg.Storage.UploadDir,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SecureCookies:  production,
	})
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
	}

	dispatcher.Wait()

	workerCancel()
	if relayWorker != nil {
		if err := relayWorker.Stop(); err != nil {
			logger.Warn("Error stopping relay worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
