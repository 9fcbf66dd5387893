package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thinhchuht/ResiBuy-sub001/config"
	"github.com/thinhchuht/ResiBuy-sub001/controllers"
	"github.com/thinhchuht/ResiBuy-sub001/database"
	"github.com/thinhchuht/ResiBuy-sub001/kafka"
	"github.com/thinhchuht/ResiBuy-sub001/models"
	"github.com/thinhchuht/ResiBuy-sub001/pkg/apperrors"
	"github.com/thinhchuht/ResiBuy-sub001/pkg/logger"
	"github.com/thinhchuht/ResiBuy-sub001/repository"
	"github.com/thinhchuht/ResiBuy-sub001/routes"
	"github.com/thinhchuht/ResiBuy-sub001/services"
	"github.com/thinhchuht/ResiBuy-sub001/vnpay"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// --- Stores ---
	db, err := database.ConnectPostgres(cfg.PostgresDSN(), log, &models.Cart{}, &models.Voucher{})
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatal("Redis connection failed", zap.Error(err))
	}
	cache := database.NewRedisCache(redisClient)

	// --- Collaborators ---
	cartRepo := repository.NewGormCartRepository(db)
	voucherRepo := repository.NewGormVoucherRepository(db)

	cartLock := services.NewCartLock(cartRepo, cfg.CartLockTTL, log)
	voucherGate := services.NewVoucherGate(voucherRepo)
	sessionStore := services.NewCheckoutSessionStore(cache, cfg.CheckoutSessionTTL)
	tokenBroker := services.NewTokenBroker(cache, cfg.PaymentTokenTTL)
	gateway := vnpay.NewClient(cfg.VNPayTmnCode, cfg.VNPayHashSecret, cfg.VNPayBaseURL, cfg.VNPayReturnURL)

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.CheckoutTopic, log)
	defer producer.Close()

	checkoutService := services.NewCheckoutService(
		cartLock, voucherGate, sessionStore, tokenBroker, gateway, producer,
		cfg.FrontendSuccessURL, cfg.FrontendFailureURL, log,
	)

	// --- HTTP ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(log))
	r.Use(apperrors.ErrorMiddleware())

	routes.Register(
		r,
		controllers.NewCheckoutController(checkoutService, log),
		controllers.NewVNPayController(checkoutService, log),
		controllers.NewCartController(cartRepo, log),
		controllers.NewVoucherController(voucherRepo, log),
		healthHandler(db, redisClient),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info("Checkout service running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
	}
	if err := redisClient.Close(); err != nil {
		log.Warn("Redis close error", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server shutdown complete")
}
