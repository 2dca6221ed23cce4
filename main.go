package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clickpaysolution/PaymentGateway/banks"
	"github.com/clickpaysolution/PaymentGateway/controllers"
	"github.com/clickpaysolution/PaymentGateway/database"
	"github.com/clickpaysolution/PaymentGateway/events"
	kafkapkg "github.com/clickpaysolution/PaymentGateway/kafka"
	"github.com/clickpaysolution/PaymentGateway/middleware"
	"github.com/clickpaysolution/PaymentGateway/models"
	"github.com/clickpaysolution/PaymentGateway/repository"
	"github.com/clickpaysolution/PaymentGateway/routes"
	servicepkg "github.com/clickpaysolution/PaymentGateway/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg := LoadConfig()

	if err := database.Connect(); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close() //nolint:errcheck

	if err := database.DB.AutoMigrate(&models.Payment{}); err != nil {
		logger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	// Redis is optional; without it merchant profiles are fetched fresh.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unavailable, profile caching disabled", zap.Error(err))
			redisClient = nil
		}
	}

	// SNS is optional; without it events go to Kafka only.
	var snsClient events.SNSPublisher
	if awsCfg, awsErr := events.LoadAWSConfig(context.Background()); awsErr != nil {
		logger.Warn("AWS config unavailable, SNS disabled", zap.Error(awsErr))
	} else {
		snsClient = events.NewSNSClient(awsCfg)
	}

	eventProducer := kafkapkg.NewPaymentEventProducer(cfg.KafkaBrokers, cfg.PaymentEventsTopic, logger)
	defer eventProducer.Close()

	// DI chain
	registry := banks.NewDefaultRegistry(cfg.BankCredentials, logger)
	paymentRepo := repository.NewGormPaymentRepository(database.DB)
	merchantClient := servicepkg.NewMerchantClient(cfg.MerchantServiceURL, cfg.DefaultBankProvider, redisClient, logger)
	upiService := servicepkg.NewUPIService(cfg.UPICollectURL, logger)
	paymentService := servicepkg.NewPaymentService(
		paymentRepo,
		registry,
		merchantClient,
		upiService,
		eventProducer,
		snsClient,
		cfg.PaymentSNSTopicARN,
		logger,
	)
	feeEstimator := servicepkg.NewFeeEstimator()

	paymentController := controllers.NewPaymentController(paymentService, feeEstimator, upiService)
	webhookController := controllers.NewWebhookController(paymentService, registry, logger)

	// Queued payment creation is enabled only when a request topic is set.
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	if cfg.PaymentRequestTopic != "" {
		consumer := servicepkg.NewPaymentRequestConsumer(
			cfg.KafkaBrokers, cfg.PaymentRequestTopic, cfg.KafkaGroupID, paymentService, logger)
		defer consumer.Close()
		go consumer.Start(consumerCtx)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RateLimitMiddleware())

	// Global request-logging middleware
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})

	// 30-second request timeout
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "payment-gateway"})
	})

	routes.RegisterPaymentRoutes(r, paymentController)
	routes.RegisterWebhookRoutes(r, webhookController)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Payment gateway started", zap.String("port", cfg.Port))
	<-quit
	logger.Info("Shutting down payment gateway...")
	stopConsumer()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited cleanly")
}
