package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/market-gateway/internal/client"
	"github.com/yourorg/market-gateway/internal/config"
	"github.com/yourorg/market-gateway/internal/fallback"
	"github.com/yourorg/market-gateway/internal/handler"
	"github.com/yourorg/market-gateway/internal/kafka"
	"github.com/yourorg/market-gateway/internal/middleware"
	"github.com/yourorg/market-gateway/internal/service"

	"github.com/cenkalti/backoff/v4"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Redis only backs the shared rate limiter
	var redisClient *redis.Client
	if cfg.RateLimit.Enabled && cfg.Redis.URL != "" {
		redisClient, err = setupRedis(cfg, logger)
		if err != nil {
			logger.Error("Failed to set up Redis, using in-memory rate limiter", zap.Error(err))
		}
	}

	// Fallback events are published only when brokers are configured
	kafkaProducer := setupKafka(cfg, logger)

	// Initialize clients
	alphaVantageClient := client.NewAlphaVantageClient(cfg.AlphaVantage, logger)
	xaiClient := client.NewXAIClient(cfg.XAI, logger)
	if !xaiClient.Configured() {
		logger.Warn("X.AI API key is not configured, AI endpoints will serve mock responses")
	}

	// Initialize services
	generator := fallback.NewGenerator(cfg.Fallback.Seed)

	var publisher service.EventPublisher
	var marketOptions []service.MarketDataServiceOption
	if kafkaProducer != nil {
		publisher = kafkaProducer
		marketOptions = append(marketOptions, service.WithEventPublisher(kafkaProducer))
	}

	marketDataService := service.NewMarketDataService(
		alphaVantageClient,
		generator,
		cfg.Fallback.UseMockData,
		cfg.Batch.Concurrency,
		logger,
		marketOptions...,
	)
	researchService := service.NewResearchService(xaiClient, generator, cfg.XAI, publisher, logger)

	// Initialize handlers
	marketDataHandler := handler.NewMarketDataHandler(marketDataService, logger)
	researchHandler := handler.NewResearchHandler(researchService, logger)

	// Set up HTTP server with Gin
	router := setupRouter(cfg, logger, redisClient, marketDataHandler, researchHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting market gateway server",
			zap.String("port", cfg.Server.Port),
			zap.Bool("mockFallback", cfg.Fallback.UseMockData))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Close Kafka producer
	if kafkaProducer != nil {
		kafkaProducer.Close()
	}

	// Close Redis client
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited properly")
}

// setupRedis connects to Redis, retrying with exponential backoff until the
// configured wait timeout elapses.
func setupRedis(cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	redisOptions, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Warn("Failed to parse Redis URL, treating it as an address", zap.Error(err))
		redisOptions = &redis.Options{Addr: cfg.Redis.URL}
	}

	redisClient := redis.NewClient(redisOptions)

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = cfg.Redis.WaitTimeout

	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return redisClient.Ping(ctx).Err()
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("Redis not ready, retrying", zap.Error(err), zap.Duration("wait", wait))
	}

	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		redisClient.Close()
		return nil, err
	}

	logger.Info("Connected to Redis", zap.String("addr", redisOptions.Addr))
	return redisClient, nil
}

// setupKafka initializes the Kafka producer, or returns nil when no brokers are configured
func setupKafka(cfg *config.Config, logger *zap.Logger) *kafka.Producer {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("Kafka brokers not configured, fallback events will not be published")
		return nil
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ClientID, cfg.Kafka.Topic, logger)

	logger.Info("Initialized Kafka producer",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic))
	return producer
}

func setupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	redisClient *redis.Client,
	marketDataHandler *handler.MarketDataHandler,
	researchHandler *handler.ResearchHandler,
) *gin.Engine {
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Use standard middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())

	// Redis-based rate limiting (if Redis is available)
	if redisClient != nil && cfg.RateLimit.Enabled {
		router.Use(middleware.RedisRateLimit(redisClient, cfg.RateLimit, logger))
	} else if cfg.RateLimit.Enabled {
		// Fallback to in-memory rate limiter if Redis is not available
		router.Use(middleware.RateLimit(cfg.RateLimit))
	}

	handler.RegisterRoutes(router.Group("/api"), marketDataHandler, researchHandler)

	return router
}

func createLogger(level string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Create logger config
	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
