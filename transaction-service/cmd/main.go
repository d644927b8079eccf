package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corebank/banking/shared/config"
	"github.com/corebank/banking/shared/database"
	"github.com/corebank/banking/shared/events"
	"github.com/corebank/banking/shared/logging"
	"github.com/corebank/banking/shared/middleware"
	redisClient "github.com/corebank/banking/shared/redis"
	"github.com/corebank/banking/shared/server"
	txcmd "github.com/corebank/banking/transaction-service/internal/command"
	"github.com/corebank/banking/transaction-service/internal/handler"
	txqry "github.com/corebank/banking/transaction-service/internal/query"
	"github.com/corebank/banking/transaction-service/internal/repository"
	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Amounts go over the wire as JSON numbers. Set once, before anything
	// serializes.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.LoadTransactionService()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New("transaction-service", cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("transaction service stopped", zap.Error(err))
	}
}

func run(cfg config.TransactionService, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database connection
	db, err := database.Open(ctx, "pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, repository.Migrations, "migrations"); err != nil {
		return err
	}

	// Redis connection
	redis, err := redisClient.NewClient(ctx, redisClient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return err
	}
	defer redis.Close()

	// Initialize event publisher
	publisher := events.NewPublisher(redis.Client)

	// CQRS: write repo, read repo
	writeRepo := repository.NewTransactionWriteRepository(db)
	readRepo := repository.NewTransactionReadRepository(db, redis.Client, cfg.ListCacheTTL, logger)

	// Command + Query services
	commandSvc := txcmd.NewTransactionCommandService(writeRepo, readRepo, publisher, logger)
	querySvc := txqry.NewTransactionQueryService(readRepo)

	transactionHandler := handler.NewTransactionHandler(commandSvc, querySvc)

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.LoggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Transaction routes
	v1 := router.Group("/api/bank/v1/transaction")
	{
		v1.PUT("", transactionHandler.RecordTransaction)
		v1.GET("", transactionHandler.ListTransactions)
		v1.DELETE("/:id", transactionHandler.DeleteTransaction)
	}

	hostname, _ := os.Hostname()
	subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
		Group:    "transaction-service-group",
		Consumer: "transaction-consumer-" + hostname,
		Stream:   events.AccountEventsStream,
		Handler:  commandSvc.HandleAccountEvent,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.Run(ctx, logger, srv, subscriber.Start)
}
