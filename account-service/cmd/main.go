package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountcmd "github.com/corebank/banking/account-service/internal/command"
	"github.com/corebank/banking/account-service/internal/handler"
	"github.com/corebank/banking/account-service/internal/ledger"
	accountqry "github.com/corebank/banking/account-service/internal/query"
	"github.com/corebank/banking/account-service/internal/repository"
	"github.com/corebank/banking/shared/config"
	"github.com/corebank/banking/shared/database"
	"github.com/corebank/banking/shared/events"
	"github.com/corebank/banking/shared/logging"
	"github.com/corebank/banking/shared/middleware"
	redisClient "github.com/corebank/banking/shared/redis"
	"github.com/corebank/banking/shared/server"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Amounts go over the wire as JSON numbers. Set once, before anything
	// serializes.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.LoadAccountService()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New("account-service", cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("account service stopped", zap.Error(err))
	}
}

func run(cfg config.AccountService, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database connection (write store)
	db, err := database.Open(ctx, "postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, repository.Migrations, "migrations"); err != nil {
		return err
	}

	// Redis connection (read model store + event streaming)
	redis, err := redisClient.NewClient(ctx, redisClient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return err
	}
	defer redis.Close()

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis.Client)

	accounts := repository.NewAccountWriteRepository(db)
	customers := repository.NewCustomerReadRepository(db, redis.Client, cfg.CustomerCacheTTL, logger)
	ledgerClient := ledger.NewClient(ledger.Options{
		BaseURL:        cfg.LedgerBaseURL,
		Timeout:        cfg.LedgerTimeout,
		BreakerEnabled: cfg.LedgerBreakerEnabled,
	}, logger)

	commandSvc := accountcmd.NewAccountCommandService(customers, accounts, ledgerClient, customers, publisher, logger)
	querySvc := accountqry.NewCustomerQueryService(customers, ledgerClient, logger)

	accountHandler := handler.NewAccountHandler(commandSvc)
	customerHandler := handler.NewCustomerHandler(querySvc)

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.LoggingMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/bank/v1")
	{
		v1.POST("/account/current", accountHandler.OpenCurrentAccount)
		v1.GET("/customer/:id", customerHandler.GetCustomer)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORS(cfg.AllowedOrigins)(router),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.Run(ctx, logger, srv)
}
