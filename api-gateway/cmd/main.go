package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corebank/banking/api-gateway/internal/proxy"
	"github.com/corebank/banking/shared/config"
	"github.com/corebank/banking/shared/logging"
	"github.com/corebank/banking/shared/middleware"
	"github.com/corebank/banking/shared/server"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadGateway()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New("api-gateway", cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	accounts := proxy.NewUpstream(cfg.AccountServiceURL, cfg.UpstreamTimeout, logger)
	ledger := proxy.NewUpstream(cfg.TransactionServiceURL, cfg.UpstreamTimeout, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.LoggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "api-gateway"})
	})

	v1 := router.Group("/api/bank/v1")
	{
		// Account service
		v1.POST("/account/current", accounts.Handle)
		v1.GET("/customer/:id", accounts.Handle)

		// Transaction service
		v1.PUT("/transaction", ledger.Handle)
		v1.GET("/transaction", ledger.Handle)
		v1.DELETE("/transaction/:id", ledger.Handle)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORS(cfg.AllowedOrigins)(router),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.Run(ctx, logger, srv); err != nil {
		logger.Fatal("api gateway stopped", zap.Error(err))
	}
}
