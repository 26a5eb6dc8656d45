package api_gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/account-ledger/internal/api_gateway/handler"
	"github.com/account-ledger/internal/api_gateway/middleware"
	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether a backing dependency is reachable
type HealthCheck func(ctx context.Context) error

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	auth gin.HandlerFunc,
	accountHandler *handler.AccountHandler,
	transactionHandler *handler.TransactionHandler,
	health HealthCheck,
) {
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	v1 := r.Group("/api/v1", auth)
	{
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", accountHandler.Create)
			accounts.GET("", accountHandler.List)
			accounts.GET("/:id", accountHandler.GetByID)
			accounts.PATCH("/:id/status", accountHandler.UpdateStatus)
			accounts.POST("/:id/fund", transactionHandler.Fund)
			accounts.GET("/:id/transactions", transactionHandler.History)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				logger.Warn("Health check failed", "error", err)
				status, code = "unavailable", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{"status": status, "timestamp": time.Now().UTC()})
	})
}
