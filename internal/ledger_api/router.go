package ledger_api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/office-suite/general-ledger/internal/ledger_api/handler"
	"github.com/office-suite/general-ledger/internal/ledger_api/middleware"
	"github.com/office-suite/general-ledger/internal/platform/metrics"
)

// Handlers groups the endpoint handlers mounted by setupRouter
type Handlers struct {
	Accounts *handler.AccountHandler
	Vouchers *handler.VoucherHandler
	Reports  *handler.ReportHandler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, h Handlers, m *metrics.Metrics, isDevelopment bool) {
	handler.RegisterValidators()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecureHeaders(isDevelopment))
	r.Use(m.GinMiddleware())

	api := r.Group("/api/finance")
	{
		ledger := api.Group("/general-ledger")
		{
			accounts := ledger.Group("/accounts")
			{
				accounts.GET("", h.Accounts.List)
				accounts.POST("", h.Accounts.Create)
				accounts.GET("/:id", h.Accounts.GetByID)
				accounts.PUT("/:id", h.Accounts.Update)
				accounts.DELETE("/:id", h.Accounts.Delete)
				accounts.GET("/:id/balance", h.Accounts.Balance)
				accounts.GET("/:id/journal", h.Accounts.Journal)
			}

			vouchers := ledger.Group("/vouchers")
			{
				vouchers.GET("", h.Vouchers.List)
				vouchers.POST("", h.Vouchers.Create)
				vouchers.GET("/:id", h.Vouchers.GetByID)
			}

			ledger.GET("/balances", h.Reports.Balances)
		}

		reporting := api.Group("/financial-reporting")
		{
			reporting.GET("/trial-balance", h.Reports.TrialBalance)
			reporting.GET("/balance-sheet", h.Reports.BalanceSheet)
			reporting.GET("/income-statement", h.Reports.IncomeStatement)
			reporting.GET("/cash-flow", h.Reports.CashFlow)
			reporting.GET("/financial-ratios", h.Reports.FinancialRatios)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": handler.Timestamp()})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.NoRoute(func(c *gin.Context) {
		handler.RespondNotFound(c, "Route not found")
	})
}
