// Package ledger_api wires the general ledger REST API: chart of accounts, voucher posting,
// balances and financial statements under /api/finance.
package ledger_api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/office-suite/general-ledger/internal/config"
	"github.com/office-suite/general-ledger/internal/ledger_api/handler"
	"github.com/office-suite/general-ledger/internal/ledger_api/service"
	"github.com/office-suite/general-ledger/internal/platform/metrics"
)

// Services are the application services behind the API
type Services struct {
	Accounts service.AccountService
	Posting  service.PostingService
	Balances service.BalanceService
	Reports  service.ReportService
	Journal  service.JournalService
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger          *slog.Logger
	httpServer      *http.Server
	httpRouter      *gin.Engine
	shutdownTimeout time.Duration
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, svc Services, m *metrics.Metrics) *Server {
	if cfg.Application.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	setupRouter(log, httpRouter, Handlers{
		Accounts: handler.NewAccountHandler(log, cfg.Pagination, svc.Accounts, svc.Balances, svc.Journal),
		Vouchers: handler.NewVoucherHandler(log, cfg.Pagination, svc.Posting),
		Reports:  handler.NewReportHandler(log, svc.Balances, svc.Reports),
	}, m, !cfg.Application.IsProduction())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:          log,
		httpServer:      httpServer,
		httpRouter:      httpRouter,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests within the configured shutdown timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
