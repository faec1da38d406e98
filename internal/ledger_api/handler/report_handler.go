package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/office-suite/general-ledger/internal/ledger_api/service"
)

// ReportHandler serves all-account balances and the financial statements
type ReportHandler struct {
	balanceService service.BalanceService
	reportService  service.ReportService
	logger         *slog.Logger
	now            func() time.Time
}

func NewReportHandler(logger *slog.Logger, balanceService service.BalanceService, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{
		balanceService: balanceService,
		reportService:  reportService,
		logger:         logger,
		now:            time.Now,
	}
}

// Balances handles GET /general-ledger/balances
func (h *ReportHandler) Balances(c *gin.Context) {
	asOf, ok := h.asOf(c)
	if !ok {
		return
	}

	lines, err := h.balanceService.GetAllBalances(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, h.logger, "balances", err)
		return
	}

	RespondOK(c, "Balances retrieved", lines)
}

func (h *ReportHandler) TrialBalance(c *gin.Context) {
	asOf, ok := h.asOf(c)
	if !ok {
		return
	}

	tb, err := h.reportService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, h.logger, "trial balance", err)
		return
	}

	RespondOK(c, "Trial balance generated", tb)
}

func (h *ReportHandler) BalanceSheet(c *gin.Context) {
	asOf, ok := h.asOf(c)
	if !ok {
		return
	}

	bs, err := h.reportService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, h.logger, "balance sheet", err)
		return
	}

	RespondOK(c, "Balance sheet generated", bs)
}

func (h *ReportHandler) IncomeStatement(c *gin.Context) {
	start, end, ok := h.period(c)
	if !ok {
		return
	}

	is, err := h.reportService.IncomeStatement(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, h.logger, "income statement", err)
		return
	}

	RespondOK(c, "Income statement generated", is)
}

func (h *ReportHandler) CashFlow(c *gin.Context) {
	start, end, ok := h.period(c)
	if !ok {
		return
	}

	cf, err := h.reportService.CashFlowStatement(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, h.logger, "cash flow", err)
		return
	}

	RespondOK(c, "Cash flow statement generated", cf)
}

func (h *ReportHandler) FinancialRatios(c *gin.Context) {
	asOf, ok := h.asOf(c)
	if !ok {
		return
	}

	ratios, err := h.reportService.FinancialRatios(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, h.logger, "financial ratios", err)
		return
	}

	RespondOK(c, "Financial ratios generated", ratios)
}

func (h *ReportHandler) asOf(c *gin.Context) (time.Time, bool) {
	var q AsOfQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, bindingMessage(err))
		return time.Time{}, false
	}
	asOf, err := asOfDate(q, h.now())
	if err != nil {
		RespondBadRequest(c, err.Error())
		return time.Time{}, false
	}
	return asOf, true
}

func (h *ReportHandler) period(c *gin.Context) (time.Time, time.Time, bool) {
	var q PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, bindingMessage(err))
		return time.Time{}, time.Time{}, false
	}
	start, end, err := reportPeriod(q, h.now())
	if err != nil {
		RespondBadRequest(c, err.Error())
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
