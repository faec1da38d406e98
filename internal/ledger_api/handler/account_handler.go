package handler

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/office-suite/general-ledger/internal/config"
	"github.com/office-suite/general-ledger/internal/domain/account"
	"github.com/office-suite/general-ledger/internal/domain/journal"
	"github.com/office-suite/general-ledger/internal/domain/shared"
	"github.com/office-suite/general-ledger/internal/ledger_api/service"
)

var errInvalidAccountID = shared.Invalid("Invalid account ID")

// AccountHandler handles the chart-of-accounts endpoints, including the per-account
// balance and journal reads
type AccountHandler struct {
	accountService service.AccountService
	balanceService service.BalanceService
	journalService service.JournalService
	pagination     config.PaginationConfig
	logger         *slog.Logger
	now            func() time.Time
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(
	logger *slog.Logger,
	pagination config.PaginationConfig,
	accountService service.AccountService,
	balanceService service.BalanceService,
	journalService service.JournalService,
) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		balanceService: balanceService,
		journalService: journalService,
		pagination:     pagination,
		logger:         logger,
		now:            time.Now,
	}
}

// List handles GET /accounts with keyword and type filters
func (h *AccountHandler) List(c *gin.Context) {
	var q ListAccountsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, bindingMessage(err))
		return
	}

	var category account.Category
	if q.Type != "" {
		parsed, err := account.ParseCategory(q.Type)
		if err != nil {
			respondError(c, h.logger, "list accounts", err)
			return
		}
		category = parsed
	}

	page, limit, offset := pageBounds(q.PaginationParams, h.pagination)
	accounts, total, err := h.accountService.ListAccounts(c.Request.Context(), account.ListFilter{
		Keyword:  q.Keyword,
		Category: category,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondError(c, h.logger, "list accounts", err)
		return
	}

	RespondWithPaginatedData(c, "Accounts retrieved", accounts, NewPagination(total, page, limit))
}

// Create handles POST /accounts
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, bindingMessage(err))
		return
	}

	category, err := account.ParseCategory(req.Type)
	if err != nil {
		respondError(c, h.logger, "create account", err)
		return
	}

	attrs := accountAttributes(req.Name, category, req.ParentID, req.Level, req.Status)
	acc, err := h.accountService.CreateAccount(c.Request.Context(), req.Code, attrs)
	if err != nil {
		respondError(c, h.logger, "create account", err)
		return
	}

	RespondCreated(c, "Account created", acc)
}

// GetByID handles GET /accounts/:id
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}

	acc, err := h.accountService.GetAccount(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get account", err)
		return
	}

	RespondOK(c, "Account retrieved", acc)
}

// Update handles PUT /accounts/:id
func (h *AccountHandler) Update(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, bindingMessage(err))
		return
	}

	category, err := account.ParseCategory(req.Type)
	if err != nil {
		respondError(c, h.logger, "update account", err)
		return
	}

	attrs := accountAttributes(req.Name, category, req.ParentID, req.Level, req.Status)
	acc, err := h.accountService.UpdateAccount(c.Request.Context(), id, attrs)
	if err != nil {
		respondError(c, h.logger, "update account", err)
		return
	}

	RespondOK(c, "Account updated", acc)
}

// Delete handles DELETE /accounts/:id
func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "delete account", err)
		return
	}

	RespondOK(c, "Account deleted", nil)
}

// Balance handles GET /accounts/:id/balance
func (h *AccountHandler) Balance(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}

	var q AsOfQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, bindingMessage(err))
		return
	}
	asOf, err := asOfDate(q, h.now())
	if err != nil {
		respondError(c, h.logger, "account balance", err)
		return
	}

	line, err := h.balanceService.GetAccountBalance(c.Request.Context(), id, asOf)
	if err != nil {
		respondError(c, h.logger, "account balance", err)
		return
	}

	RespondOK(c, "Account balance retrieved", line)
}

// Journal handles GET /accounts/:id/journal, served from the projected read model
func (h *AccountHandler) Journal(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}

	var q JournalQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, bindingMessage(err))
		return
	}
	start, end, err := optionalPeriod(q.PeriodQuery)
	if err != nil {
		respondError(c, h.logger, "account journal", err)
		return
	}

	page, limit, offset := pageBounds(q.PaginationParams, h.pagination)
	lines, total, err := h.journalService.ListAccountJournal(c.Request.Context(), journal.Query{
		AccountID: id,
		DateStart: start,
		DateEnd:   end,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondError(c, h.logger, "account journal", err)
		return
	}

	RespondWithPaginatedData(c, "Account journal retrieved", lines, NewPagination(total, page, limit))
}

func (h *AccountHandler) accountID(c *gin.Context) (int64, bool) {
	return parseID(c, errInvalidAccountID)
}

// parseID reads a positive :id path parameter, answering 400 otherwise
func parseID(c *gin.Context, invalid error) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(c, invalid.Error())
		return 0, false
	}
	return id, true
}
