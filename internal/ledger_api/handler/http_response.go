package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/office-suite/general-ledger/internal/domain/account"
	"github.com/office-suite/general-ledger/internal/domain/shared"
	"github.com/office-suite/general-ledger/internal/domain/voucher"
	"github.com/office-suite/general-ledger/internal/ledger_api/middleware"
)

const internalErrorMessage = "An internal server error occurred"

// Response is the envelope of every API answer
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Timestamp  string      `json:"timestamp"`
}

// Pagination describes the page of a list response
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

// NewPagination computes the page count, rounding up
func NewPagination(total int64, page, limit int) *Pagination {
	pages := total / int64(limit)
	if total%int64(limit) > 0 {
		pages++
	}
	return &Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}

func Timestamp() string {
	return time.Now().UTC().Format(middleware.TimestampLayout)
}

// RespondWithData sends a success envelope
func RespondWithData(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: Timestamp(),
	})
}

// RespondWithPaginatedData sends a success envelope carrying pagination
func RespondWithPaginatedData(c *gin.Context, message string, data interface{}, p *Pagination) {
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: p,
		Timestamp:  Timestamp(),
	})
}

// RespondWithError sends an error envelope
func RespondWithError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success:   false,
		Message:   message,
		Timestamp: Timestamp(),
	})
}

// RespondOK sends a 200 OK response with data
func RespondOK(c *gin.Context, message string, data interface{}) {
	RespondWithData(c, http.StatusOK, message, data)
}

// RespondCreated sends a 201 Created response with data
func RespondCreated(c *gin.Context, message string, data interface{}) {
	RespondWithData(c, http.StatusCreated, message, data)
}

// RespondBadRequest sends a 400 Bad Request response with an error
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, message)
}

// RespondNotFound sends a 404 Not Found response with an error
func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, message)
}

// RespondInternalError hides the cause from the caller
func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, internalErrorMessage)
}

// respondError maps domain errors onto status codes: not-found 404, validation 400, anything else 500.
// Only the 500 branch is logged at error level.
func respondError(c *gin.Context, logger *slog.Logger, op string, err error) {
	switch {
	case isNotFound(err):
		RespondNotFound(c, err.Error())
	case shared.IsValidation(err):
		logger.Warn("Rejected request",
			"operation", op,
			"error", err,
			"correlation_id", middleware.RequestCorrelationID(c),
		)
		RespondBadRequest(c, err.Error())
	default:
		logger.Error("Request failed",
			"operation", op,
			"error", err,
			"correlation_id", middleware.RequestCorrelationID(c),
		)
		RespondInternalError(c)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, account.ErrAccountNotFound{}) || errors.Is(err, voucher.ErrVoucherNotFound{})
}
