package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/office-suite/general-ledger/internal/config"
	"github.com/office-suite/general-ledger/internal/domain/shared"
	"github.com/office-suite/general-ledger/internal/domain/voucher"
	"github.com/office-suite/general-ledger/internal/ledger_api/middleware"
	"github.com/office-suite/general-ledger/internal/ledger_api/service"
)

var errInvalidVoucherID = shared.Invalid("Invalid voucher ID")

// VoucherHandler handles HTTP requests for voucher posting and reads
type VoucherHandler struct {
	postingService service.PostingService
	pagination     config.PaginationConfig
	logger         *slog.Logger
}

func NewVoucherHandler(logger *slog.Logger, pagination config.PaginationConfig, postingService service.PostingService) *VoucherHandler {
	return &VoucherHandler{
		postingService: postingService,
		pagination:     pagination,
		logger:         logger,
	}
}

// Create handles POST /vouchers. The request correlation id travels with the voucher event.
func (h *VoucherHandler) Create(c *gin.Context) {
	var req PostVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, bindingMessage(err))
		return
	}

	v, err := h.postingService.PostVoucher(c.Request.Context(), req.toPostingRequest(), middleware.RequestCorrelationID(c))
	if err != nil {
		respondError(c, h.logger, "post voucher", err)
		return
	}

	RespondCreated(c, "Voucher posted", v)
}

// GetByID handles GET /vouchers/:id
func (h *VoucherHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, errInvalidVoucherID)
	if !ok {
		return
	}

	v, err := h.postingService.GetVoucher(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get voucher", err)
		return
	}

	RespondOK(c, "Voucher retrieved", v)
}

// List handles GET /vouchers, newest first
func (h *VoucherHandler) List(c *gin.Context) {
	var q ListVouchersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, bindingMessage(err))
		return
	}
	start, end, err := optionalPeriod(q.PeriodQuery)
	if err != nil {
		respondError(c, h.logger, "list vouchers", err)
		return
	}

	page, limit, offset := pageBounds(q.PaginationParams, h.pagination)
	vouchers, total, err := h.postingService.ListVouchers(c.Request.Context(), voucher.ListFilter{
		DateStart: start,
		DateEnd:   end,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondError(c, h.logger, "list vouchers", err)
		return
	}

	RespondWithPaginatedData(c, "Vouchers retrieved", vouchers, NewPagination(total, page, limit))
}
