package handler

import (
	"github.com/office-suite/general-ledger/internal/domain/account"
	"github.com/office-suite/general-ledger/internal/domain/voucher"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest represents a request to create a chart-of-accounts entry.
// Omitted parent_id, level and status default to 0, 1 and active.
type CreateAccountRequest struct {
	Code     string `json:"code" binding:"required,max=50"`
	Name     string `json:"name" binding:"required,max=200"`
	Type     string `json:"type" binding:"required"`
	ParentID *int64 `json:"parent_id" binding:"omitempty,min=0"`
	Level    *int   `json:"level" binding:"omitempty,min=1"`
	Status   *int   `json:"status" binding:"omitempty,oneof=0 1"`
}

// UpdateAccountRequest replaces every mutable field; the code cannot change.
// Omitted fields take the same defaults as on create.
type UpdateAccountRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	Type     string `json:"type" binding:"required"`
	ParentID *int64 `json:"parent_id" binding:"omitempty,min=0"`
	Level    *int   `json:"level" binding:"omitempty,min=1"`
	Status   *int   `json:"status" binding:"omitempty,oneof=0 1"`
}

func accountAttributes(name string, category account.Category, parentID *int64, level, status *int) account.Attributes {
	attrs := account.Attributes{
		Name:     name,
		Category: category,
		Level:    1,
		Status:   account.StatusActive,
	}
	if parentID != nil {
		attrs.ParentID = *parentID
	}
	if level != nil {
		attrs.Level = *level
	}
	if status != nil {
		attrs.Status = account.Status(*status)
	}
	return attrs
}

// PostVoucherRequest is decoded loosely; field rules and the balance check live in voucher.NewVoucher
type PostVoucherRequest struct {
	Date          string         `json:"date"`
	Description   string         `json:"description"`
	VoucherNumber string         `json:"voucher_number"`
	Entries       []EntryRequest `json:"entries"`
}

type EntryRequest struct {
	AccountID   int64           `json:"account_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (r PostVoucherRequest) toPostingRequest() voucher.PostingRequest {
	entries := make([]voucher.EntryInput, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, voucher.EntryInput{
			AccountID:   e.AccountID,
			Type:        voucher.EntryType(e.Type),
			Amount:      e.Amount,
			Description: e.Description,
		})
	}
	return voucher.PostingRequest{
		Date:          r.Date,
		Description:   r.Description,
		VoucherNumber: r.VoucherNumber,
		Entries:       entries,
	}
}

// PaginationParams represents pagination parameters for list endpoints.
// Limit zero means the configured default.
type PaginationParams struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

type ListAccountsQuery struct {
	PaginationParams
	Keyword string `form:"keyword"`
	Type    string `form:"type"`
}

type ListVouchersQuery struct {
	PaginationParams
	PeriodQuery
}

type JournalQuery struct {
	PaginationParams
	PeriodQuery
}

// AsOfQuery carries the optional "date" parameter; absent means today
type AsOfQuery struct {
	Date string `form:"date" binding:"omitempty,ledger_date"`
}

// PeriodQuery carries an optional inclusive date window
type PeriodQuery struct {
	DateStart string `form:"date_start" binding:"omitempty,ledger_date"`
	DateEnd   string `form:"date_end" binding:"omitempty,ledger_date"`
}
