// Package journal is the per-account read model built from voucher events.
// It trails the ledger and is never used for balances or reports.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/office-suite/general-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Line is one projected entry, denormalized with its voucher header
type Line struct {
	EntryID            int64           `json:"entry_id"`
	VoucherID          int64           `json:"voucher_id"`
	VoucherNumber      string          `json:"voucher_number,omitempty"`
	AccountID          int64           `json:"account_id"`
	Date               time.Time       `json:"date"`
	Type               string          `json:"type"`
	Amount             decimal.Decimal `json:"amount"`
	Description        string          `json:"description,omitempty"`
	VoucherDescription string          `json:"voucher_description"`
	CorrelationID      string          `json:"correlation_id,omitempty"`
	PostedAt           time.Time       `json:"posted_at"`
	ProjectedAt        time.Time       `json:"projected_at"`
}

// Query pages through one account's lines, newest first
type Query struct {
	AccountID int64
	DateStart *time.Time
	DateEnd   *time.Time
	Limit     int
	Offset    int
}

// Repository stores projected lines
type Repository interface {
	// ReplaceVoucher makes the stored lines of a voucher equal to lines; replaying an event is a no-op
	ReplaceVoucher(ctx context.Context, voucherID int64, lines []Line) error
	ListByAccount(ctx context.Context, q Query) ([]Line, int64, error)
}

// LinesFromEvent flattens a voucher event into one line per entry
func LinesFromEvent(event *shared.VoucherPostedEvent, projectedAt time.Time) ([]Line, error) {
	if event.VoucherID <= 0 {
		return nil, fmt.Errorf("event %s has no voucher id", event.EventID)
	}
	date, err := shared.ParseDate(event.Date)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", event.EventID, err)
	}

	lines := make([]Line, 0, len(event.Entries))
	for _, e := range event.Entries {
		lines = append(lines, Line{
			EntryID:            e.EntryID,
			VoucherID:          event.VoucherID,
			VoucherNumber:      event.VoucherNumber,
			AccountID:          e.AccountID,
			Date:               date,
			Type:               e.Type,
			Amount:             e.Amount,
			Description:        e.Description,
			VoucherDescription: event.Description,
			CorrelationID:      event.CorrelationID,
			PostedAt:           event.PostedAt,
			ProjectedAt:        projectedAt,
		})
	}
	return lines, nil
}
