// Package balance derives account balances from aggregated entry totals.
// Balances are never stored; they are recomputed from the entries of vouchers inside a date window.
package balance

import (
	"context"
	"time"

	"github.com/office-suite/general-ledger/internal/domain/account"
	"github.com/office-suite/general-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Signed applies the category sign convention: debit-normal categories (asset, expense)
// report debit minus credit, all others report credit minus debit.
func Signed(category account.Category, debit, credit decimal.Decimal) decimal.Decimal {
	if category.DebitNormal() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// Window selects vouchers by date, both bounds inclusive. A nil From means no lower bound.
type Window struct {
	From *time.Time
	To   time.Time
}

// AsOf covers every voucher dated on or before day
func AsOf(day time.Time) Window {
	return Window{To: day}
}

// Between covers vouchers dated within [from, to]
func Between(from, to time.Time) Window {
	return Window{From: &from, To: to}
}

// Key renders the window for cache keys
func (w Window) Key() string {
	if w.From == nil {
		return "..." + shared.FormatDate(w.To)
	}
	return shared.FormatDate(*w.From) + "..." + shared.FormatDate(w.To)
}

// AccountTotals is the debit and credit sum of one account's entries within a window
type AccountTotals struct {
	AccountID int64
	Code      string
	Name      string
	Category  account.Category
	Status    account.Status
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// Balance is the signed balance under the category convention
func (t AccountTotals) Balance() decimal.Decimal {
	return Signed(t.Category, t.Debit, t.Credit)
}

// Line is the reported balance of one account
type Line struct {
	AccountID   int64            `json:"account_id"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Category    account.Category `json:"type"`
	DebitTotal  decimal.Decimal  `json:"debit_total"`
	CreditTotal decimal.Decimal  `json:"credit_total"`
	Balance     decimal.Decimal  `json:"balance"`
}

// Line reports the totals with the category-signed balance
func (t AccountTotals) Line() Line {
	return t.LineWithBalance(t.Balance())
}

// LineWithBalance reports the totals with a caller-chosen balance figure
func (t AccountTotals) LineWithBalance(b decimal.Decimal) Line {
	return Line{
		AccountID:   t.AccountID,
		Code:        t.Code,
		Name:        t.Name,
		Category:    t.Category,
		DebitTotal:  t.Debit,
		CreditTotal: t.Credit,
		Balance:     b,
	}
}

// Query selects the accounts to aggregate. Empty Categories means every category.
type Query struct {
	Window     Window
	Categories []account.Category
	ActiveOnly bool
}

// Repository aggregates entries per account
type Repository interface {
	// Totals returns one row per matching account ordered by code; accounts without entries carry zero totals
	Totals(ctx context.Context, q Query) ([]AccountTotals, error)
	// AccountTotals aggregates a single account regardless of its status
	AccountTotals(ctx context.Context, accountID int64, w Window) (*AccountTotals, error)
}
