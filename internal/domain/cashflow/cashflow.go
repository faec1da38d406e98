// Package cashflow reads the external cash-transaction feed. The ledger never writes to it.
package cashflow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a cash movement
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// CategoryTotal is the summed amount of one (type, category) group
type CategoryTotal struct {
	Type        TransactionType `json:"type"`
	Category    *string         `json:"category"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Repository aggregates the cash feed
type Repository interface {
	// TotalsByCategory groups transactions dated within [from, to] by type and category
	TotalsByCategory(ctx context.Context, from, to time.Time) ([]CategoryTotal, error)
}
