package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/office-suite/general-ledger/internal/domain/cashflow"
	"github.com/office-suite/general-ledger/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

const cashTotalsByCategorySQL = `
		SELECT type, category, SUM(amount)::text
		FROM cash_transactions
		WHERE transaction_date >= $1 AND transaction_date <= $2
		GROUP BY type, category
		ORDER BY type, category`

// CashflowRepository reads the cash transaction feed
type CashflowRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewCashflowRepository(logger *slog.Logger, db *persistence.PostgresDB) cashflow.Repository {
	return &CashflowRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *CashflowRepository) TotalsByCategory(ctx context.Context, from, to time.Time) ([]cashflow.CategoryTotal, error) {
	rows, err := r.querier.Query(ctx, cashTotalsByCategorySQL, from, to)
	if err != nil {
		r.logger.Error("Failed to aggregate cash transactions", "error", err)
		return nil, fmt.Errorf("failed to aggregate cash transactions: %w", err)
	}
	defer rows.Close()

	totals := []cashflow.CategoryTotal{}
	for rows.Next() {
		var (
			txType string
			total  cashflow.CategoryTotal
			amount string
		)
		if err := rows.Scan(&txType, &total.Category, &amount); err != nil {
			r.logger.Error("Failed to scan cash totals", "error", err)
			return nil, fmt.Errorf("failed to scan cash totals: %w", err)
		}
		total.Type = cashflow.TransactionType(txType)
		if total.TotalAmount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse cash total %q: %w", amount, err)
		}
		totals = append(totals, total)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over cash totals", "error", err)
		return nil, fmt.Errorf("error iterating over cash totals: %w", err)
	}

	return totals, nil
}
