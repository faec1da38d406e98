package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/office-suite/general-ledger/internal/domain/account"
	"github.com/office-suite/general-ledger/internal/domain/balance"
	"github.com/office-suite/general-ledger/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

// The voucher join sits inside the LEFT JOIN so entries of vouchers outside the window
// drop out entirely, while accounts without qualifying entries still produce a zero row.
const entryTotalsFrom = `
		FROM general_ledger_accounts a
		LEFT JOIN (
			general_ledger_entries e
			JOIN general_ledger_vouchers v
			  ON v.id = e.voucher_id
			 AND ($1::date IS NULL OR v.date >= $1::date)
			 AND v.date <= $2::date
		) ON e.account_id = a.id`

const (
	accountTotalsSQL = `
		SELECT a.id, a.code, a.name, a.type, a.status,
		       COALESCE(SUM(e.amount) FILTER (WHERE e.type = 'debit'), 0)::text,
		       COALESCE(SUM(e.amount) FILTER (WHERE e.type = 'credit'), 0)::text` + entryTotalsFrom + `
		WHERE (cardinality($3::text[]) = 0 OR a.type = ANY($3::text[]))
		  AND (NOT $4::boolean OR a.status = 1)
		GROUP BY a.id, a.code, a.name, a.type, a.status
		ORDER BY a.code`

	singleAccountTotalsSQL = `
		SELECT a.id, a.code, a.name, a.type, a.status,
		       COALESCE(SUM(e.amount) FILTER (WHERE e.type = 'debit'), 0)::text,
		       COALESCE(SUM(e.amount) FILTER (WHERE e.type = 'credit'), 0)::text` + entryTotalsFrom + `
		WHERE a.id = $3
		GROUP BY a.id, a.code, a.name, a.type, a.status`
)

// BalanceRepository aggregates entry totals per account for a date window
type BalanceRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewBalanceRepository(logger *slog.Logger, db *persistence.PostgresDB) balance.Repository {
	return &BalanceRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *BalanceRepository) Totals(ctx context.Context, q balance.Query) ([]balance.AccountTotals, error) {
	categories := make([]string, 0, len(q.Categories))
	for _, c := range q.Categories {
		categories = append(categories, string(c))
	}

	rows, err := r.querier.Query(ctx, accountTotalsSQL, q.Window.From, q.Window.To, categories, q.ActiveOnly)
	if err != nil {
		r.logger.Error("Failed to aggregate account totals", "window", q.Window.Key(), "error", err)
		return nil, fmt.Errorf("failed to aggregate account totals: %w", err)
	}
	defer rows.Close()

	totals := []balance.AccountTotals{}
	for rows.Next() {
		t, err := scanAccountTotals(rows)
		if err != nil {
			r.logger.Error("Failed to scan account totals", "error", err)
			return nil, fmt.Errorf("failed to scan account totals: %w", err)
		}
		totals = append(totals, *t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over account totals", "error", err)
		return nil, fmt.Errorf("error iterating over account totals: %w", err)
	}

	return totals, nil
}

func (r *BalanceRepository) AccountTotals(ctx context.Context, accountID int64, w balance.Window) (*balance.AccountTotals, error) {
	t, err := scanAccountTotals(r.querier.QueryRow(ctx, singleAccountTotalsSQL, w.From, w.To, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: accountID}
		}
		r.logger.Error("Failed to aggregate account totals", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to aggregate account totals: %w", err)
	}
	return t, nil
}

func scanAccountTotals(row pgx.Row) (*balance.AccountTotals, error) {
	var (
		t             balance.AccountTotals
		category      string
		status        int
		debit, credit string
	)
	if err := row.Scan(&t.AccountID, &t.Code, &t.Name, &category, &status, &debit, &credit); err != nil {
		return nil, err
	}

	var err error
	if t.Debit, err = decimal.NewFromString(debit); err != nil {
		return nil, fmt.Errorf("invalid debit total %q: %w", debit, err)
	}
	if t.Credit, err = decimal.NewFromString(credit); err != nil {
		return nil, fmt.Errorf("invalid credit total %q: %w", credit, err)
	}
	t.Category = account.Category(category)
	t.Status = account.Status(status)
	return &t, nil
}
