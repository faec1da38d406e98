package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/office-suite/general-ledger/internal/domain/cashflow"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCashflowRepository_TotalsByCategory(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &CashflowRepository{querier: mock, logger: newTestLogger()}
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	columns := []string{"type", "category", "sum"}

	t.Run("groups with uncategorized", func(t *testing.T) {
		sales := "sales"
		mock.ExpectQuery(sqlPattern(cashTotalsByCategorySQL)).
			WithArgs(from, to).
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow("expense", (*string)(nil), "300.00").
				AddRow("income", &sales, "1000.00"))

		totals, err := repo.TotalsByCategory(ctx, from, to)
		require.NoError(t, err)
		require.Len(t, totals, 2)

		assert.Equal(t, cashflow.TypeExpense, totals[0].Type)
		assert.Nil(t, totals[0].Category)
		assert.Equal(t, "300", totals[0].TotalAmount.String())
		require.NotNil(t, totals[1].Category)
		assert.Equal(t, "sales", *totals[1].Category)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty feed", func(t *testing.T) {
		mock.ExpectQuery(sqlPattern(cashTotalsByCategorySQL)).
			WithArgs(from, to).
			WillReturnRows(pgxmock.NewRows(columns))

		totals, err := repo.TotalsByCategory(ctx, from, to)
		require.NoError(t, err)
		assert.Empty(t, totals)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(sqlPattern(cashTotalsByCategorySQL)).
			WithArgs(from, to).
			WillReturnError(errors.New("relation does not exist"))

		_, err := repo.TotalsByCategory(ctx, from, to)
		assert.ErrorContains(t, err, "failed to aggregate cash transactions")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
