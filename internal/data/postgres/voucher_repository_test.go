package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/office-suite/general-ledger/internal/domain/voucher"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var voucherColumns = []string{"id", "voucher_number", "date", "description", "created_at", "updated_at"}

func newPostedVoucher(now time.Time, number *string) *voucher.Voucher {
	return &voucher.Voucher{
		VoucherNumber: number,
		Date:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Description:   "Owner loan",
		CreatedAt:     now,
		UpdatedAt:     now,
		Entries: []voucher.Entry{
			{AccountID: 1, Type: voucher.EntryTypeDebit, Amount: decimal.RequireFromString("500.00"), Description: "cash"},
			{AccountID: 2, Type: voucher.EntryTypeCredit, Amount: decimal.RequireFromString("500.00")},
		},
	}
}

func TestVoucherRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &VoucherRepository{querier: mock, logger: newTestLogger()}
	now := time.Now().UTC()
	number := "V-0001"
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		v := newPostedVoucher(now, &number)

		mock.ExpectQuery(sqlPattern(insertVoucherSQL)).
			WithArgs(&number, date, "Owner loan", now, now).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(40)))
		mock.ExpectQuery(sqlPattern(insertEntrySQL)).
			WithArgs(int64(40), int64(1), "debit", "500", "cash", now).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(100)))
		mock.ExpectQuery(sqlPattern(insertEntrySQL)).
			WithArgs(int64(40), int64(2), "credit", "500", "", now).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(101)))

		require.NoError(t, repo.Create(ctx, v))
		assert.Equal(t, int64(40), v.ID)
		assert.Equal(t, int64(100), v.Entries[0].ID)
		assert.Equal(t, int64(101), v.Entries[1].ID)
		assert.Equal(t, int64(40), v.Entries[1].VoucherID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate number", func(t *testing.T) {
		mock.ExpectQuery(sqlPattern(insertVoucherSQL)).
			WithArgs(&number, date, "Owner loan", now, now).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: voucherNumberConstraint})

		err := repo.Create(ctx, newPostedVoucher(now, &number))
		var dup voucher.ErrDuplicateVoucherNumber
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "V-0001", dup.Number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown account on entry", func(t *testing.T) {
		mock.ExpectQuery(sqlPattern(insertVoucherSQL)).
			WithArgs((*string)(nil), date, "Owner loan", now, now).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(41)))
		mock.ExpectQuery(sqlPattern(insertEntrySQL)).
			WithArgs(int64(41), int64(1), "debit", "500", "cash", now).
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "general_ledger_entries_account_id_fkey"})

		err := repo.Create(ctx, newPostedVoucher(now, nil))
		assert.Equal(t, voucher.ErrUnknownAccount{AccountID: 1}, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("entry failure", func(t *testing.T) {
		mock.ExpectQuery(sqlPattern(insertVoucherSQL)).
			WithArgs((*string)(nil), date, "Owner loan", now, now).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))
		mock.ExpectQuery(sqlPattern(insertEntrySQL)).
			WithArgs(int64(42), int64(1), "debit", "500", "cash", now).
			WillReturnError(errors.New("disk full"))

		err := repo.Create(ctx, newPostedVoucher(now, nil))
		assert.ErrorContains(t, err, "failed to create voucher entry")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestVoucherRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &VoucherRepository{querier: mock, logger: newTestLogger()}
	now := time.Now().UTC()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(sqlPattern(selectVoucherSQL)).WithArgs(int64(40)).
			WillReturnRows(pgxmock.NewRows(voucherColumns).
				AddRow(int64(40), (*string)(nil), date, "Owner loan", now, now))
		mock.ExpectQuery(sqlPattern(selectVoucherEntriesSQL)).WithArgs(int64(40)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "voucher_id", "account_id", "type", "amount", "description", "created_at"}).
				AddRow(int64(100), int64(40), int64(1), "debit", "500.00", "cash", now).
				AddRow(int64(101), int64(40), int64(2), "credit", "500.00", "", now))

		v, err := repo.GetByID(ctx, 40)
		require.NoError(t, err)
		assert.Nil(t, v.VoucherNumber)
		assert.Equal(t, date, v.Date)
		require.Len(t, v.Entries, 2)
		assert.Equal(t, voucher.EntryTypeCredit, v.Entries[1].Type)
		assert.True(t, v.Entries[0].Amount.Equal(decimal.NewFromInt(500)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(sqlPattern(selectVoucherSQL)).WithArgs(int64(9)).WillReturnError(pgx.ErrNoRows)

		v, err := repo.GetByID(ctx, 9)
		assert.Nil(t, v)
		assert.ErrorIs(t, err, voucher.ErrVoucherNotFound{VoucherID: 9})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bad amount", func(t *testing.T) {
		mock.ExpectQuery(sqlPattern(selectVoucherSQL)).WithArgs(int64(40)).
			WillReturnRows(pgxmock.NewRows(voucherColumns).
				AddRow(int64(40), (*string)(nil), date, "Owner loan", now, now))
		mock.ExpectQuery(sqlPattern(selectVoucherEntriesSQL)).WithArgs(int64(40)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "voucher_id", "account_id", "type", "amount", "description", "created_at"}).
				AddRow(int64(100), int64(40), int64(1), "debit", "five", "", now))

		_, err := repo.GetByID(ctx, 40)
		assert.ErrorContains(t, err, "failed to parse entry amount")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestVoucherRepository_List(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &VoucherRepository{querier: mock, logger: newTestLogger()}
	now := time.Now().UTC()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	number := "V-7"

	t.Run("with start date", func(t *testing.T) {
		mock.ExpectQuery(sqlPattern(countVouchersSQL)).
			WithArgs(&start, (*time.Time)(nil)).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(11)))
		mock.ExpectQuery(sqlPattern(listVouchersSQL)).
			WithArgs(&start, (*time.Time)(nil), 10, 10).
			WillReturnRows(pgxmock.NewRows(voucherColumns).
				AddRow(int64(7), &number, start.AddDate(0, 2, 0), "March accrual", now, now))

		vouchers, total, err := repo.List(ctx, voucher.ListFilter{DateStart: &start, Limit: 10, Offset: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(11), total)
		require.Len(t, vouchers, 1)
		assert.Equal(t, "V-7", vouchers[0].Number())
		assert.Empty(t, vouchers[0].Entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		mock.ExpectQuery(sqlPattern(countVouchersSQL)).
			WithArgs((*time.Time)(nil), (*time.Time)(nil)).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
		mock.ExpectQuery(sqlPattern(listVouchersSQL)).
			WithArgs((*time.Time)(nil), (*time.Time)(nil), 10, 0).
			WillReturnError(errors.New("canceled"))

		_, _, err := repo.List(ctx, voucher.ListFilter{Limit: 10})
		assert.ErrorContains(t, err, "failed to list vouchers")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
