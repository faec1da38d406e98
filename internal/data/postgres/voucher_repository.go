package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/office-suite/general-ledger/internal/domain/voucher"
	"github.com/office-suite/general-ledger/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

const voucherNumberConstraint = "general_ledger_vouchers_voucher_number_key"

const (
	insertVoucherSQL = `
		INSERT INTO general_ledger_vouchers (voucher_number, date, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	insertEntrySQL = `
		INSERT INTO general_ledger_entries (voucher_id, account_id, type, amount, description, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)
		RETURNING id`

	selectVoucherSQL = `
		SELECT id, voucher_number, date, description, created_at, updated_at
		FROM general_ledger_vouchers
		WHERE id = $1`

	selectVoucherEntriesSQL = `
		SELECT id, voucher_id, account_id, type, amount::text, description, created_at
		FROM general_ledger_entries
		WHERE voucher_id = $1
		ORDER BY id`

	listVouchersSQL = `
		SELECT id, voucher_number, date, description, created_at, updated_at
		FROM general_ledger_vouchers
		WHERE ($1::date IS NULL OR date >= $1::date)
		  AND ($2::date IS NULL OR date <= $2::date)
		ORDER BY date DESC, created_at DESC
		LIMIT $3 OFFSET $4`

	countVouchersSQL = `
		SELECT COUNT(*)
		FROM general_ledger_vouchers
		WHERE ($1::date IS NULL OR date >= $1::date)
		  AND ($2::date IS NULL OR date <= $2::date)`
)

// VoucherRepository stores vouchers and their entry lines
type VoucherRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewVoucherRepository(logger *slog.Logger, db *persistence.PostgresDB) voucher.Repository {
	return &VoucherRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *VoucherRepository) WithTx(tx pgx.Tx) voucher.Repository {
	return &VoucherRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts the voucher header and then each entry in input order.
// It must run inside a transaction; on error the caller rolls back.
func (r *VoucherRepository) Create(ctx context.Context, v *voucher.Voucher) error {
	err := r.querier.QueryRow(ctx, insertVoucherSQL,
		v.VoucherNumber,
		v.Date,
		v.Description,
		v.CreatedAt,
		v.UpdatedAt,
	).Scan(&v.ID)
	if err != nil {
		if persistence.IsUniqueViolation(err, voucherNumberConstraint) {
			return voucher.ErrDuplicateVoucherNumber{Number: v.Number()}
		}
		r.logger.Error("Failed to create voucher", "voucher_number", v.Number(), "error", err)
		return fmt.Errorf("failed to create voucher: %w", err)
	}

	for i := range v.Entries {
		e := &v.Entries[i]
		e.VoucherID = v.ID
		if e.CreatedAt.IsZero() {
			e.CreatedAt = v.CreatedAt
		}

		err := r.querier.QueryRow(ctx, insertEntrySQL,
			e.VoucherID,
			e.AccountID,
			string(e.Type),
			e.Amount.String(),
			e.Description,
			e.CreatedAt,
		).Scan(&e.ID)
		if err != nil {
			if persistence.IsForeignKeyViolation(err, "") {
				return voucher.ErrUnknownAccount{AccountID: e.AccountID}
			}
			r.logger.Error("Failed to create voucher entry",
				"voucher_id", v.ID,
				"line", i+1,
				"error", err,
			)
			return fmt.Errorf("failed to create voucher entry: %w", err)
		}
	}

	return nil
}

// GetByID loads a voucher together with its entries
func (r *VoucherRepository) GetByID(ctx context.Context, id int64) (*voucher.Voucher, error) {
	v, err := scanVoucher(r.querier.QueryRow(ctx, selectVoucherSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, voucher.ErrVoucherNotFound{VoucherID: id}
		}
		r.logger.Error("Failed to get voucher", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get voucher: %w", err)
	}

	rows, err := r.querier.Query(ctx, selectVoucherEntriesSQL, id)
	if err != nil {
		r.logger.Error("Failed to get voucher entries", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get voucher entries: %w", err)
	}
	defer rows.Close()

	v.Entries = []voucher.Entry{}
	for rows.Next() {
		var (
			e         voucher.Entry
			entryType string
			amount    string
		)
		if err := rows.Scan(&e.ID, &e.VoucherID, &e.AccountID, &entryType, &amount, &e.Description, &e.CreatedAt); err != nil {
			r.logger.Error("Failed to scan voucher entry", "id", id, "error", err)
			return nil, fmt.Errorf("failed to scan voucher entry: %w", err)
		}
		e.Type = voucher.EntryType(entryType)
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse entry amount %q: %w", amount, err)
		}
		v.Entries = append(v.Entries, e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over voucher entries", "id", id, "error", err)
		return nil, fmt.Errorf("error iterating over voucher entries: %w", err)
	}

	return v, nil
}

// List returns voucher headers, newest first
func (r *VoucherRepository) List(ctx context.Context, filter voucher.ListFilter) ([]*voucher.Voucher, int64, error) {
	var total int64
	if err := r.querier.QueryRow(ctx, countVouchersSQL, filter.DateStart, filter.DateEnd).Scan(&total); err != nil {
		r.logger.Error("Failed to count vouchers", "error", err)
		return nil, 0, fmt.Errorf("failed to count vouchers: %w", err)
	}

	rows, err := r.querier.Query(ctx, listVouchersSQL, filter.DateStart, filter.DateEnd, filter.Limit, filter.Offset)
	if err != nil {
		r.logger.Error("Failed to list vouchers", "error", err)
		return nil, 0, fmt.Errorf("failed to list vouchers: %w", err)
	}
	defer rows.Close()

	vouchers := make([]*voucher.Voucher, 0, filter.Limit)
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			r.logger.Error("Failed to scan voucher", "error", err)
			return nil, 0, fmt.Errorf("failed to scan voucher: %w", err)
		}
		vouchers = append(vouchers, v)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over vouchers", "error", err)
		return nil, 0, fmt.Errorf("error iterating over vouchers: %w", err)
	}

	return vouchers, total, nil
}

func scanVoucher(row pgx.Row) (*voucher.Voucher, error) {
	var (
		v    voucher.Voucher
		date time.Time
	)
	if err := row.Scan(&v.ID, &v.VoucherNumber, &date, &v.Description, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.Date = date.UTC()
	return &v, nil
}
