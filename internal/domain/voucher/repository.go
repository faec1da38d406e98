package voucher

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ListFilter restricts vouchers to an inclusive date window; nil bounds are open
type ListFilter struct {
	DateStart *time.Time
	DateEnd   *time.Time
	Limit     int
	Offset    int
}

// Repository persists vouchers together with their entries
type Repository interface {
	// Create inserts the voucher row and then its entries in input order, assigning ids
	Create(ctx context.Context, v *Voucher) error
	GetByID(ctx context.Context, id int64) (*Voucher, error)
	List(ctx context.Context, filter ListFilter) ([]*Voucher, int64, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrVoucherNotFound indicates missing voucher
type ErrVoucherNotFound struct {
	VoucherID int64
}

func (e ErrVoucherNotFound) Error() string {
	return fmt.Sprintf("voucher not found: %d", e.VoucherID)
}

func (e ErrVoucherNotFound) Is(target error) bool {
	t, ok := target.(ErrVoucherNotFound)
	if !ok {
		return false
	}
	return t.VoucherID == 0 || t.VoucherID == e.VoucherID
}

// ErrUnknownAccount is returned when an entry references an account that does not exist
type ErrUnknownAccount struct {
	AccountID int64
}

func (e ErrUnknownAccount) Error() string {
	return fmt.Sprintf("entry references unknown account: %d", e.AccountID)
}

func (e ErrUnknownAccount) IsValidation() bool { return true }

type ErrDuplicateVoucherNumber struct {
	Number string
}

func (e ErrDuplicateVoucherNumber) Error() string {
	return "voucher number already exists: " + e.Number
}

func (e ErrDuplicateVoucherNumber) IsValidation() bool { return true }
