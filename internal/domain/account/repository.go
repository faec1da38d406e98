package account

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ListFilter narrows the chart-of-accounts listing
type ListFilter struct {
	Keyword  string   // substring of code or name
	Category Category // empty means any
	Limit    int
	Offset   int
}

// Repository defines account persistence operations
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id int64) (*Account, error)
	Update(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]*Account, int64, error)

	CountChildren(ctx context.Context, id int64) (int64, error)
	CountEntries(ctx context.Context, id int64) (int64, error)

	// IsAncestorOrSelf reports whether ancestorID is nodeID or appears on nodeID's parent chain
	IsAncestorOrSelf(ctx context.Context, ancestorID, nodeID int64) (bool, error)

	// MissingIDs returns the ids from the input that have no account row
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountID int64
}

func (e ErrAccountNotFound) Error() string {
	return fmt.Sprintf("account not found: %d", e.AccountID)
}

// Is matches any ErrAccountNotFound when the target carries no id
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	return t.AccountID == 0 || t.AccountID == e.AccountID
}

// ErrDuplicateCode indicates account code uniqueness violation
type ErrDuplicateCode struct {
	Code string
}

func (e ErrDuplicateCode) Error() string {
	return "account code already exists: " + e.Code
}

func (e ErrDuplicateCode) IsValidation() bool { return true }

type ErrInvalidCategory struct {
	Category string
}

func (e ErrInvalidCategory) Error() string {
	return fmt.Sprintf("invalid account type %q, must be one of asset, liability, equity, revenue, expense", e.Category)
}

func (e ErrInvalidCategory) IsValidation() bool { return true }

// ErrHasChildren blocks deleting an account that still parents other accounts
type ErrHasChildren struct {
	AccountID int64
}

func (e ErrHasChildren) Error() string {
	return fmt.Sprintf("account %d has child accounts and cannot be deleted", e.AccountID)
}

func (e ErrHasChildren) IsValidation() bool { return true }

// ErrInUse blocks deleting an account referenced by entries
type ErrInUse struct {
	AccountID int64
}

func (e ErrInUse) Error() string {
	return fmt.Sprintf("account %d is referenced by ledger entries and cannot be deleted", e.AccountID)
}

func (e ErrInUse) IsValidation() bool { return true }

// ErrCategoryLocked rejects a category change once entries reference the account
type ErrCategoryLocked struct {
	AccountID int64
}

func (e ErrCategoryLocked) Error() string {
	return fmt.Sprintf("account %d has ledger entries, its type cannot be changed", e.AccountID)
}

func (e ErrCategoryLocked) IsValidation() bool { return true }

type ErrHierarchyCycle struct {
	AccountID int64
	ParentID  int64
}

func (e ErrHierarchyCycle) Error() string {
	return fmt.Sprintf("account %d cannot be placed under %d: it would create a cycle", e.AccountID, e.ParentID)
}

func (e ErrHierarchyCycle) IsValidation() bool { return true }

type ErrParentNotFound struct {
	ParentID int64
}

func (e ErrParentNotFound) Error() string {
	return fmt.Sprintf("parent account not found: %d", e.ParentID)
}

func (e ErrParentNotFound) IsValidation() bool { return true }
