// Package postgres provides PostgreSQL implementations of the ledger repositories.
// Every repository can be rebound to a transaction with WithTx so posting stays atomic.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/office-suite/general-ledger/internal/domain/account"
	"github.com/office-suite/general-ledger/internal/platform/persistence"
)

const accountCodeConstraint = "general_ledger_accounts_code_key"

const (
	insertAccountSQL = `
		INSERT INTO general_ledger_accounts (code, name, type, parent_id, level, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	selectAccountSQL = `
		SELECT id, code, name, type, parent_id, level, status, created_at, updated_at
		FROM general_ledger_accounts
		WHERE id = $1`

	updateAccountSQL = `
		UPDATE general_ledger_accounts
		SET name = $1, type = $2, parent_id = $3, level = $4, status = $5, updated_at = $6
		WHERE id = $7`

	deleteAccountSQL = `DELETE FROM general_ledger_accounts WHERE id = $1`

	// $1 is an ILIKE pattern or empty; $2 a category or empty
	listAccountsSQL = `
		SELECT id, code, name, type, parent_id, level, status, created_at, updated_at
		FROM general_ledger_accounts
		WHERE ($1::text = '' OR code ILIKE $1 OR name ILIKE $1)
		  AND ($2::text = '' OR type = $2)
		ORDER BY code
		LIMIT $3 OFFSET $4`

	countAccountsSQL = `
		SELECT COUNT(*)
		FROM general_ledger_accounts
		WHERE ($1::text = '' OR code ILIKE $1 OR name ILIKE $1)
		  AND ($2::text = '' OR type = $2)`

	countChildrenSQL = `SELECT COUNT(*) FROM general_ledger_accounts WHERE parent_id = $1`

	countAccountEntriesSQL = `SELECT COUNT(*) FROM general_ledger_entries WHERE account_id = $1`

	// Walks up the parent chain from $2; UNION terminates even on cyclic data
	ancestorOrSelfSQL = `
		WITH RECURSIVE chain(id, parent_id) AS (
			SELECT id, parent_id FROM general_ledger_accounts WHERE id = $2
			UNION
			SELECT a.id, a.parent_id
			FROM general_ledger_accounts a
			JOIN chain c ON a.id = c.parent_id
		)
		SELECT EXISTS (SELECT 1 FROM chain WHERE id = $1)`

	missingAccountIDsSQL = `
		SELECT ids.id
		FROM unnest($1::bigint[]) AS ids(id)
		LEFT JOIN general_ledger_accounts a ON a.id = ids.id
		WHERE a.id IS NULL
		ORDER BY ids.id`
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts the account and sets its generated id
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	err := r.querier.QueryRow(ctx, insertAccountSQL,
		acc.Code,
		acc.Name,
		string(acc.Category),
		acc.ParentID,
		acc.Level,
		int(acc.Status),
		acc.CreatedAt,
		acc.UpdatedAt,
	).Scan(&acc.ID)
	if err != nil {
		if persistence.IsUniqueViolation(err, accountCodeConstraint) {
			return account.ErrDuplicateCode{Code: acc.Code}
		}
		r.logger.Error("Failed to create account", "code", acc.Code, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	acc, err := scanAccount(r.querier.QueryRow(ctx, selectAccountSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// Update writes the mutable fields of an account
func (r *AccountRepository) Update(ctx context.Context, acc *account.Account) error {
	result, err := r.querier.Exec(ctx, updateAccountSQL,
		acc.Name,
		string(acc.Category),
		acc.ParentID,
		acc.Level,
		int(acc.Status),
		acc.UpdatedAt,
		acc.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update account", "id", acc.ID, "error", err)
		return fmt.Errorf("failed to update account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountID: acc.ID}
	}

	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.querier.Exec(ctx, deleteAccountSQL, id)
	if err != nil {
		// An entry inserted after the guard check still holds the account
		if persistence.IsForeignKeyViolation(err, "") {
			return account.ErrInUse{AccountID: id}
		}
		r.logger.Error("Failed to delete account", "id", id, "error", err)
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountID: id}
	}

	return nil
}

// List returns one page of accounts ordered by code, plus the total number of matches
func (r *AccountRepository) List(ctx context.Context, filter account.ListFilter) ([]*account.Account, int64, error) {
	pattern := likePattern(filter.Keyword)
	category := string(filter.Category)

	var total int64
	if err := r.querier.QueryRow(ctx, countAccountsSQL, pattern, category).Scan(&total); err != nil {
		r.logger.Error("Failed to count accounts", "error", err)
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	rows, err := r.querier.Query(ctx, listAccountsSQL, pattern, category, filter.Limit, filter.Offset)
	if err != nil {
		r.logger.Error("Failed to list accounts", "error", err)
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*account.Account, 0, filter.Limit)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			r.logger.Error("Failed to scan account", "error", err)
			return nil, 0, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over accounts", "error", err)
		return nil, 0, fmt.Errorf("error iterating over accounts: %w", err)
	}

	return accounts, total, nil
}

func (r *AccountRepository) CountChildren(ctx context.Context, id int64) (int64, error) {
	return r.count(ctx, countChildrenSQL, id, "child accounts")
}

func (r *AccountRepository) CountEntries(ctx context.Context, id int64) (int64, error) {
	return r.count(ctx, countAccountEntriesSQL, id, "account entries")
}

func (r *AccountRepository) IsAncestorOrSelf(ctx context.Context, ancestorID, nodeID int64) (bool, error) {
	var found bool
	if err := r.querier.QueryRow(ctx, ancestorOrSelfSQL, ancestorID, nodeID).Scan(&found); err != nil {
		r.logger.Error("Failed to walk account hierarchy", "ancestor_id", ancestorID, "node_id", nodeID, "error", err)
		return false, fmt.Errorf("failed to walk account hierarchy: %w", err)
	}
	return found, nil
}

func (r *AccountRepository) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.querier.Query(ctx, missingAccountIDsSQL, ids)
	if err != nil {
		r.logger.Error("Failed to check account ids", "error", err)
		return nil, fmt.Errorf("failed to check account ids: %w", err)
	}
	defer rows.Close()

	var missing []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		missing = append(missing, id)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over account ids", "error", err)
		return nil, fmt.Errorf("error iterating over account ids: %w", err)
	}

	return missing, nil
}

func (r *AccountRepository) count(ctx context.Context, query string, id int64, what string) (int64, error) {
	var n int64
	if err := r.querier.QueryRow(ctx, query, id).Scan(&n); err != nil {
		r.logger.Error("Failed to count "+what, "id", id, "error", err)
		return 0, fmt.Errorf("failed to count %s: %w", what, err)
	}
	return n, nil
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		acc      account.Account
		category string
		status   int
	)
	err := row.Scan(
		&acc.ID,
		&acc.Code,
		&acc.Name,
		&category,
		&acc.ParentID,
		&acc.Level,
		&status,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	acc.Category = account.Category(category)
	acc.Status = account.Status(status)
	return &acc, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns a keyword into a substring ILIKE pattern; empty means no filter
func likePattern(keyword string) string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(keyword) + "%"
}
