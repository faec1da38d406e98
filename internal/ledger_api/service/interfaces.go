package service

import (
	"context"
	"time"

	"github.com/office-suite/general-ledger/internal/domain/account"
	"github.com/office-suite/general-ledger/internal/domain/balance"
	"github.com/office-suite/general-ledger/internal/domain/journal"
	"github.com/office-suite/general-ledger/internal/domain/report"
	"github.com/office-suite/general-ledger/internal/domain/voucher"
)

// AccountService defines the chart-of-accounts operations
type AccountService interface {
	// ListAccounts returns one page of accounts ordered by code and the total number of matches
	ListAccounts(ctx context.Context, filter account.ListFilter) ([]*account.Account, int64, error)

	// GetAccount returns ErrAccountNotFound if the account doesn't exist
	GetAccount(ctx context.Context, id int64) (*account.Account, error)

	// CreateAccount returns ErrDuplicateCode if the code is taken and ErrParentNotFound for an unknown parent
	CreateAccount(ctx context.Context, code string, attrs account.Attributes) (*account.Account, error)

	// UpdateAccount replaces the mutable fields of an account
	UpdateAccount(ctx context.Context, id int64, attrs account.Attributes) (*account.Account, error)

	// DeleteAccount refuses accounts that still have children or entries
	DeleteAccount(ctx context.Context, id int64) error
}

// PostingService defines voucher operations
type PostingService interface {
	// PostVoucher validates and balances the request, then writes the voucher, its entries
	// and the outbox event in one transaction
	PostVoucher(ctx context.Context, req voucher.PostingRequest, correlationID string) (*voucher.Voucher, error)

	GetVoucher(ctx context.Context, id int64) (*voucher.Voucher, error)

	ListVouchers(ctx context.Context, filter voucher.ListFilter) ([]*voucher.Voucher, int64, error)
}

// BalanceService computes account balances as of a date
type BalanceService interface {
	GetAccountBalance(ctx context.Context, accountID int64, asOf time.Time) (*balance.Line, error)

	// GetAllBalances covers active accounts only, ordered by code
	GetAllBalances(ctx context.Context, asOf time.Time) ([]balance.Line, error)
}

// ReportService builds financial statements
type ReportService interface {
	TrialBalance(ctx context.Context, asOf time.Time) (*report.TrialBalance, error)
	BalanceSheet(ctx context.Context, asOf time.Time) (*report.BalanceSheet, error)
	IncomeStatement(ctx context.Context, start, end time.Time) (*report.IncomeStatement, error)
	CashFlowStatement(ctx context.Context, start, end time.Time) (*report.CashFlowStatement, error)
	FinancialRatios(ctx context.Context, asOf time.Time) (*report.FinancialRatios, error)
}

// JournalService reads the projected per-account journal
type JournalService interface {
	ListAccountJournal(ctx context.Context, q journal.Query) ([]journal.Line, int64, error)
}
