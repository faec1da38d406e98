package handler

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/office-suite/general-ledger/internal/config"
	"github.com/office-suite/general-ledger/internal/domain/account"
	"github.com/office-suite/general-ledger/internal/domain/balance"
	"github.com/office-suite/general-ledger/internal/domain/journal"
	"github.com/office-suite/general-ledger/internal/domain/report"
	"github.com/office-suite/general-ledger/internal/domain/voucher"
	"github.com/office-suite/general-ledger/internal/ledger_api/middleware"
	"github.com/stretchr/testify/mock"
)

var testPagination = config.PaginationConfig{DefaultLimit: 10, MaxLimit: 100}

// fixedNow is the clock handlers see in tests
var fixedNow = time.Date(2024, 5, 20, 15, 4, 5, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
	r := gin.New()
	r.Use(middleware.CorrelationID())
	return r
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) ListAccounts(ctx context.Context, filter account.ListFilter) ([]*account.Account, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*account.Account), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountService) GetAccount(ctx context.Context, id int64) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, code string, attrs account.Attributes) (*account.Account, error) {
	args := m.Called(ctx, code, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, id int64, attrs account.Attributes) (*account.Account, error) {
	args := m.Called(ctx, id, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPostingService struct {
	mock.Mock
}

func (m *MockPostingService) PostVoucher(ctx context.Context, req voucher.PostingRequest, correlationID string) (*voucher.Voucher, error) {
	args := m.Called(ctx, req, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*voucher.Voucher), args.Error(1)
}

func (m *MockPostingService) GetVoucher(ctx context.Context, id int64) (*voucher.Voucher, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*voucher.Voucher), args.Error(1)
}

func (m *MockPostingService) ListVouchers(ctx context.Context, filter voucher.ListFilter) ([]*voucher.Voucher, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*voucher.Voucher), args.Get(1).(int64), args.Error(2)
}

type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) GetAccountBalance(ctx context.Context, accountID int64, asOf time.Time) (*balance.Line, error) {
	args := m.Called(ctx, accountID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balance.Line), args.Error(1)
}

func (m *MockBalanceService) GetAllBalances(ctx context.Context, asOf time.Time) ([]balance.Line, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]balance.Line), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) TrialBalance(ctx context.Context, asOf time.Time) (*report.TrialBalance, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.TrialBalance), args.Error(1)
}

func (m *MockReportService) BalanceSheet(ctx context.Context, asOf time.Time) (*report.BalanceSheet, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.BalanceSheet), args.Error(1)
}

func (m *MockReportService) IncomeStatement(ctx context.Context, start, end time.Time) (*report.IncomeStatement, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.IncomeStatement), args.Error(1)
}

func (m *MockReportService) CashFlowStatement(ctx context.Context, start, end time.Time) (*report.CashFlowStatement, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.CashFlowStatement), args.Error(1)
}

func (m *MockReportService) FinancialRatios(ctx context.Context, asOf time.Time) (*report.FinancialRatios, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.FinancialRatios), args.Error(1)
}

type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) ListAccountJournal(ctx context.Context, q journal.Query) ([]journal.Line, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]journal.Line), args.Get(1).(int64), args.Error(2)
}
