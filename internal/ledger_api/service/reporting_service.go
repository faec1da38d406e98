package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/office-suite/general-ledger/internal/domain/account"
	"github.com/office-suite/general-ledger/internal/domain/balance"
	"github.com/office-suite/general-ledger/internal/domain/cashflow"
	"github.com/office-suite/general-ledger/internal/domain/report"
	"github.com/office-suite/general-ledger/internal/domain/shared"
	"github.com/office-suite/general-ledger/internal/platform/cache"
	"golang.org/x/sync/errgroup"
)

// Cache key namespaces, one per statement
const (
	trialBalanceKey    = "trial-balance"
	balanceSheetKey    = "balance-sheet"
	incomeStatementKey = "income-statement"
	cashFlowKey        = "cash-flow"
)

// ReportServiceImpl implements the ReportService interface.
// Statements go through the report cache; a nil cache computes every request.
type ReportServiceImpl struct {
	balanceRepo  balance.Repository
	cashflowRepo cashflow.Repository
	cache        *cache.ReportCache
	logger       *slog.Logger
}

func NewReportService(logger *slog.Logger, balanceRepo balance.Repository, cashflowRepo cashflow.Repository, reportCache *cache.ReportCache) ReportService {
	return &ReportServiceImpl{
		balanceRepo:  balanceRepo,
		cashflowRepo: cashflowRepo,
		cache:        reportCache,
		logger:       logger,
	}
}

func (s *ReportServiceImpl) TrialBalance(ctx context.Context, asOf time.Time) (*report.TrialBalance, error) {
	var tb report.TrialBalance
	err := s.cache.FetchJSON(ctx, &tb, func(ctx context.Context) (any, error) {
		totals, err := s.balanceRepo.Totals(ctx, balance.Query{
			Window:     balance.AsOf(asOf),
			ActiveOnly: true,
		})
		if err != nil {
			return nil, err
		}
		return report.BuildTrialBalance(asOf, totals), nil
	}, trialBalanceKey, shared.FormatDate(asOf))
	if err != nil {
		s.logger.Error("Failed to build trial balance", "date", shared.FormatDate(asOf), "error", err)
		return nil, err
	}
	return &tb, nil
}

// BalanceSheet loads the debit-side and credit-side sections concurrently
func (s *ReportServiceImpl) BalanceSheet(ctx context.Context, asOf time.Time) (*report.BalanceSheet, error) {
	var bs report.BalanceSheet
	err := s.cache.FetchJSON(ctx, &bs, func(ctx context.Context) (any, error) {
		window := balance.AsOf(asOf)
		var assetsAndEquity, liabilities []balance.AccountTotals

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			assetsAndEquity, err = s.balanceRepo.Totals(gctx, balance.Query{
				Window:     window,
				Categories: []account.Category{account.CategoryAsset, account.CategoryEquity},
				ActiveOnly: true,
			})
			return err
		})
		g.Go(func() error {
			var err error
			liabilities, err = s.balanceRepo.Totals(gctx, balance.Query{
				Window:     window,
				Categories: []account.Category{account.CategoryLiability},
				ActiveOnly: true,
			})
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return report.BuildBalanceSheet(asOf, assetsAndEquity, liabilities), nil
	}, balanceSheetKey, shared.FormatDate(asOf))
	if err != nil {
		s.logger.Error("Failed to build balance sheet", "date", shared.FormatDate(asOf), "error", err)
		return nil, err
	}
	return &bs, nil
}

func (s *ReportServiceImpl) IncomeStatement(ctx context.Context, start, end time.Time) (*report.IncomeStatement, error) {
	window := balance.Between(start, end)

	var is report.IncomeStatement
	err := s.cache.FetchJSON(ctx, &is, func(ctx context.Context) (any, error) {
		var revenues, expenses []balance.AccountTotals

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			revenues, err = s.balanceRepo.Totals(gctx, balance.Query{
				Window:     window,
				Categories: []account.Category{account.CategoryRevenue},
				ActiveOnly: true,
			})
			return err
		})
		g.Go(func() error {
			var err error
			expenses, err = s.balanceRepo.Totals(gctx, balance.Query{
				Window:     window,
				Categories: []account.Category{account.CategoryExpense},
				ActiveOnly: true,
			})
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return report.BuildIncomeStatement(start, end, revenues, expenses), nil
	}, incomeStatementKey, window.Key())
	if err != nil {
		s.logger.Error("Failed to build income statement", "period", window.Key(), "error", err)
		return nil, err
	}
	return &is, nil
}

func (s *ReportServiceImpl) CashFlowStatement(ctx context.Context, start, end time.Time) (*report.CashFlowStatement, error) {
	window := balance.Between(start, end)

	var cf report.CashFlowStatement
	err := s.cache.FetchJSON(ctx, &cf, func(ctx context.Context) (any, error) {
		groups, err := s.cashflowRepo.TotalsByCategory(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return report.BuildCashFlowStatement(start, end, groups), nil
	}, cashFlowKey, window.Key())
	if err != nil {
		s.logger.Error("Failed to build cash flow statement", "period", window.Key(), "error", err)
		return nil, err
	}
	return &cf, nil
}

// FinancialRatios is a placeholder and never touches storage
func (s *ReportServiceImpl) FinancialRatios(_ context.Context, asOf time.Time) (*report.FinancialRatios, error) {
	ratios := report.BuildFinancialRatios(asOf)
	return &ratios, nil
}
