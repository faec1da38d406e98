package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/office-suite/general-ledger/internal/domain/balance"
)

// BalanceServiceImpl implements the BalanceService interface
type BalanceServiceImpl struct {
	balanceRepo balance.Repository
	logger      *slog.Logger
}

func NewBalanceService(logger *slog.Logger, balanceRepo balance.Repository) BalanceService {
	return &BalanceServiceImpl{
		balanceRepo: balanceRepo,
		logger:      logger,
	}
}

// GetAccountBalance answers for inactive accounts too
func (s *BalanceServiceImpl) GetAccountBalance(ctx context.Context, accountID int64, asOf time.Time) (*balance.Line, error) {
	totals, err := s.balanceRepo.AccountTotals(ctx, accountID, balance.AsOf(asOf))
	if err != nil {
		return nil, err
	}
	line := totals.Line()
	return &line, nil
}

func (s *BalanceServiceImpl) GetAllBalances(ctx context.Context, asOf time.Time) ([]balance.Line, error) {
	totals, err := s.balanceRepo.Totals(ctx, balance.Query{
		Window:     balance.AsOf(asOf),
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}

	lines := make([]balance.Line, 0, len(totals))
	for _, t := range totals {
		lines = append(lines, t.Line())
	}
	return lines, nil
}
