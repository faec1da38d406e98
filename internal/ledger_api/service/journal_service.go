package service

import (
	"context"
	"log/slog"

	"github.com/office-suite/general-ledger/internal/domain/account"
	"github.com/office-suite/general-ledger/internal/domain/journal"
)

// JournalServiceImpl serves the Mongo read model; it can trail the ledger by a few seconds
type JournalServiceImpl struct {
	accountRepo account.Repository
	journalRepo journal.Repository
	logger      *slog.Logger
}

func NewJournalService(logger *slog.Logger, accountRepo account.Repository, journalRepo journal.Repository) JournalService {
	return &JournalServiceImpl{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		logger:      logger,
	}
}

// ListAccountJournal returns ErrAccountNotFound for an unknown account instead of an empty page
func (s *JournalServiceImpl) ListAccountJournal(ctx context.Context, q journal.Query) ([]journal.Line, int64, error) {
	if _, err := s.accountRepo.GetByID(ctx, q.AccountID); err != nil {
		return nil, 0, err
	}

	lines, total, err := s.journalRepo.ListByAccount(ctx, q)
	if err != nil {
		s.logger.Error("Failed to read account journal", "account_id", q.AccountID, "error", err)
		return nil, 0, err
	}
	return lines, total, nil
}
