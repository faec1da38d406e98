package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/office-suite/general-ledger/internal/domain/account"
	"github.com/office-suite/general-ledger/internal/platform/cache"
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accountRepo account.Repository
	cache       *cache.ReportCache
	logger      *slog.Logger
}

// NewAccountService creates a new account service. Reports list accounts by code, name and status,
// so every successful write invalidates reportCache.
func NewAccountService(logger *slog.Logger, accountRepo account.Repository, reportCache *cache.ReportCache) AccountService {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
		cache:       reportCache,
		logger:      logger,
	}
}

func (s *AccountServiceImpl) ListAccounts(ctx context.Context, filter account.ListFilter) ([]*account.Account, int64, error) {
	return s.accountRepo.List(ctx, filter)
}

func (s *AccountServiceImpl) GetAccount(ctx context.Context, id int64) (*account.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

// CreateAccount validates the fields, checks the parent and inserts the account
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, code string, attrs account.Attributes) (*account.Account, error) {
	acc, err := account.NewAccount(code, attrs)
	if err != nil {
		return nil, err
	}

	if err := s.ensureParent(ctx, acc.ParentID); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, err
	}

	s.invalidateReports(ctx, acc.ID)
	s.logger.Info("Account created",
		"account_id", acc.ID,
		"code", acc.Code,
		"type", string(acc.Category),
	)
	return acc, nil
}

// UpdateAccount rejects a parent that would close a cycle and a type change once entries exist
func (s *AccountServiceImpl) UpdateAccount(ctx context.Context, id int64, attrs account.Attributes) (*account.Account, error) {
	acc, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *acc
	if err := updated.Apply(attrs); err != nil {
		return nil, err
	}

	if updated.ParentID != 0 {
		if err := s.ensureParent(ctx, updated.ParentID); err != nil {
			return nil, err
		}
		cyclic, err := s.accountRepo.IsAncestorOrSelf(ctx, id, updated.ParentID)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return nil, account.ErrHierarchyCycle{AccountID: id, ParentID: updated.ParentID}
		}
	}

	if updated.Category != acc.Category {
		entries, err := s.accountRepo.CountEntries(ctx, id)
		if err != nil {
			return nil, err
		}
		if entries > 0 {
			return nil, account.ErrCategoryLocked{AccountID: id}
		}
	}

	if err := s.accountRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.invalidateReports(ctx, id)
	s.logger.Info("Account updated", "account_id", id, "code", updated.Code)
	return &updated, nil
}

// DeleteAccount checks existence, then children, then entries
func (s *AccountServiceImpl) DeleteAccount(ctx context.Context, id int64) error {
	if _, err := s.accountRepo.GetByID(ctx, id); err != nil {
		return err
	}

	children, err := s.accountRepo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return account.ErrHasChildren{AccountID: id}
	}

	entries, err := s.accountRepo.CountEntries(ctx, id)
	if err != nil {
		return err
	}
	if entries > 0 {
		return account.ErrInUse{AccountID: id}
	}

	if err := s.accountRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateReports(ctx, id)
	s.logger.Info("Account deleted", "account_id", id)
	return nil
}

func (s *AccountServiceImpl) ensureParent(ctx context.Context, parentID int64) error {
	if parentID == 0 {
		return nil
	}
	_, err := s.accountRepo.GetByID(ctx, parentID)
	if errors.Is(err, account.ErrAccountNotFound{}) {
		return account.ErrParentNotFound{ParentID: parentID}
	}
	return err
}

func (s *AccountServiceImpl) invalidateReports(ctx context.Context, accountID int64) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("Failed to invalidate report cache", "account_id", accountID, "error", err)
	}
}
