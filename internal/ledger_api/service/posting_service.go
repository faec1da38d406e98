package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/office-suite/general-ledger/internal/domain/account"
	"github.com/office-suite/general-ledger/internal/domain/outbox"
	"github.com/office-suite/general-ledger/internal/domain/shared"
	"github.com/office-suite/general-ledger/internal/domain/voucher"
	"github.com/office-suite/general-ledger/internal/platform/cache"
	"github.com/office-suite/general-ledger/internal/platform/metrics"
	"github.com/office-suite/general-ledger/internal/platform/persistence"
)

// PostingServiceImpl implements the PostingService interface
type PostingServiceImpl struct {
	db          persistence.TxRunner
	accountRepo account.Repository
	voucherRepo voucher.Repository
	outboxRepo  outbox.Repository
	cache       *cache.ReportCache
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewPostingService creates a new posting service. cache and metrics may be nil.
func NewPostingService(
	logger *slog.Logger,
	db persistence.TxRunner,
	accountRepo account.Repository,
	voucherRepo voucher.Repository,
	outboxRepo outbox.Repository,
	reportCache *cache.ReportCache,
	m *metrics.Metrics,
) PostingService {
	return &PostingServiceImpl{
		db:          db,
		accountRepo: accountRepo,
		voucherRepo: voucherRepo,
		outboxRepo:  outboxRepo,
		cache:       reportCache,
		metrics:     m,
		logger:      logger,
	}
}

// PostVoucher rejects invalid or unbalanced requests before opening a transaction
func (s *PostingServiceImpl) PostVoucher(ctx context.Context, req voucher.PostingRequest, correlationID string) (*voucher.Voucher, error) {
	v, err := voucher.NewVoucher(req)
	if err != nil {
		return nil, err
	}

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		missing, err := s.accountRepo.WithTx(tx).MissingIDs(ctx, v.AccountIDs())
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return voucher.ErrUnknownAccount{AccountID: missing[0]}
		}

		if err := s.voucherRepo.WithTx(tx).Create(ctx, v); err != nil {
			return err
		}

		msg, err := outbox.NewMessage(postedEvent(v, correlationID))
		if err != nil {
			return fmt.Errorf("failed to encode voucher event: %w", err)
		}
		return s.outboxRepo.WithTx(tx).Create(ctx, msg)
	})
	if err != nil {
		if !shared.IsValidation(err) {
			s.logger.Error("Failed to post voucher",
				"voucher_number", v.Number(),
				"correlation_id", correlationID,
				"error", err,
			)
		}
		return nil, err
	}

	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("Failed to invalidate report cache", "voucher_id", v.ID, "error", err)
	}
	s.metrics.VoucherPosted()

	debit, _ := voucher.Totals(v.Entries)
	s.logger.Info("Voucher posted",
		"voucher_id", v.ID,
		"voucher_number", v.Number(),
		"date", shared.FormatDate(v.Date),
		"entries", len(v.Entries),
		"amount", debit.String(),
		"correlation_id", correlationID,
	)

	return v, nil
}

func (s *PostingServiceImpl) GetVoucher(ctx context.Context, id int64) (*voucher.Voucher, error) {
	return s.voucherRepo.GetByID(ctx, id)
}

func (s *PostingServiceImpl) ListVouchers(ctx context.Context, filter voucher.ListFilter) ([]*voucher.Voucher, int64, error) {
	return s.voucherRepo.List(ctx, filter)
}

func postedEvent(v *voucher.Voucher, correlationID string) *shared.VoucherPostedEvent {
	entries := make([]shared.PostedEntryRecord, 0, len(v.Entries))
	for _, e := range v.Entries {
		entries = append(entries, shared.PostedEntryRecord{
			EntryID:     e.ID,
			AccountID:   e.AccountID,
			Type:        string(e.Type),
			Amount:      e.Amount,
			Description: e.Description,
		})
	}

	return &shared.VoucherPostedEvent{
		EventID:       uuid.New(),
		VoucherID:     v.ID,
		VoucherNumber: v.Number(),
		Date:          shared.FormatDate(v.Date),
		Description:   v.Description,
		CorrelationID: correlationID,
		PostedAt:      v.CreatedAt,
		Entries:       entries,
	}
}
