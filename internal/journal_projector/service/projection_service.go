package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/office-suite/general-ledger/internal/domain/journal"
	"github.com/office-suite/general-ledger/internal/domain/shared"
	"github.com/office-suite/general-ledger/internal/platform/metrics"
)

type ProjectionServiceImpl struct {
	journalRepo journal.Repository
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

func NewProjectionService(logger *slog.Logger, journalRepo journal.Repository, m *metrics.Metrics) ProjectionService {
	return &ProjectionServiceImpl{
		journalRepo: journalRepo,
		metrics:     m,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ProjectVoucher replaces the stored lines of the voucher, so a redelivered event
// leaves the read model unchanged.
func (s *ProjectionServiceImpl) ProjectVoucher(ctx context.Context, event *shared.VoucherPostedEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	lines, err := journal.LinesFromEvent(event, s.now())
	if err != nil {
		logger.Error("Voucher event cannot be projected", "event_id", event.EventID.String(), "error", err)
		return ErrInvalidEvent{Err: err}
	}

	if err := s.journalRepo.ReplaceVoucher(ctx, event.VoucherID, lines); err != nil {
		s.metrics.Projection(metrics.ResultRetried)
		logger.Error("Failed to write journal lines",
			"event_id", event.EventID.String(),
			"voucher_id", event.VoucherID,
			"error", err,
		)
		return fmt.Errorf("projecting voucher %d: %w", event.VoucherID, err)
	}

	s.metrics.Projection(metrics.ResultProjected)
	logger.Info("Voucher projected into journal",
		"event_id", event.EventID.String(),
		"voucher_id", event.VoucherID,
		"lines", len(lines),
	)
	return nil
}
