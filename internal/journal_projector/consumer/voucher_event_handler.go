package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/office-suite/general-ledger/internal/domain/shared"
	"github.com/office-suite/general-ledger/internal/journal_projector/service"
	"github.com/office-suite/general-ledger/internal/platform/messaging/producers"
	"github.com/office-suite/general-ledger/internal/platform/metrics"
)

// VoucherEventHandler handles voucher events from Kafka
type VoucherEventHandler struct {
	projectionService service.ProjectionService
	failureRecorder   service.FailureRecorder
	metrics           *metrics.Metrics
	logger            *slog.Logger
}

func NewVoucherEventHandler(
	logger *slog.Logger,
	projectionService service.ProjectionService,
	failureRecorder service.FailureRecorder,
	m *metrics.Metrics,
) *VoucherEventHandler {
	return &VoucherEventHandler{
		projectionService: projectionService,
		failureRecorder:   failureRecorder,
		metrics:           m,
		logger:            logger,
	}
}

// HandleMessage projects one event. A nil return commits the offset: that covers success
// and events parked on the DLQ. Storage errors are returned so the message is redelivered.
func (h *VoucherEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.VoucherPostedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error("Failed to unmarshal voucher event from Kafka message",
			"error", err,
			"message_key", string(key),
		)
		return h.park(ctx, key, value, producers.ReasonUndecodable, err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received voucher event",
		"event_id", event.EventID.String(),
		"voucher_id", event.VoucherID,
		"entries", len(event.Entries),
	)

	err := h.projectionService.ProjectVoucher(ctx, &event)
	var invalid service.ErrInvalidEvent
	switch {
	case err == nil:
		return nil
	case errors.As(err, &invalid):
		return h.park(ctx, key, value, producers.ReasonProjectionFailed, err)
	default:
		return fmt.Errorf("projecting voucher event %s failed: %w", event.EventID.String(), err)
	}
}

func (h *VoucherEventHandler) park(ctx context.Context, key, value []byte, reason string, cause error) error {
	if err := h.failureRecorder.RecordFailure(ctx, string(key), value, reason, cause); err != nil {
		return fmt.Errorf("parking message %q (%s): %w", string(key), reason, err)
	}
	h.metrics.Projection(metrics.ResultDeadLettered)
	return nil
}
