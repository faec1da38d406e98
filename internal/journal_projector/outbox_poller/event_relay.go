package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/office-suite/general-ledger/internal/domain/outbox"
	"github.com/office-suite/general-ledger/internal/domain/shared"
	"github.com/office-suite/general-ledger/internal/platform/messaging/producers"
)

// EventRelay moves one outbox message onto the voucher topic
type EventRelay interface {
	Relay(ctx context.Context, message *outbox.Message) error
}

// ErrCorruptPayload means the stored event cannot be decoded; the message is already marked failed
type ErrCorruptPayload struct {
	OutboxID int64
	Err      error
}

func (e ErrCorruptPayload) Error() string {
	return fmt.Sprintf("outbox message %d has a corrupt payload: %v", e.OutboxID, e.Err)
}

func (e ErrCorruptPayload) Unwrap() error {
	return e.Err
}

type EventRelayImpl struct {
	outboxRepo outbox.Repository
	publisher  producers.MessagePublisher
	logger     *slog.Logger
}

func NewEventRelay(
	outboxRepo outbox.Repository,
	publisher producers.MessagePublisher,
	logger *slog.Logger,
) EventRelay {
	return &EventRelayImpl{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

// Relay publishes the stored payload keyed by voucher id, then marks the message PROCESSED.
// When marking fails the message stays pending and is published again later; the
// projector replaces lines per voucher, so a second delivery changes nothing.
func (r *EventRelayImpl) Relay(ctx context.Context, message *outbox.Message) error {
	event, err := message.Event()
	if err != nil {
		r.logger.Error("Failed to decode voucher event from outbox payload",
			"outbox_id", message.ID, "voucher_id", message.VoucherID, "error", err,
		)
		if updateErr := r.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			r.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after decode error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return ErrCorruptPayload{OutboxID: message.ID, Err: err}
	}

	logger := r.logger
	if event.CorrelationID != "" {
		logger = r.logger.With("correlation_id", event.CorrelationID)
	}

	key := strconv.FormatInt(message.VoucherID, 10)
	if err := r.publisher.Publish(ctx, key, message.Payload); err != nil {
		return fmt.Errorf("publish voucher %d: %w", message.VoucherID, err)
	}

	if err := r.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "voucher_id", message.VoucherID, "error", err,
		)
		return fmt.Errorf("voucher %d published, but failed to mark outbox %d as PROCESSED: %w", message.VoucherID, message.ID, err)
	}

	logger.Info("Voucher event published", "outbox_id", message.ID, "voucher_id", message.VoucherID, "event_id", event.EventID.String())
	return nil
}
