package components

import (
	"context"
	"errors"
	"log/slog"

	"github.com/office-suite/general-ledger/internal/journal_projector/service"
	"github.com/office-suite/general-ledger/internal/platform/messaging/producers"
)

type FailureRecorderImpl struct {
	dlq    producers.DeadLetterPublisher
	logger *slog.Logger
}

func NewFailureRecorder(logger *slog.Logger, dlq producers.DeadLetterPublisher) service.FailureRecorder {
	return &FailureRecorderImpl{
		dlq:    dlq,
		logger: logger,
	}
}

// RecordFailure sends the message to the DLQ. With no DLQ configured the message is
// logged and dropped, since retrying it cannot succeed.
func (r *FailureRecorderImpl) RecordFailure(ctx context.Context, key string, payload []byte, reason string, cause error) error {
	var err error
	if r.dlq == nil {
		err = producers.ErrDLQDisabled
	} else {
		err = r.dlq.PublishToDLQ(ctx, key, payload, reason)
	}

	switch {
	case err == nil:
		r.logger.Warn("Message moved to DLQ", "key", key, "reason", reason, "cause", cause)
		return nil
	case errors.Is(err, producers.ErrDLQDisabled):
		r.logger.Error("Dropping message, no DLQ configured",
			"key", key,
			"reason", reason,
			"cause", cause,
			"payload", string(payload),
		)
		return nil
	default:
		r.logger.Error("Failed to move message to DLQ", "key", key, "reason", reason, "error", err)
		return err
	}
}
