package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/office-suite/general-ledger/internal/config"
	"github.com/office-suite/general-ledger/internal/domain/outbox"
	"github.com/office-suite/general-ledger/internal/domain/shared"
	"github.com/office-suite/general-ledger/internal/journal_projector/service"
	"github.com/office-suite/general-ledger/internal/platform/messaging/producers"
	"github.com/office-suite/general-ledger/internal/platform/metrics"
)

// Poller relays pending outbox messages to Kafka
type Poller struct {
	outboxRepo       outbox.Repository
	relay            EventRelay
	failureRecorder  service.FailureRecorder
	metrics          *metrics.Metrics
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	relay EventRelay,
	failureRecorder service.FailureRecorder,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		relay:            relay,
		failureRecorder:  failureRecorder,
		metrics:          m,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start begins polling until context is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting Outbox Poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox Poller stopping due to context cancellation.")
			return
		case <-ticker.C:
			p.logger.Debug("Outbox Poller tick: processing pending messages")
			if err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Error during batch processing of pending outbox messages", "error", err)
			}
		}
	}
}

func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}

	if len(messages) == 0 {
		p.logger.Debug("No pending outbox messages found.")
		return nil
	}

	p.logger.Info("Fetched pending outbox messages", "count", len(messages))

	for _, msg := range messages {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.processMessage(ctx, msg)
	}
	return nil
}

func (p *Poller) processMessage(ctx context.Context, msg *outbox.Message) {
	key := strconv.FormatInt(msg.VoucherID, 10)

	err := p.relay.Relay(ctx, msg)
	if err == nil {
		p.metrics.OutboxMessage(metrics.ResultPublished)
		return
	}

	var corrupt ErrCorruptPayload
	if errors.As(err, &corrupt) {
		p.metrics.OutboxMessage(metrics.ResultFailed)
		if dlqErr := p.failureRecorder.RecordFailure(ctx, key, msg.Payload, producers.ReasonUndecodable, err); dlqErr != nil {
			p.logger.Error("Failed to park corrupt outbox message", "outbox_id", msg.ID, "error", dlqErr)
		}
		return
	}

	p.logger.Error("Failed to relay outbox message",
		"outbox_id", msg.ID, "voucher_id", msg.VoucherID, "current_attempts", msg.Attempts, "error", err,
	)

	if errInc := p.outboxRepo.IncrementAttempts(ctx, msg.ID); errInc != nil {
		p.logger.Error("Failed to increment attempts for outbox message", "outbox_id", msg.ID, "error", errInc)
		return
	}
	msg.IncrementAttempts()

	if !msg.Exhausted(p.maxRetryAttempts) {
		p.metrics.OutboxMessage(metrics.ResultRetried)
		return
	}

	p.logger.Warn("Max retry attempts reached for outbox message, marking as FAILED_TO_PUBLISH",
		"outbox_id", msg.ID, "voucher_id", msg.VoucherID, "attempts_made", msg.Attempts,
	)
	p.metrics.OutboxMessage(metrics.ResultFailed)
	if errUpdate := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); errUpdate != nil {
		p.logger.Error("Failed to update outbox status to FAILED_TO_PUBLISH after max retries", "outbox_id", msg.ID, "error", errUpdate)
		return
	}
	if dlqErr := p.failureRecorder.RecordFailure(ctx, key, msg.Payload, producers.ReasonPublishExhausted, err); dlqErr != nil {
		p.logger.Error("Failed to park exhausted outbox message", "outbox_id", msg.ID, "error", dlqErr)
	}
}
