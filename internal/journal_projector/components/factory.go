package components

import (
	"log/slog"

	"github.com/office-suite/general-ledger/internal/config"
	"github.com/office-suite/general-ledger/internal/domain/journal"
	"github.com/office-suite/general-ledger/internal/domain/outbox"
	"github.com/office-suite/general-ledger/internal/journal_projector/outbox_poller"
	"github.com/office-suite/general-ledger/internal/journal_projector/service"
	"github.com/office-suite/general-ledger/internal/platform/messaging/producers"
	"github.com/office-suite/general-ledger/internal/platform/metrics"
)

// CreateProjectionService creates the projection service, pooled when the pool can be built.
func CreateProjectionService(
	logger *slog.Logger,
	journalRepo journal.Repository,
	m *metrics.Metrics,
	cfg *config.Config,
) service.ProjectionService {
	baseService := service.NewProjectionService(logger, journalRepo, m)

	workerPoolService, err := service.NewWorkerPoolProjectionService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool projection service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}

// CreateOutboxPoller wires the relay that moves outbox rows onto the voucher topic
func CreateOutboxPoller(
	logger *slog.Logger,
	cfg *config.Config,
	outboxRepo outbox.Repository,
	publisher producers.MessagePublisher,
	failureRecorder service.FailureRecorder,
	m *metrics.Metrics,
) *outbox_poller.Poller {
	relay := outbox_poller.NewEventRelay(outboxRepo, publisher, logger.With("component", "event_relay"))
	return outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, relay, failureRecorder, m, logger.With("component", "outbox_poller"))
}
