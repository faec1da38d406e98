package producers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/office-suite/general-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// VoucherEventProducer publishes posted-voucher events, keyed by voucher id
type VoucherEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewVoucherEventProducer ensures the voucher topic exists and opens a synchronous writer.
// Writes block until every in-sync replica acknowledges, so the outbox only marks what Kafka holds.
func NewVoucherEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*VoucherEventProducer, error) {
	if cfg.VoucherTopic == "" {
		return nil, fmt.Errorf("kafka voucher topic is not configured")
	}

	if err := ensureTopic(cfg.Brokers, cfg.VoucherTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure voucher topic %s exists: %w", cfg.VoucherTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.VoucherTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.MaxWait,
	}

	return &VoucherEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.VoucherTopic,
	}, nil
}

func (p *VoucherEventProducer) Publish(ctx context.Context, key string, value []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish voucher event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish voucher event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published voucher event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *VoucherEventProducer) Close() error {
	p.logger.Info("Closing voucher event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
