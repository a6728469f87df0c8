package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/go-order-notify/internal/logger"
	"github.com/imrishuroy/go-order-notify/internal/notify"
	"github.com/imrishuroy/go-order-notify/internal/orders"
)

type dispatcher interface {
	Dispatch(ctx context.Context, o *orders.NormalizedOrder) error
}

// Processor handles SQS batches of notification jobs.
type Processor struct {
	dispatcher dispatcher
	normalizer *orders.Normalizer
	log        *slog.Logger
}

// NewProcessor creates a new worker processor around a dispatcher.
func NewProcessor(d dispatcher, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{dispatcher: d, normalizer: orders.NewNormalizer(), log: log}
}

// Handle processes every record of the batch. Failed jobs are logged and dropped:
// delivery is attempted once and the batch always succeeds, so nothing is redelivered.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	failed := 0
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			failed++
			p.log.ErrorContext(ctx, "notification job failed", "message_id", rec.MessageId, "error", err)
		}
	}
	p.log.InfoContext(ctx, "processed notification batch", "records", len(ev.Records), "failed", failed)
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	job, err := notify.DecodeJob(rec.Body)
	if err != nil {
		return err
	}
	if job.RequestID != "" {
		ctx = logger.WithRequestID(ctx, job.RequestID)
	}

	order, err := orders.Decode(job.Order)
	if err != nil {
		return err
	}
	if !order.CreatedAt.Set && !job.ReceivedAt.IsZero() {
		order.CreatedAt = orders.Timestamp{Time: job.ReceivedAt, Set: true}
	}
	normalized, err := p.normalizer.Normalize(order, job.HostURL)
	if err != nil {
		return err
	}
	if err := p.dispatcher.Dispatch(ctx, normalized); err != nil {
		var emailErr *notify.EmailError
		if errors.As(err, &emailErr) && emailErr.Step == notify.StepCustomer {
			p.log.WarnContext(ctx, "customer confirmation not delivered", "order_id", normalized.ID, "owner_notified", true)
		}
		return err
	}
	p.log.InfoContext(ctx, "order notified", "order_id", normalized.ID)
	return nil
}
