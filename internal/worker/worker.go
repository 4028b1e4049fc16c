package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tablebook/backend/pkg/events"
	"github.com/tablebook/backend/pkg/queue"
)

// JobQueue is the part of the Redis queue the processor consumes.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// EventPublisher writes events to the bus.
type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// ReservationEventProcessor turns reservation jobs into bus events.
type ReservationEventProcessor struct {
	queue     JobQueue
	publisher EventPublisher
	backoff   time.Duration
	logger    *zap.Logger
}

// NewReservationEventProcessor creates a reservation event processor.
func NewReservationEventProcessor(q JobQueue, publisher EventPublisher, logger *zap.Logger) *ReservationEventProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationEventProcessor{queue: q, publisher: publisher, backoff: queue.RetryBackoff, logger: logger}
}

// Process publishes one job.
func (p *ReservationEventProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeReservationCreated {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ReservationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	err := p.publisher.Publish(ctx, events.Event{
		Entity:     "reservation",
		Action:     "created",
		ResourceID: payload.Code,
		TenantID:   payload.TenantID,
		Metadata: map[string]string{
			"job_id":         job.ID,
			"business_id":    strconv.FormatInt(payload.BusinessID, 10),
			"reservation_id": strconv.FormatInt(payload.ReservationID, 10),
		},
		Data:       job.Payload,
		OccurredAt: payload.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	p.logger.Info("reservation event published", zap.String("code", payload.Code), zap.String("job_id", job.ID))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *ReservationEventProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("reservation worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(context.WithoutCancel(ctx), job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *ReservationEventProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
