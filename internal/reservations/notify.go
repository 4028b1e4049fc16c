package reservations

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tablebook/backend/internal/models"
	"github.com/tablebook/backend/pkg/queue"
)

// EventTablesReserved is pushed to websocket clients watching a business.
const EventTablesReserved = "tables_reserved"

const notifyTimeout = 5 * time.Second

// EventQueue accepts reservation events for the background worker.
type EventQueue interface {
	EnqueueReservationCreated(ctx context.Context, payload queue.ReservationPayload) error
}

// QueueNotifier hands committed reservations to the job queue.
type QueueNotifier struct {
	queue  EventQueue
	logger *zap.Logger
}

// NewQueueNotifier creates a notifier backed by the job queue.
func NewQueueNotifier(q EventQueue, logger *zap.Logger) *QueueNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueNotifier{queue: q, logger: logger}
}

// ReservationCreated enqueues the event. The request context may already be done.
func (n *QueueNotifier) ReservationCreated(ctx context.Context, res *models.Reservation) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := n.queue.EnqueueReservationCreated(ctx, PayloadFor(res)); err != nil {
		n.logger.Warn("enqueue reservation event failed", zap.String("code", res.Code), zap.Error(err))
	}
}

// Broadcaster fans an event out to websocket clients of one business.
type Broadcaster interface {
	BroadcastToBusinessAndPublish(businessID int64, event string, payload interface{})
}

// BroadcastNotifier tells live availability views which tables were just taken.
type BroadcastNotifier struct {
	hub Broadcaster
}

// NewBroadcastNotifier creates a notifier backed by the realtime hub.
func NewBroadcastNotifier(hub Broadcaster) *BroadcastNotifier {
	return &BroadcastNotifier{hub: hub}
}

// TablesReserved is the websocket payload of EventTablesReserved.
type TablesReserved struct {
	BusinessID int64   `json:"business_id"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	TableIDs   []int64 `json:"table_ids"`
}

// ReservationCreated broadcasts the reserved tables.
func (n *BroadcastNotifier) ReservationCreated(_ context.Context, res *models.Reservation) {
	n.hub.BroadcastToBusinessAndPublish(res.BusinessID, EventTablesReserved, TablesReserved{
		BusinessID: res.BusinessID,
		Date:       res.Date,
		Time:       res.Time,
		TableIDs:   tableIDs(res),
	})
}

// PayloadFor converts a reservation to its queue payload.
func PayloadFor(res *models.Reservation) queue.ReservationPayload {
	return queue.ReservationPayload{
		ReservationID: res.ID,
		TenantID:      res.TenantID,
		BusinessID:    res.BusinessID,
		UserID:        res.UserID,
		Code:          res.Code,
		Date:          res.Date,
		Time:          res.Time,
		MealPeriod:    string(res.MealPeriod),
		PartySize:     res.PartySize,
		Status:        string(res.Status),
		Amount:        res.Amount.StringFixed(2),
		TableIDs:      tableIDs(res),
		CreatedAt:     res.CreatedAt,
	}
}

func tableIDs(res *models.Reservation) []int64 {
	ids := make([]int64, 0, len(res.Tables))
	for _, t := range res.Tables {
		ids = append(ids, t.TableID)
	}
	return ids
}
