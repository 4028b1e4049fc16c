package reservations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablebook/backend/internal/models"
	"github.com/tablebook/backend/pkg/queue"
)

type captureQueue struct {
	payloads []queue.ReservationPayload
	ctxErr   error
	err      error
}

func (q *captureQueue) EnqueueReservationCreated(ctx context.Context, p queue.ReservationPayload) error {
	q.ctxErr = ctx.Err()
	q.payloads = append(q.payloads, p)
	return q.err
}

type captureHub struct {
	businessID int64
	event      string
	payload    interface{}
}

func (h *captureHub) BroadcastToBusinessAndPublish(businessID int64, event string, payload interface{}) {
	h.businessID, h.event, h.payload = businessID, event, payload
}

func sampleReservation() *models.Reservation {
	return &models.Reservation{
		ID:         7,
		TenantID:   5,
		BusinessID: 1,
		Code:       "RSV-ABC-1234",
		Date:       "2024-06-10",
		Time:       "19:30",
		MealPeriod: models.MealDinner,
		PartySize:  2,
		Status:     models.ReservationConfirmed,
		Amount:     decimal.RequireFromString("12.5"),
		CreatedAt:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Tables:     []models.ReservationTableLink{{TableID: 3}, {TableID: 4}},
	}
}

func TestQueueNotifierSurvivesCancelledRequest(t *testing.T) {
	q := &captureQueue{err: errors.New("redis down")}
	n := NewQueueNotifier(q, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n.ReservationCreated(ctx, sampleReservation())

	require.Len(t, q.payloads, 1)
	assert.NoError(t, q.ctxErr)
	p := q.payloads[0]
	assert.Equal(t, "RSV-ABC-1234", p.Code)
	assert.Equal(t, "12.50", p.Amount)
	assert.Equal(t, []int64{3, 4}, p.TableIDs)
	assert.Equal(t, "dinner", p.MealPeriod)
}

func TestBroadcastNotifier(t *testing.T) {
	hub := &captureHub{}
	NewBroadcastNotifier(hub).ReservationCreated(context.Background(), sampleReservation())

	assert.Equal(t, int64(1), hub.businessID)
	assert.Equal(t, EventTablesReserved, hub.event)
	assert.Equal(t, TablesReserved{BusinessID: 1, Date: "2024-06-10", Time: "19:30", TableIDs: []int64{3, 4}}, hub.payload)
}
