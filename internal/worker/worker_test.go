package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablebook/backend/pkg/events"
	"github.com/tablebook/backend/pkg/queue"
)

type fakeQueue struct {
	mu      sync.Mutex
	jobs    []*queue.Job
	retried []*queue.Job
}

func (q *fakeQueue) Dequeue(ctx context.Context) (*queue.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil, nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, nil
}

func (q *fakeQueue) Retry(_ context.Context, job *queue.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	job.Attempt++
	q.retried = append(q.retried, job)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func reservationJob(t *testing.T) *queue.Job {
	t.Helper()
	body, err := json.Marshal(queue.ReservationPayload{
		ReservationID: 11,
		TenantID:      5,
		BusinessID:    3,
		Code:          "RSV-ABC-1234",
		CreatedAt:     time.Date(2024, 6, 10, 19, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return &queue.Job{ID: "job-1", Type: queue.JobTypeReservationCreated, Payload: body}
}

func TestProcessPublishesReservationEvent(t *testing.T) {
	pub := &fakePublisher{}
	p := NewReservationEventProcessor(&fakeQueue{}, pub, nil)

	require.NoError(t, p.Process(context.Background(), reservationJob(t)))
	require.Len(t, pub.events, 1)

	e := pub.events[0]
	assert.Equal(t, "reservation", e.Entity)
	assert.Equal(t, "created", e.Action)
	assert.Equal(t, "RSV-ABC-1234", e.ResourceID)
	assert.Equal(t, int64(5), e.TenantID)
	assert.Equal(t, "3", e.Metadata["business_id"])
	assert.Equal(t, "11", e.Metadata["reservation_id"])
}

func TestProcessRejectsUnknownJob(t *testing.T) {
	p := NewReservationEventProcessor(&fakeQueue{}, &fakePublisher{}, nil)
	err := p.Process(context.Background(), &queue.Job{Type: "email"})
	assert.Error(t, err)
}

func TestRunRetriesFailedJobs(t *testing.T) {
	q := &fakeQueue{jobs: []*queue.Job{reservationJob(t)}}
	pub := &fakePublisher{err: errors.New("broker down")}
	p := NewReservationEventProcessor(q, pub, nil)
	p.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.retried) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, 1, q.retried[0].Attempt)
}
