package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishKeysByTenant(t *testing.T) {
	w := &recordingWriter{}
	p := NewPublisher(w, nil)

	err := p.Publish(context.Background(), Event{
		Entity:     "reservation",
		Action:     "created",
		ResourceID: "RSV-ABC-1234",
		TenantID:   5,
		Metadata:   map[string]string{"business_id": "3"},
		Data:       json.RawMessage(`{"code":"RSV-ABC-1234"}`),
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "5", string(msg.Key))
	assert.Contains(t, msg.Headers, kafka.Header{Key: "event_type", Value: []byte("reservation.created")})

	var got Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "RSV-ABC-1234", got.ResourceID)
	assert.Equal(t, "3", got.Metadata["business_id"])
	assert.False(t, got.OccurredAt.IsZero())
}

func TestPublishWrapsWriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("leader not available")}
	p := NewPublisher(w, nil)

	err := p.Publish(context.Background(), Event{Entity: "reservation", Action: "created"})
	assert.ErrorIs(t, err, w.err)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaPublisherRequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "reservations.events", nil)
	assert.ErrorIs(t, err, ErrNoBrokers)
}
