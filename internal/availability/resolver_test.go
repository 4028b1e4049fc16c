package availability

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablebook/backend/internal/tenancy"
)

type passthroughRunner struct {
	scopes []tenancy.Scope
}

func (r *passthroughRunner) Run(ctx context.Context, scope tenancy.Scope, fn tenancy.UnitOfWork) error {
	r.scopes = append(r.scopes, scope)
	return fn(ctx, nil)
}

type fakeStore struct {
	slots     []BookedSlot
	links     map[int64][]int64
	slotsErr  error
	gotDate   string
	linkCalls [][]int64
}

func (s *fakeStore) ListBlockingOnDate(_ context.Context, _ pgx.Tx, _ int64, date string) ([]BookedSlot, error) {
	s.gotDate = date
	return s.slots, s.slotsErr
}

func (s *fakeStore) ListLinkedTableIDs(_ context.Context, _ pgx.Tx, ids []int64) ([]int64, error) {
	s.linkCalls = append(s.linkCalls, ids)
	var out []int64
	for _, id := range ids {
		out = append(out, s.links[id]...)
	}
	return out, nil
}

func TestReservedTableIDsNoReservations(t *testing.T) {
	runner := &passthroughRunner{}
	store := &fakeStore{}
	r := NewResolver(runner, store, 0)

	got, err := r.ReservedTableIDs(context.Background(), tenancy.ForTenant(5), 1, "2024-06-10", "19:30")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, store.linkCalls)
	assert.Equal(t, DefaultDuration, r.Duration())
	assert.Equal(t, []tenancy.Scope{tenancy.ForTenant(5)}, runner.scopes)
}

func TestReservedTableIDsOverlapping(t *testing.T) {
	store := &fakeStore{
		slots: []BookedSlot{
			{ReservationID: 10, Time: "19:00:00"},
			{ReservationID: 11, Time: "21:00:00"},
			{ReservationID: 12, Time: "garbage"},
			{ReservationID: 13, Time: "20:30"},
		},
		links: map[int64][]int64{10: {1}, 11: {2}, 13: {3, 1}},
	}
	r := NewResolver(&passthroughRunner{}, store, 60)

	got, err := r.ReservedTableIDs(context.Background(), tenancy.ForTenant(5), 1, " 2024-06-10 ", "19:45")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, got.Sorted())
	assert.True(t, got.Has(1))
	assert.False(t, got.Has(2))
	assert.Equal(t, "2024-06-10", store.gotDate)
	assert.Equal(t, [][]int64{{10, 13}}, store.linkCalls)
}

func TestReservedTableIDsInvalidInput(t *testing.T) {
	store := &fakeStore{slots: []BookedSlot{{ReservationID: 1, Time: "10:00"}}}
	r := NewResolver(&passthroughRunner{}, store, 60)

	got, err := r.ReservedTableIDsTx(context.Background(), nil, 1, "2024-06-10", "25:00")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.ReservedTableIDsTx(context.Background(), nil, 1, "2024-02-30", "10:00")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, store.gotDate)
}

func TestReservedTableIDsStoreError(t *testing.T) {
	store := &fakeStore{slotsErr: errors.New("connection lost")}
	r := NewResolver(&passthroughRunner{}, store, 60)

	_, err := r.ReservedTableIDs(context.Background(), tenancy.ForTenant(5), 1, "2024-06-10", "10:00")
	assert.ErrorIs(t, err, store.slotsErr)
}
