package availability

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/tablebook/backend/internal/tenancy"
	"github.com/tablebook/backend/internal/timenorm"
)

// BookedSlot is a reservation that blocks its tables: confirmed or completed.
type BookedSlot struct {
	ReservationID int64
	Time          string
}

// Store reads the two phases of the lookup. Both run on the caller's transaction.
type Store interface {
	ListBlockingOnDate(ctx context.Context, tx pgx.Tx, businessID int64, date string) ([]BookedSlot, error)
	ListLinkedTableIDs(ctx context.Context, tx pgx.Tx, reservationIDs []int64) ([]int64, error)
}

// TableSet is a set of table IDs.
type TableSet map[int64]struct{}

// Has reports whether id is in the set.
func (s TableSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the IDs in ascending order.
func (s TableSet) Sorted() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Resolver computes reserved tables for a business, date and time.
type Resolver struct {
	runner   tenancy.Runner
	store    Store
	duration int
}

// NewResolver creates a resolver. A non-positive duration falls back to DefaultDuration.
func NewResolver(runner tenancy.Runner, store Store, duration int) *Resolver {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Resolver{runner: runner, store: store, duration: duration}
}

// Duration returns the reservation length in minutes.
func (r *Resolver) Duration() int {
	return r.duration
}

// ReservedTableIDs runs the lookup in its own scoped transaction.
func (r *Resolver) ReservedTableIDs(ctx context.Context, scope tenancy.Scope, businessID int64, date, clock string) (TableSet, error) {
	return tenancy.RunWithResult(ctx, r.runner, scope, func(ctx context.Context, tx pgx.Tx) (TableSet, error) {
		return r.ReservedTableIDsTx(ctx, tx, businessID, date, clock)
	})
}

// ReservedTableIDsTx runs the lookup on a transaction the caller already opened through
// the executor. Unparseable dates or times yield an empty set.
func (r *Resolver) ReservedTableIDsTx(ctx context.Context, tx pgx.Tx, businessID int64, date, clock string) (TableSet, error) {
	reserved := TableSet{}
	requested, ok := timenorm.ParseTimeToMinutes(clock)
	if !ok {
		return reserved, nil
	}
	day, ok := timenorm.NormalizeDate(date)
	if !ok {
		return reserved, nil
	}

	slots, err := r.store.ListBlockingOnDate(ctx, tx, businessID, day)
	if err != nil {
		return nil, fmt.Errorf("list reservations on %s: %w", day, err)
	}
	var overlapping []int64
	for _, slot := range slots {
		if IsOverlapping(requested, slot.Time, r.duration) {
			overlapping = append(overlapping, slot.ReservationID)
		}
	}
	if len(overlapping) == 0 {
		return reserved, nil
	}

	tableIDs, err := r.store.ListLinkedTableIDs(ctx, tx, overlapping)
	if err != nil {
		return nil, fmt.Errorf("list table links: %w", err)
	}
	for _, id := range tableIDs {
		reserved[id] = struct{}{}
	}
	return reserved, nil
}
