package reservations

import (
	"sort"

	"github.com/tablebook/backend/internal/availability"
	"github.com/tablebook/backend/internal/models"
)

// Meal period boundaries in minutes since midnight.
const (
	breakfastUntil      = 11 * 60
	lunchUntil          = 16 * 60
	afternoonSnackUntil = 19 * 60
)

// MealPeriodAt derives the meal period from the reservation time.
func MealPeriodAt(minutes int) models.MealPeriod {
	switch {
	case minutes < breakfastUntil:
		return models.MealBreakfast
	case minutes < lunchUntil:
		return models.MealLunch
	case minutes < afternoonSnackUntil:
		return models.MealAfternoonSnack
	default:
		return models.MealDinner
	}
}

// TableRequest is either an explicit list of tables or a party size to seat.
type TableRequest struct {
	TableIDs  []int64
	PartySize int
}

// AssignTables picks the tables for a booking from the business's tables, skipping
// reserved ones. Explicit requests are all-or-nothing. Otherwise the smallest single
// table that seats the party wins, falling back to the largest tables first.
func AssignTables(tables []models.ReservationTable, reserved availability.TableSet, req TableRequest) ([]models.ReservationTable, error) {
	if len(req.TableIDs) > 0 {
		return assignExplicit(tables, reserved, req)
	}
	if req.PartySize <= 0 {
		return nil, ErrInvalidTableRequest
	}

	var free []models.ReservationTable
	for _, t := range tables {
		if t.Status == models.TableStatusAvailable && !reserved.Has(t.ID) {
			free = append(free, t)
		}
	}

	sort.SliceStable(free, func(i, j int) bool {
		if free[i].Seats != free[j].Seats {
			return free[i].Seats < free[j].Seats
		}
		return free[i].ID < free[j].ID
	})
	for _, t := range free {
		if t.Seats >= req.PartySize {
			return []models.ReservationTable{t}, nil
		}
	}

	// No single table fits; free is ascending so walk it backwards.
	var picked []models.ReservationTable
	seats := 0
	for i := len(free) - 1; i >= 0 && seats < req.PartySize; i-- {
		picked = append(picked, free[i])
		seats += free[i].Seats
	}
	if seats < req.PartySize {
		return nil, ErrNoCapacity
	}
	sort.Slice(picked, func(i, j int) bool { return picked[i].ID < picked[j].ID })
	return picked, nil
}

func assignExplicit(tables []models.ReservationTable, reserved availability.TableSet, req TableRequest) ([]models.ReservationTable, error) {
	byID := make(map[int64]models.ReservationTable, len(tables))
	for _, t := range tables {
		byID[t.ID] = t
	}

	seen := make(map[int64]struct{}, len(req.TableIDs))
	var picked []models.ReservationTable
	seats := 0
	for _, id := range req.TableIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		t, ok := byID[id]
		if !ok {
			return nil, ErrUnknownTable
		}
		if t.Status != models.TableStatusAvailable || reserved.Has(id) {
			return nil, ErrNoCapacity
		}
		picked = append(picked, t)
		seats += t.Seats
	}
	if req.PartySize > seats {
		return nil, ErrNoCapacity
	}
	sort.Slice(picked, func(i, j int) bool { return picked[i].ID < picked[j].ID })
	return picked, nil
}
