package businesses

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tablebook/backend/internal/availability"
	"github.com/tablebook/backend/internal/models"
)

func TestSummarize(t *testing.T) {
	b := &models.Business{
		ID:            1,
		OperatingDays: []int{1, 2, 3, 4, 5},
		MorningOpen:   "08:00",
		MorningClose:  "12:00",
	}
	tables := []models.ReservationTable{
		{ID: 1, Seats: 2, Status: models.TableStatusAvailable},
		{ID: 2, Seats: 4, Status: models.TableStatusAvailable},
		{ID: 3, Seats: 6, Status: models.TableStatusMaintenance},
		{ID: 4, Seats: 8, Status: models.TableStatusAvailable},
	}
	reserved := availability.TableSet{2: {}}

	got := summarize(b, tables, reserved, "2024-06-10", "19:30")

	assert.True(t, got.DateOpen)
	assert.False(t, got.WithinHours)
	assert.Equal(t, []int64{2}, got.ReservedTableIDs)
	assert.Len(t, got.FreeTables, 2)
	assert.Equal(t, int64(1), got.FreeTables[0].ID)
	assert.Equal(t, int64(4), got.FreeTables[1].ID)
	assert.Equal(t, 10, got.FreeSeats)
}

func TestSummarizeClosedDate(t *testing.T) {
	b := &models.Business{ID: 1, Holidays: []string{"2024-12-25"}}

	got := summarize(b, nil, availability.TableSet{}, "2024-12-25", "12:00")

	assert.False(t, got.DateOpen)
	assert.True(t, got.WithinHours)
	assert.Empty(t, got.ReservedTableIDs)
	assert.NotNil(t, got.FreeTables)
}
