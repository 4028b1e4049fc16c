package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus is the lifecycle state of a booking.
type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

// Blocks reports whether a reservation in this status occupies its tables.
func (s ReservationStatus) Blocks() bool {
	return s == ReservationConfirmed || s == ReservationCompleted
}

// MealPeriod is the coarse schedule tag attached to a reservation.
type MealPeriod string

const (
	MealBreakfast      MealPeriod = "breakfast"
	MealLunch          MealPeriod = "lunch"
	MealAfternoonSnack MealPeriod = "afternoon_snack"
	MealDinner         MealPeriod = "dinner"
)

// Valid reports whether p is a known meal period.
func (p MealPeriod) Valid() bool {
	switch p {
	case MealBreakfast, MealLunch, MealAfternoonSnack, MealDinner:
		return true
	}
	return false
}

// Reservation is a booking at a business for a date and a wall-clock time.
type Reservation struct {
	ID         int64             `json:"id"`
	TenantID   int64             `json:"tenant_id"`
	BusinessID int64             `json:"business_id"`
	UserID     *string           `json:"user_id,omitempty"`
	Code       string            `json:"code"`
	Date       string            `json:"date"`
	Time       string            `json:"time"`
	MealPeriod MealPeriod        `json:"meal_period"`
	PartySize  int               `json:"party_size"`
	Status     ReservationStatus `json:"status"`
	Amount     decimal.Decimal   `json:"amount"`
	CreatedAt  time.Time         `json:"created_at"`

	Tables []ReservationTableLink `json:"tables,omitempty"`
}

// ReservationTableLink binds a reservation to a table, keeping the table's label
// and seat count as they were at booking time.
type ReservationTableLink struct {
	ID            int64  `json:"id"`
	TenantID      int64  `json:"-"`
	ReservationID int64  `json:"reservation_id"`
	TableID       int64  `json:"table_id"`
	TableLabel    string `json:"table_label"`
	Seats         int    `json:"seats"`
}
