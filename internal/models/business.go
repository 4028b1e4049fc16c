package models

import "time"

// BusinessStatusActive is the only status that accepts bookings.
const BusinessStatusActive = "active"

// Vacation is an inclusive date range in which the business is closed.
type Vacation struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label,omitempty"`
}

// TemporaryClosure closes the business between optional bounds while Active is set.
// An empty bound is unbounded on that side.
type TemporaryClosure struct {
	Active bool   `json:"active"`
	From   string `json:"from,omitempty"`
	Until  string `json:"until,omitempty"`
}

// Business is a physical venue owned by one tenant.
type Business struct {
	ID       int64  `json:"id"`
	TenantID int64  `json:"tenant_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`

	// OperatingDays holds weekday numbers (0 = Sunday). Nil means no weekly restriction;
	// a non-nil empty slice means the business never opens.
	OperatingDays []int            `json:"operating_days"`
	Holidays      []string         `json:"holidays"`
	Vacations     []Vacation       `json:"vacations"`
	Closure       TemporaryClosure `json:"temporary_closure"`

	MorningOpen    string `json:"morning_open,omitempty"`
	MorningClose   string `json:"morning_close,omitempty"`
	AfternoonOpen  string `json:"afternoon_open,omitempty"`
	AfternoonClose string `json:"afternoon_close,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Operational status of a reservation table.
const (
	TableStatusAvailable   = "available"
	TableStatusOccupied    = "occupied"
	TableStatusMaintenance = "maintenance"
)

// ReservationTable is a bookable table belonging to one business.
type ReservationTable struct {
	ID         int64  `json:"id"`
	TenantID   int64  `json:"tenant_id"`
	BusinessID int64  `json:"business_id"`
	Label      string `json:"label"`
	Seats      int    `json:"seats"`
	Status     string `json:"status"`
}
