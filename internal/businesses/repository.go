package businesses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tablebook/backend/internal/models"
)

// ErrNotFound is returned when the business does not exist or is outside the caller's scope.
var ErrNotFound = errors.New("business not found")

const businessColumns = `id, tenant_id, name, status, operating_days, holidays, vacations,
	temporarily_closed, closed_from, closed_until,
	morning_open, morning_close, afternoon_open, afternoon_close, created_at, updated_at`

const tableColumns = `id, tenant_id, business_id, label, seats, status`

// Repository reads businesses and their tables. Every method runs on a transaction
// opened by the tenant executor, so row-level security applies.
type Repository struct{}

// NewRepository creates a business repository.
func NewRepository() *Repository {
	return &Repository{}
}

// GetByID returns a business by ID.
func (r *Repository) GetByID(ctx context.Context, tx pgx.Tx, id int64) (*models.Business, error) {
	const q = `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`
	var (
		b                       models.Business
		operatingDays           []byte
		holidays, vacations     []byte
		closedFrom, closedUntil *string
		morningOpen, morningEnd *string
		afternoonOpen, afterEnd *string
	)
	err := tx.QueryRow(ctx, q, id).Scan(&b.ID, &b.TenantID, &b.Name, &b.Status,
		&operatingDays, &holidays, &vacations,
		&b.Closure.Active, &closedFrom, &closedUntil,
		&morningOpen, &morningEnd, &afternoonOpen, &afterEnd, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get business %d: %w", id, err)
	}

	if operatingDays != nil {
		b.OperatingDays = []int{}
		if err := json.Unmarshal(operatingDays, &b.OperatingDays); err != nil {
			return nil, fmt.Errorf("decode operating_days of business %d: %w", id, err)
		}
	}
	if len(holidays) > 0 {
		if err := json.Unmarshal(holidays, &b.Holidays); err != nil {
			return nil, fmt.Errorf("decode holidays of business %d: %w", id, err)
		}
	}
	if len(vacations) > 0 {
		if err := json.Unmarshal(vacations, &b.Vacations); err != nil {
			return nil, fmt.Errorf("decode vacations of business %d: %w", id, err)
		}
	}
	b.Closure.From = deref(closedFrom)
	b.Closure.Until = deref(closedUntil)
	b.MorningOpen = deref(morningOpen)
	b.MorningClose = deref(morningEnd)
	b.AfternoonOpen = deref(afternoonOpen)
	b.AfternoonClose = deref(afterEnd)
	return &b, nil
}

// ListTables returns every table of a business ordered by ID.
func (r *Repository) ListTables(ctx context.Context, tx pgx.Tx, businessID int64) ([]models.ReservationTable, error) {
	const q = `SELECT ` + tableColumns + ` FROM reservation_tables WHERE business_id = $1 ORDER BY id`
	return r.queryTables(ctx, tx, q, businessID)
}

// LockTables returns every table of a business and holds a row lock on each until the
// transaction ends. Rows are locked in ID order so concurrent bookings cannot deadlock.
func (r *Repository) LockTables(ctx context.Context, tx pgx.Tx, businessID int64) ([]models.ReservationTable, error) {
	const q = `SELECT ` + tableColumns + ` FROM reservation_tables WHERE business_id = $1 ORDER BY id FOR UPDATE`
	return r.queryTables(ctx, tx, q, businessID)
}

func (r *Repository) queryTables(ctx context.Context, tx pgx.Tx, q string, businessID int64) ([]models.ReservationTable, error) {
	rows, err := tx.Query(ctx, q, businessID)
	if err != nil {
		return nil, fmt.Errorf("list tables of business %d: %w", businessID, err)
	}
	defer rows.Close()

	var list []models.ReservationTable
	for rows.Next() {
		var t models.ReservationTable
		if err := rows.Scan(&t.ID, &t.TenantID, &t.BusinessID, &t.Label, &t.Seats, &t.Status); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
