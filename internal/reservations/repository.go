package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/tablebook/backend/internal/availability"
	"github.com/tablebook/backend/internal/models"
)

const (
	uniqueViolation   = "23505"
	codeUniqueIndex   = "reservations_code_key"
	reservationFields = `id, tenant_id, business_id, user_id, code, reservation_date::text,
	reservation_time::text, meal_period, party_size, status, amount::text, created_at`
)

// Repository persists reservations and their table links. Every method runs on a
// transaction opened by the tenant executor.
type Repository struct{}

// NewRepository creates a reservation repository.
func NewRepository() *Repository {
	return &Repository{}
}

var _ availability.Store = (*Repository)(nil)

// ListBlockingOnDate returns the confirmed and completed reservations of a business on date.
func (r *Repository) ListBlockingOnDate(ctx context.Context, tx pgx.Tx, businessID int64, date string) ([]availability.BookedSlot, error) {
	const q = `SELECT id, reservation_time::text FROM reservations
		WHERE business_id = $1 AND reservation_date = $2::text::date AND status IN ($3, $4)
		ORDER BY id`
	rows, err := tx.Query(ctx, q, businessID, date, string(models.ReservationConfirmed), string(models.ReservationCompleted))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []availability.BookedSlot
	for rows.Next() {
		var s availability.BookedSlot
		if err := rows.Scan(&s.ReservationID, &s.Time); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// ListLinkedTableIDs returns the distinct tables linked to the given reservations.
func (r *Repository) ListLinkedTableIDs(ctx context.Context, tx pgx.Tx, reservationIDs []int64) ([]int64, error) {
	if len(reservationIDs) == 0 {
		return nil, nil
	}
	const q = `SELECT DISTINCT table_id FROM reservation_table_links WHERE reservation_id = ANY($1) ORDER BY table_id`
	rows, err := tx.Query(ctx, q, reservationIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Insert stores a reservation inside a savepoint. A taken code rolls back only the
// savepoint and returns ErrDuplicateCode, leaving tx usable for a retry.
func (r *Repository) Insert(ctx context.Context, tx pgx.Tx, res *models.Reservation) error {
	const q = `INSERT INTO reservations (tenant_id, business_id, user_id, code, reservation_date, reservation_time,
			meal_period, party_size, status, amount)
		VALUES ($1, $2, $3, $4, $5::text::date, $6::text::time, $7, $8, $9, $10::text::numeric)
		RETURNING id, created_at`

	sp, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	err = sp.QueryRow(ctx, q, res.TenantID, res.BusinessID, res.UserID, res.Code, res.Date, res.Time,
		string(res.MealPeriod), res.PartySize, string(res.Status), res.Amount.StringFixed(2)).
		Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		_ = sp.Rollback(ctx)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == codeUniqueIndex {
			return ErrDuplicateCode
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

// InsertLinks stores the table links of res and fills in their IDs.
func (r *Repository) InsertLinks(ctx context.Context, tx pgx.Tx, res *models.Reservation) error {
	const q = `INSERT INTO reservation_table_links (tenant_id, reservation_id, table_id, table_label, seats)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	for i := range res.Tables {
		link := &res.Tables[i]
		link.TenantID = res.TenantID
		link.ReservationID = res.ID
		if err := tx.QueryRow(ctx, q, link.TenantID, link.ReservationID, link.TableID, link.TableLabel, link.Seats).
			Scan(&link.ID); err != nil {
			return fmt.Errorf("insert link for table %d: %w", link.TableID, err)
		}
	}
	return nil
}

// GetByCode returns a reservation and its table links.
func (r *Repository) GetByCode(ctx context.Context, tx pgx.Tx, code string) (*models.Reservation, error) {
	const q = `SELECT ` + reservationFields + ` FROM reservations WHERE code = $1`
	var (
		res    models.Reservation
		amount string
		meal   string
		status string
	)
	err := tx.QueryRow(ctx, q, code).Scan(&res.ID, &res.TenantID, &res.BusinessID, &res.UserID, &res.Code,
		&res.Date, &res.Time, &meal, &res.PartySize, &status, &amount, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation %s: %w", code, err)
	}
	res.MealPeriod = models.MealPeriod(meal)
	res.Status = models.ReservationStatus(status)
	if len(res.Time) > 5 {
		res.Time = res.Time[:5]
	}
	if res.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("decode amount of %s: %w", code, err)
	}

	const linksQ = `SELECT id, tenant_id, reservation_id, table_id, table_label, seats
		FROM reservation_table_links WHERE reservation_id = $1 ORDER BY table_id`
	rows, err := tx.Query(ctx, linksQ, res.ID)
	if err != nil {
		return nil, fmt.Errorf("list links of %s: %w", code, err)
	}
	defer rows.Close()
	for rows.Next() {
		var l models.ReservationTableLink
		if err := rows.Scan(&l.ID, &l.TenantID, &l.ReservationID, &l.TableID, &l.TableLabel, &l.Seats); err != nil {
			return nil, err
		}
		res.Tables = append(res.Tables, l)
	}
	return &res, rows.Err()
}
