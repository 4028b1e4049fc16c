// Package reservations validates and persists bookings.
//
// A booking is checked and written inside one scoped transaction: the business is loaded,
// both calendar axes are checked, the business's tables are row-locked, reserved tables
// are resolved, tables are assigned, and the reservation is inserted with its links.
// Locking the tables before the overlap check serializes concurrent bookings for the same
// business, so the later one observes the earlier one's committed reservation.
package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tablebook/backend/internal/availability"
	"github.com/tablebook/backend/internal/businesses"
	"github.com/tablebook/backend/internal/calendar"
	"github.com/tablebook/backend/internal/models"
	"github.com/tablebook/backend/internal/tenancy"
	"github.com/tablebook/backend/internal/timenorm"
)

// codeAttempts bounds code generation: one try plus one retry on collision.
const codeAttempts = 2

// BusinessStore is the part of the business repository the service needs.
type BusinessStore interface {
	GetByID(ctx context.Context, tx pgx.Tx, id int64) (*models.Business, error)
	LockTables(ctx context.Context, tx pgx.Tx, businessID int64) ([]models.ReservationTable, error)
}

// ReservationStore persists reservations.
type ReservationStore interface {
	Insert(ctx context.Context, tx pgx.Tx, res *models.Reservation) error
	InsertLinks(ctx context.Context, tx pgx.Tx, res *models.Reservation) error
	GetByCode(ctx context.Context, tx pgx.Tx, code string) (*models.Reservation, error)
}

// TableResolver finds reserved tables on the caller's transaction.
type TableResolver interface {
	ReservedTableIDsTx(ctx context.Context, tx pgx.Tx, businessID int64, date, clock string) (availability.TableSet, error)
}

// Notifier is told about committed reservations. Failures are its own concern.
type Notifier interface {
	ReservationCreated(ctx context.Context, res *models.Reservation)
}

// CreateRequest is a booking request. Date and Time are raw caller input.
type CreateRequest struct {
	BusinessID int64
	UserID     *string
	Date       string
	Time       string
	MealPeriod string
	PartySize  int
	TableIDs   []int64
	Amount     decimal.Decimal
}

// Service orchestrates reservation creation and lookup.
type Service struct {
	runner       tenancy.Runner
	businesses   BusinessStore
	reservations ReservationStore
	resolver     TableResolver
	codes        *CodeGenerator
	notifiers    []Notifier
	logger       *zap.Logger
}

// NewService creates a reservation service.
func NewService(runner tenancy.Runner, businesses BusinessStore, reservations ReservationStore, resolver TableResolver, codes *CodeGenerator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if codes == nil {
		codes = NewCodeGenerator(DefaultCodePrefix)
	}
	return &Service{
		runner:       runner,
		businesses:   businesses,
		reservations: reservations,
		resolver:     resolver,
		codes:        codes,
		logger:       logger,
	}
}

// AddNotifier registers a post-commit listener.
func (s *Service) AddNotifier(n Notifier) {
	s.notifiers = append(s.notifiers, n)
}

// normalized is a CreateRequest after input validation.
type normalized struct {
	date    string
	clock   string
	meal    models.MealPeriod
	request TableRequest
}

func normalize(req CreateRequest) (normalized, error) {
	var n normalized
	var ok bool
	if n.date, ok = timenorm.NormalizeDate(req.Date); !ok {
		return n, ErrInvalidDate
	}
	minutes, ok := timenorm.ParseTimeToMinutes(req.Time)
	if !ok {
		return n, ErrInvalidTime
	}
	n.clock = timenorm.FormatMinutes(minutes)

	if req.MealPeriod == "" {
		n.meal = MealPeriodAt(minutes)
	} else {
		n.meal = models.MealPeriod(req.MealPeriod)
		if !n.meal.Valid() {
			return n, ErrInvalidMealPeriod
		}
	}

	if req.PartySize < 0 || (len(req.TableIDs) == 0 && req.PartySize == 0) {
		return n, ErrInvalidTableRequest
	}
	if req.Amount.IsNegative() {
		return n, ErrInvalidAmount
	}
	n.request = TableRequest{TableIDs: req.TableIDs, PartySize: req.PartySize}
	return n, nil
}

// Create validates and persists a booking. Rejections are the package's sentinel errors;
// storage failures are wrapped.
func (s *Service) Create(ctx context.Context, scope tenancy.Scope, req CreateRequest) (*models.Reservation, error) {
	in, err := normalize(req)
	if err != nil {
		return nil, err
	}

	res, err := tenancy.RunWithResult(ctx, s.runner, scope, func(ctx context.Context, tx pgx.Tx) (*models.Reservation, error) {
		return s.create(ctx, tx, scope, req, in)
	})
	if err != nil {
		if isRejection(err) {
			s.logger.Info("reservation rejected",
				zap.Int64("business_id", req.BusinessID),
				zap.String("date", in.date),
				zap.String("time", in.clock),
				zap.String("reason", err.Error()),
			)
		}
		return nil, err
	}

	s.logger.Info("reservation created",
		zap.String("code", res.Code),
		zap.Int64("business_id", res.BusinessID),
		zap.Int("tables", len(res.Tables)),
	)
	for _, n := range s.notifiers {
		n.ReservationCreated(ctx, res)
	}
	return res, nil
}

func (s *Service) create(ctx context.Context, tx pgx.Tx, scope tenancy.Scope, req CreateRequest, in normalized) (*models.Reservation, error) {
	b, err := s.businesses.GetByID(ctx, tx, req.BusinessID)
	if err != nil {
		if errors.Is(err, businesses.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	if !scope.CanAccess(b.TenantID) {
		return nil, ErrTenantMismatch
	}
	if b.Status != models.BusinessStatusActive {
		return nil, ErrBusinessInactive
	}
	if !calendar.IsDateAvailable(b, in.date) {
		return nil, ErrDateUnavailable
	}
	if !calendar.IsWithinHours(b, in.clock) {
		return nil, ErrOutsideHours
	}

	tables, err := s.businesses.LockTables(ctx, tx, b.ID)
	if err != nil {
		return nil, err
	}
	reserved, err := s.resolver.ReservedTableIDsTx(ctx, tx, b.ID, in.date, in.clock)
	if err != nil {
		return nil, err
	}
	assigned, err := AssignTables(tables, reserved, in.request)
	if err != nil {
		return nil, err
	}

	res := &models.Reservation{
		TenantID:   b.TenantID,
		BusinessID: b.ID,
		UserID:     req.UserID,
		Date:       in.date,
		Time:       in.clock,
		MealPeriod: in.meal,
		PartySize:  in.request.PartySize,
		Status:     models.ReservationConfirmed,
		Amount:     req.Amount,
	}
	seats := 0
	for _, t := range assigned {
		seats += t.Seats
		res.Tables = append(res.Tables, models.ReservationTableLink{
			TableID:    t.ID,
			TableLabel: t.Label,
			Seats:      t.Seats,
		})
	}
	if res.PartySize == 0 {
		res.PartySize = seats
	}

	if err := s.insertWithCode(ctx, tx, res); err != nil {
		return nil, err
	}
	if err := s.reservations.InsertLinks(ctx, tx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) insertWithCode(ctx context.Context, tx pgx.Tx, res *models.Reservation) error {
	for attempt := 1; attempt <= codeAttempts; attempt++ {
		code, err := s.codes.Next()
		if err != nil {
			return err
		}
		res.Code = code
		err = s.reservations.Insert(ctx, tx, res)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateCode) {
			return err
		}
		s.logger.Warn("reservation code collision", zap.String("code", code), zap.Int("attempt", attempt))
	}
	return ErrCodeCollision
}

// Get returns a reservation by its confirmation code.
func (s *Service) Get(ctx context.Context, scope tenancy.Scope, code string) (*models.Reservation, error) {
	res, err := tenancy.RunWithResult(ctx, s.runner, scope, func(ctx context.Context, tx pgx.Tx) (*models.Reservation, error) {
		return s.reservations.GetByCode(ctx, tx, code)
	})
	if err != nil {
		return nil, fmt.Errorf("reservation %s: %w", code, err)
	}
	return res, nil
}

func isRejection(err error) bool {
	for _, target := range []error{
		ErrBusinessNotFound, ErrBusinessInactive, ErrTenantMismatch, ErrDateUnavailable,
		ErrOutsideHours, ErrNoCapacity, ErrUnknownTable, ErrInvalidTableRequest,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
