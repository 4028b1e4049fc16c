package businesses

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tablebook/backend/internal/availability"
	"github.com/tablebook/backend/internal/calendar"
	"github.com/tablebook/backend/internal/middleware"
	"github.com/tablebook/backend/internal/models"
	"github.com/tablebook/backend/internal/tenancy"
	"github.com/tablebook/backend/internal/timenorm"
	"github.com/tablebook/backend/pkg/response"
)

// TableResolver finds reserved tables on the caller's transaction.
type TableResolver interface {
	ReservedTableIDsTx(ctx context.Context, tx pgx.Tx, businessID int64, date, clock string) (availability.TableSet, error)
}

// Availability is the answer to GET /businesses/:id/availability. The two calendar axes
// are reported separately.
type Availability struct {
	BusinessID       int64                     `json:"business_id"`
	Date             string                    `json:"date"`
	Time             string                    `json:"time"`
	DateOpen         bool                      `json:"date_open"`
	WithinHours      bool                      `json:"within_hours"`
	ReservedTableIDs []int64                   `json:"reserved_table_ids"`
	FreeTables       []models.ReservationTable `json:"free_tables"`
	FreeSeats        int                       `json:"free_seats"`
}

// Handler serves business lookups and availability.
type Handler struct {
	runner   tenancy.Runner
	repo     *Repository
	resolver TableResolver
	errors   *response.ErrorMapper
	logger   *zap.Logger
}

// NewHandler creates a business handler.
func NewHandler(runner tenancy.Runner, repo *Repository, resolver TableResolver, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	errs := response.NewErrorMapper().
		With(ErrNotFound, http.StatusNotFound, "business_not_found").
		With(tenancy.ErrInvalidTenantID, http.StatusForbidden, "invalid_tenant")
	return &Handler{runner: runner, repo: repo, resolver: resolver, errors: errs, logger: logger}
}

// Find loads a business under scope. Businesses of other tenants are not found.
func (h *Handler) Find(ctx context.Context, scope tenancy.Scope, id int64) (*models.Business, error) {
	return tenancy.RunWithResult(ctx, h.runner, scope, func(ctx context.Context, tx pgx.Tx) (*models.Business, error) {
		return h.repo.GetByID(ctx, tx, id)
	})
}

// Get handles GET /businesses/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := businessID(c)
	if !ok {
		return
	}
	b, err := h.Find(c.Request.Context(), middleware.Scope(c), id)
	if err != nil {
		h.errors.Error(c, err)
		return
	}
	response.OK(c, b)
}

// Availability handles GET /businesses/:id/availability?date=YYYY-MM-DD&time=HH:MM.
func (h *Handler) Availability(c *gin.Context) {
	id, ok := businessID(c)
	if !ok {
		return
	}
	date, ok := timenorm.NormalizeDate(c.Query("date"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return
	}
	clock, ok := timenorm.NormalizeTime(c.Query("time"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, "invalid_time", "time must be HH:MM")
		return
	}

	scope := middleware.Scope(c)
	out, err := tenancy.RunWithResult(c.Request.Context(), h.runner, scope, func(ctx context.Context, tx pgx.Tx) (*Availability, error) {
		b, err := h.repo.GetByID(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		tables, err := h.repo.ListTables(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		reserved, err := h.resolver.ReservedTableIDsTx(ctx, tx, id, date, clock)
		if err != nil {
			return nil, err
		}
		return summarize(b, tables, reserved, date, clock), nil
	})
	if err != nil {
		h.errors.Error(c, err)
		return
	}
	response.OK(c, out)
}

func summarize(b *models.Business, tables []models.ReservationTable, reserved availability.TableSet, date, clock string) *Availability {
	out := &Availability{
		BusinessID:       b.ID,
		Date:             date,
		Time:             clock,
		DateOpen:         calendar.IsDateAvailable(b, date),
		WithinHours:      calendar.IsWithinHours(b, clock),
		ReservedTableIDs: reserved.Sorted(),
		FreeTables:       []models.ReservationTable{},
	}
	for _, t := range tables {
		if t.Status == models.TableStatusAvailable && !reserved.Has(t.ID) {
			out.FreeTables = append(out.FreeTables, t)
			out.FreeSeats += t.Seats
		}
	}
	return out
}

func businessID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, "invalid_business_id", "invalid business id")
		return 0, false
	}
	return id, true
}
