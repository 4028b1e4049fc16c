package reservations

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tablebook/backend/internal/middleware"
	"github.com/tablebook/backend/internal/models"
	"github.com/tablebook/backend/internal/tenancy"
	"github.com/tablebook/backend/pkg/response"
)

// CreateBody is the body for POST /businesses/:id/reservations.
type CreateBody struct {
	Date       string           `json:"date" binding:"required"`
	Time       string           `json:"time" binding:"required"`
	MealPeriod string           `json:"meal_period"`
	PartySize  int              `json:"party_size"`
	TableIDs   []int64          `json:"table_ids"`
	Amount     *decimal.Decimal `json:"amount"`
}

// Booker is the service behind the handler.
type Booker interface {
	Create(ctx context.Context, scope tenancy.Scope, req CreateRequest) (*models.Reservation, error)
	Get(ctx context.Context, scope tenancy.Scope, code string) (*models.Reservation, error)
}

// Handler handles reservation HTTP endpoints.
type Handler struct {
	service Booker
	errors  *response.ErrorMapper
	logger  *zap.Logger
}

// NewHandler creates a reservation handler.
func NewHandler(service Booker, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, errors: ErrorMapper(), logger: logger}
}

// ErrorMapper maps the package's errors to responses. Each rejection has its own code so
// clients can tell a closed date from a full house.
func ErrorMapper() *response.ErrorMapper {
	return response.NewErrorMapper().
		With(ErrInvalidDate, http.StatusBadRequest, "invalid_date").
		With(ErrInvalidTime, http.StatusBadRequest, "invalid_time").
		With(ErrInvalidMealPeriod, http.StatusBadRequest, "invalid_meal_period").
		With(ErrInvalidTableRequest, http.StatusBadRequest, "invalid_table_request").
		With(ErrInvalidAmount, http.StatusBadRequest, "invalid_amount").
		With(tenancy.ErrInvalidTenantID, http.StatusForbidden, "invalid_tenant").
		With(ErrTenantMismatch, http.StatusForbidden, "tenant_mismatch").
		With(ErrBusinessNotFound, http.StatusNotFound, "business_not_found").
		With(ErrNotFound, http.StatusNotFound, "reservation_not_found").
		With(ErrBusinessInactive, http.StatusConflict, "business_inactive").
		With(ErrDateUnavailable, http.StatusConflict, "date_unavailable").
		With(ErrOutsideHours, http.StatusConflict, "outside_hours").
		With(ErrNoCapacity, http.StatusConflict, "no_capacity").
		With(ErrUnknownTable, http.StatusUnprocessableEntity, "unknown_table").
		With(ErrCodeCollision, http.StatusServiceUnavailable, "code_collision")
}

// Create handles POST /businesses/:id/reservations.
func (h *Handler) Create(c *gin.Context) {
	businessID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || businessID <= 0 {
		response.Fail(c, http.StatusBadRequest, "invalid_business_id", "invalid business id")
		return
	}
	var body CreateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	req := CreateRequest{
		BusinessID: businessID,
		UserID:     middleware.UserID(c),
		Date:       body.Date,
		Time:       body.Time,
		MealPeriod: strings.TrimSpace(body.MealPeriod),
		PartySize:  body.PartySize,
		TableIDs:   body.TableIDs,
	}
	if body.Amount != nil {
		req.Amount = *body.Amount
	}

	res, err := h.service.Create(c.Request.Context(), middleware.Scope(c), req)
	if err != nil {
		h.errors.Error(c, err)
		return
	}
	response.Created(c, res)
}

// GetByCode handles GET /reservations/:code.
func (h *Handler) GetByCode(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if code == "" {
		response.Fail(c, http.StatusBadRequest, "invalid_code", "reservation code required")
		return
	}
	res, err := h.service.Get(c.Request.Context(), middleware.Scope(c), code)
	if err != nil {
		h.errors.Error(c, err)
		return
	}
	response.OK(c, res)
}
