package reservations

import "errors"

// Input errors. They are raised before a transaction is opened.
var (
	ErrInvalidDate         = errors.New("invalid reservation date")
	ErrInvalidTime         = errors.New("invalid reservation time")
	ErrInvalidMealPeriod   = errors.New("invalid meal period")
	ErrInvalidTableRequest = errors.New("table_ids or a positive party_size is required")
	ErrInvalidAmount       = errors.New("amount must not be negative")
)

// Business-rule rejections. Each names the axis that failed.
var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrBusinessInactive = errors.New("business is not accepting reservations")
	ErrTenantMismatch   = errors.New("business belongs to another tenant")
	ErrDateUnavailable  = errors.New("business is closed on the requested date")
	ErrOutsideHours     = errors.New("requested time is outside business hours")
	ErrNoCapacity       = errors.New("no free table for the requested slot")
	ErrUnknownTable     = errors.New("table does not belong to the business")
)

var (
	// ErrDuplicateCode is returned by the store when the generated code is already taken.
	ErrDuplicateCode = errors.New("reservation code already exists")
	// ErrCodeCollision is returned after the retry also collided. It is transient.
	ErrCodeCollision = errors.New("could not allocate a unique reservation code")
	ErrNotFound      = errors.New("reservation not found")
)
