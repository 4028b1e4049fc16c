// Package tenancy runs units of work inside a transaction scoped to one tenant.
package tenancy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidTenantID is returned when a scope carries a tenant identifier that is not numeric.
var ErrInvalidTenantID = errors.New("invalid tenant id")

// Scope identifies whose data a unit of work may see. It is built once per request
// from the authenticated caller and never mutated afterwards.
type Scope struct {
	TenantID string
	IsAdmin  bool
}

// ForTenant returns a scope limited to one tenant.
func ForTenant(id int64) Scope {
	return Scope{TenantID: strconv.FormatInt(id, 10)}
}

// Admin returns a scope that sees every tenant.
func Admin() Scope {
	return Scope{IsAdmin: true}
}

// HasTenant reports whether a tenant identifier was supplied.
func (s Scope) HasTenant() bool {
	return strings.TrimSpace(s.TenantID) != ""
}

// ParseTenantID validates the tenant identifier. ok is false when none is set.
func (s Scope) ParseTenantID() (id int64, ok bool, err error) {
	raw := strings.TrimSpace(s.TenantID)
	if raw == "" {
		return 0, false, nil
	}
	id, err = strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidTenantID, s.TenantID)
	}
	return id, true, nil
}

// CanAccess reports whether the scope may act on data owned by tenantID.
func (s Scope) CanAccess(tenantID int64) bool {
	if s.IsAdmin {
		return true
	}
	id, ok, err := s.ParseTenantID()
	return err == nil && ok && id == tenantID
}
