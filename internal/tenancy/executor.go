package tenancy

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Session settings read by the row-level security policies. They are declared with
// is_local = true so they vanish when the transaction ends and never leak to the next
// user of a pooled connection.
const (
	SettingAdmin  = "app.is_admin"
	SettingTenant = "app.tenant_id"

	declareScopeSQL = `SELECT set_config('` + SettingAdmin + `', $1, true), set_config('` + SettingTenant + `', $2, true)`
)

// Beginner opens transactions. *pgxpool.Pool satisfies it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UnitOfWork is the caller-supplied work run inside a scoped transaction.
type UnitOfWork func(ctx context.Context, tx pgx.Tx) error

// Runner is the sanctioned entry point for every data access.
type Runner interface {
	Run(ctx context.Context, scope Scope, fn UnitOfWork) error
}

// Executor runs units of work in a transaction that first declares the caller's scope.
type Executor struct {
	db     Beginner
	logger *zap.Logger
}

// NewExecutor creates an executor over a connection pool.
func NewExecutor(db Beginner, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{db: db, logger: logger}
}

// Run opens a transaction, declares scope, runs fn, and commits. Any error from fn is
// returned unmodified after the transaction is rolled back. A malformed tenant id is
// rejected before a connection is checked out.
func (e *Executor) Run(ctx context.Context, scope Scope, fn UnitOfWork) error {
	tenantID, hasTenant, err := scope.ParseTenantID()
	if err != nil {
		return err
	}

	tx, err := e.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		// Rollback also returns the connection to the pool; run it even if ctx is done.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			e.logger.Warn("rollback failed", zap.Error(rbErr))
			return
		}
		e.logger.Debug("transaction rolled back",
			zap.String("tenant_id", scope.TenantID),
			zap.Bool("is_admin", scope.IsAdmin),
		)
	}()

	admin := "off"
	if scope.IsAdmin {
		admin = "on"
	}
	tenant := ""
	if hasTenant {
		tenant = strconv.FormatInt(tenantID, 10)
	}
	if _, err := tx.Exec(ctx, declareScopeSQL, admin, tenant); err != nil {
		return fmt.Errorf("declare tenant scope: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// RunWithResult is Run for units of work that produce a value.
func RunWithResult[T any](ctx context.Context, r Runner, scope Scope, fn func(ctx context.Context, tx pgx.Tx) (T, error)) (T, error) {
	var out T
	err := r.Run(ctx, scope, func(ctx context.Context, tx pgx.Tx) error {
		v, err := fn(ctx, tx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
