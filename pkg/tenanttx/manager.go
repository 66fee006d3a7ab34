// Package tenanttx binds a unit of work to one pooled connection, one transaction and
// one tenant session, and guarantees a single terminal action per unit.
package tenanttx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/fieldops/pkg/composables"
	"github.com/iota-uz/fieldops/pkg/tenancy"
)

// Conn is an exclusively checked-out connection. *pgxpool.Conn satisfies it.
type Conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Release()
}

type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
}

// Runner is what HTTP middleware and CLI commands depend on.
type Runner interface {
	WithTenantTransaction(ctx context.Context, s tenancy.Session, fn func(ctx context.Context) error) error
}

type Manager struct {
	pool   Pool
	logger *logrus.Entry
	m      *metrics
}

func NewManager(pool Pool, logger *logrus.Logger) *Manager {
	var entry *logrus.Entry
	if logger != nil {
		entry = logger.WithField("component", "tenanttx")
	} else {
		entry = logrus.WithField("component", "tenanttx")
	}
	return &Manager{pool: pool, logger: entry, m: getMetrics()}
}

var tracer = otel.Tracer("fieldops-tenanttx")

// WithTenantTransaction runs fn inside a fresh transaction stamped with s. The
// transaction is committed when fn returns nil and rolled back when fn returns an
// error, panics, or the caller's context is done. The connection is released exactly
// once on every path; a panic keeps unwinding after the rollback.
func (m *Manager) WithTenantTransaction(ctx context.Context, s tenancy.Session, fn func(ctx context.Context) error) (err error) {
	ctx, span := tracer.Start(ctx, "tenanttx.unit",
		trace.WithAttributes(
			attribute.String("tenant.role", string(s.Role)),
			attribute.String("tenant.id", s.TenantSetting()),
			attribute.Bool("tenant.god_mode", s.GodMode),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := time.Now()
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		if errors.Is(err, tenancy.ErrPoolExhausted) {
			m.m.record(outcomePoolExhausted, start)
		}
		return err
	}
	cleanupCtx := context.WithoutCancel(ctx)
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		m.m.record(outcomeBeginFailed, start)
		return fmt.Errorf("begin tenant transaction: %w", err)
	}

	finished := false
	defer func() {
		if finished {
			return
		}
		// fn panicked.
		m.rollback(cleanupCtx, tx)
		m.m.record(outcomeRolledBack, start)
	}()

	if err := tenancy.Apply(ctx, tx, s); err != nil {
		finished = true
		m.rollback(cleanupCtx, tx)
		m.m.record(outcomeRolledBack, start)
		return err
	}

	hooks := &composables.CommitHooks{}
	txCtx := composables.WithTx(ctx, tx)
	txCtx = composables.WithSession(txCtx, s)
	txCtx = composables.WithCommitHooks(txCtx, hooks)

	fnErr := fn(txCtx)
	finished = true

	if fnErr == nil {
		fnErr = ctx.Err()
	}
	if fnErr != nil {
		m.rollback(cleanupCtx, tx)
		m.m.record(outcomeRolledBack, start)
		return fnErr
	}

	if err := tx.Commit(ctx); err != nil {
		m.rollback(cleanupCtx, tx)
		m.m.record(outcomeCommitFailed, start)
		return fmt.Errorf("commit tenant transaction: %w", err)
	}
	m.m.record(outcomeCommitted, start)

	hooks.Run()
	return nil
}

func (m *Manager) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		m.logger.WithError(err).Error("failed to rollback tenant transaction")
	}
}
