// Package dbpool owns the process-wide connection pool. It is constructed once at
// startup, injected where needed and closed on shutdown.
package dbpool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/fieldops/pkg/tenancy"
	"github.com/iota-uz/fieldops/pkg/tenanttx"
)

type Options struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	AcquireTimeout  time.Duration
	MaxConnLifetime time.Duration
	ConnectTimeout  time.Duration
}

func (o Options) validate() error {
	if o.DSN == "" {
		return errors.New("dbpool: DSN is required")
	}
	if o.MaxConns <= 0 {
		return fmt.Errorf("dbpool: MaxConns must be positive, got %d", o.MaxConns)
	}
	if o.MinConns < 0 || o.MinConns > o.MaxConns {
		return fmt.Errorf("dbpool: MinConns must be within [0, %d], got %d", o.MaxConns, o.MinConns)
	}
	if o.AcquireTimeout <= 0 {
		return fmt.Errorf("dbpool: AcquireTimeout must be positive, got %s", o.AcquireTimeout)
	}
	return nil
}

type Pool struct {
	pgx            *pgxpool.Pool
	acquireTimeout time.Duration
	logger         *logrus.Entry
}

func New(ctx context.Context, opts Options, logger *logrus.Logger) (*Pool, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	cfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("dbpool: parse config: %w", err)
	}
	cfg.MaxConns = opts.MaxConns
	cfg.MinConns = opts.MinConns
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.ConnectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = opts.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("dbpool: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("dbpool: ping: %w", err)
	}

	var entry *logrus.Entry
	if logger != nil {
		entry = logger.WithField("component", "dbpool")
	} else {
		entry = logrus.WithField("component", "dbpool")
	}
	p := &Pool{pgx: pool, acquireTimeout: opts.AcquireTimeout, logger: entry}
	registerStats(p)
	return p, nil
}

// Acquire checks out one connection, waiting at most the configured acquire timeout.
func (p *Pool) Acquire(ctx context.Context) (tenanttx.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()

	conn, err := p.pgx.Acquire(acquireCtx)
	if err != nil {
		return nil, classifyAcquireError(ctx, acquireCtx, err)
	}
	return conn, nil
}

func classifyAcquireError(parent, acquireCtx context.Context, err error) error {
	if parent.Err() == nil && errors.Is(acquireCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", tenancy.ErrPoolExhausted, err)
	}
	return fmt.Errorf("dbpool: acquire: %w", err)
}

func (p *Pool) Ping(ctx context.Context) error {
	return p.pgx.Ping(ctx)
}

func (p *Pool) Stat() *pgxpool.Stat {
	return p.pgx.Stat()
}

// Close waits for checked-out connections to be released, then closes the pool.
func (p *Pool) Close() {
	p.logger.Info("draining connection pool")
	p.pgx.Close()
}
