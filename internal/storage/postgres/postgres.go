// Package postgres archives matches and global statistics in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/bastion/internal/config"
)

const applicationName = "bastion"

// Pool owns the pgx connection pool shared by the repositories.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the database described by cfg and pings it once.
//
// Precondition: cfg must pass config validation.
// Postcondition: Returns a reachable Pool or a non-nil error; no connections
// are left open on error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// Health pings the database, giving up after timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close releases every connection. The pool is unusable afterwards.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}

// Matches returns a match archive backed by this pool.
func (p *Pool) Matches() *MatchRepository {
	return NewMatchRepository(p.pool)
}

// Statistics returns a global statistics store backed by this pool.
func (p *Pool) Statistics() *StatisticsRepository {
	return NewStatisticsRepository(p.pool)
}

// HealthMonitor pings the pool on an interval for as long as it runs and
// closes the pool when stopped. It satisfies server.Service.
type HealthMonitor struct {
	pool     *Pool
	interval time.Duration
	logger   *zap.Logger
	stop     chan struct{}
}

// NewHealthMonitor creates a monitor for pool.
//
// Precondition: pool and logger must be non-nil; interval must be > 0.
func NewHealthMonitor(pool *Pool, interval time.Duration, logger *zap.Logger) *HealthMonitor {
	if pool == nil {
		panic("postgres.NewHealthMonitor: pool must not be nil")
	}
	if logger == nil {
		panic("postgres.NewHealthMonitor: logger must not be nil")
	}
	if interval <= 0 {
		panic("postgres.NewHealthMonitor: interval must be > 0")
	}
	return &HealthMonitor{pool: pool, interval: interval, logger: logger, stop: make(chan struct{})}
}

// Start blocks until Stop is called, logging failed pings at warn level.
func (m *HealthMonitor) Start() error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return nil
		case <-ticker.C:
			if err := m.pool.Health(context.Background(), m.interval/2); err != nil {
				m.logger.Warn("database health check failed", zap.Error(err))
			}
		}
	}
}

// Stop ends Start and closes the pool.
//
// Precondition: Stop is called at most once.
func (m *HealthMonitor) Stop() {
	close(m.stop)
	m.pool.Close()
}
