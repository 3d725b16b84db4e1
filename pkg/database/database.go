// Package database manages the PostgreSQL connection pool and ties its
// lifetime to the application lifecycle.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Ashwini-Khunte/receipt-tracker/pkg/lifecycle"
)

// System exposes the shared connection pool to domain repositories.
type System interface {
	// Connection returns the pool. Safe to share across systems.
	Connection() *sql.DB
	// Start registers the ping-on-startup and close-on-shutdown hooks.
	Start(lc *lifecycle.Coordinator) error
}

type pgDatabase struct {
	pool        *sql.DB
	log         *slog.Logger
	pingTimeout time.Duration
}

// New opens the pool described by cfg. sql.Open validates the DSN and
// sets pool limits; no connection is dialed until the startup hook pings.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	pool, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &pgDatabase{
		pool:        pool,
		log:         logger.With("system", "database"),
		pingTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *pgDatabase) Connection() *sql.DB {
	return d.pool
}

func (d *pgDatabase) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), d.pingTimeout)
		defer cancel()

		if err := d.pool.PingContext(ctx); err != nil {
			d.log.Error("postgres ping failed", "error", err)
			return
		}
		d.log.Info("postgres connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		if err := d.pool.Close(); err != nil {
			d.log.Error("postgres close failed", "error", err)
			return
		}
		d.log.Info("postgres connection closed")
	})

	return nil
}
