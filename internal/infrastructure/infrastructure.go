// Package infrastructure assembles the shared subsystems every domain
// module depends on: lifecycle coordination, logging, the database pool,
// blob storage, and usage reporting.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Ashwini-Khunte/receipt-tracker/internal/config"
	"github.com/Ashwini-Khunte/receipt-tracker/internal/usage"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/database"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/lifecycle"
	"github.com/Ashwini-Khunte/receipt-tracker/pkg/storage"
)

// Infrastructure carries the shared subsystems. Domain systems receive
// it (or slices of it) rather than constructing their own.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Usage     usage.System
}

// New builds every subsystem from the application configuration without
// starting any of them; Start registers the lifecycle hooks.
func New(cfg *config.Config) (*Infrastructure, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Usage:     usage.New(&cfg.Usage, logger),
	}, nil
}

// Start hooks the stateful subsystems into the lifecycle coordinator.
// The usage client is stateless and needs no hooks.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("start database: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("start storage: %w", err)
	}
	return nil
}
