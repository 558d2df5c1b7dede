// Package backend opens the configured storage backend.
package backend

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"tasklist/internal/backend/filekv"
	"tasklist/internal/backend/googletasks"
	"tasklist/internal/backend/sqlkv"
	"tasklist/internal/config"
	"tasklist/internal/logging"
	"tasklist/internal/repository"
	"tasklist/internal/store"
)

// ErrAuth is returned when the googletasks backend has no usable token.
var ErrAuth = googletasks.ErrNotLoggedIn

// OpenRepository opens the repository selected by cfg.Backend.
func OpenRepository(ctx context.Context, cfg *config.Config, logger *log.Logger) (repository.Repository, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	switch cfg.Backend {
	case config.BackendFile, "":
		kv, err := filekv.Open(cfg.StoragePath(), logger)
		if err != nil {
			return nil, err
		}
		return repository.NewKV(kv, cfg.Variant, logger), nil

	case config.BackendSQLite:
		if err := cfg.EnsureDir(); err != nil {
			return nil, fmt.Errorf("create config directory: %w", err)
		}
		kv, err := sqlkv.Open(ctx, sqlkv.DriverSQLite, cfg.SQLiteDSN())
		if err != nil {
			return nil, err
		}
		return repository.NewKV(kv, cfg.Variant, logger), nil

	case config.BackendMySQL:
		kv, err := sqlkv.Open(ctx, sqlkv.DriverMySQL, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return repository.NewKV(kv, cfg.Variant, logger), nil

	case config.BackendGoogleTasks:
		repo, err := googletasks.New(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
	return nil, fmt.Errorf("%w: unknown backend: %s", config.ErrInvalid, cfg.Backend)
}

// OpenStore opens the configured repository and loads a store from it.
// The store owns the repository and closes it on Close.
func OpenStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*store.Store, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	repo, err := OpenRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("opened backend", "backend", cfg.Backend, "variant", cfg.Variant)

	st, err := store.Open(ctx, repo, cfg.Variant, store.WithLogger(logger))
	if err != nil {
		if cerr := repo.Close(); cerr != nil {
			logger.Warn("closing backend", "err", cerr)
		}
		return nil, err
	}
	return st, nil
}
