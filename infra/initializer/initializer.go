package initializer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/branchledger/infra"
	"github.com/amirasaad/branchledger/infra/cache"
	"github.com/amirasaad/branchledger/infra/migrations"
	"github.com/amirasaad/branchledger/pkg/config"
	"github.com/gofiber/fiber/v2"
)

const memoryStorageGC = time.Minute

// InitializeDependencies initializes all the application dependencies
func InitializeDependencies(cfg *config.App) (
	deps *config.Deps,
	err error,
) {
	deps = &config.Deps{Config: cfg}
	logger := SetupLogger(cfg.Log)
	deps.Logger = logger

	// Initialize database
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}

	if cfg.DB.Migrate {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := migrations.Up(sqlDB); err != nil {
			logger.Error("Failed to apply migrations", "error", err)
			return nil, err
		}
		logger.Info("Database migrations applied")
	}

	// Initialize unit of work
	deps.Uow = infra.NewUoW(db)

	deps.Storage, err = newStorage(cfg.Redis, logger)
	if err != nil {
		return nil, err
	}
	return deps, nil
}

// newStorage returns the idempotency storage: Redis when configured,
// otherwise process memory.
func newStorage(cfg *config.Redis, logger *slog.Logger) (fiber.Storage, error) {
	if cfg != nil && cfg.URL != "" {
		storage, err := cache.NewRedisStorage(cfg.URL, cfg.KeyPrefix, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis storage: %w", err)
		}
		logger.Info("Using Redis idempotency storage")
		return storage, nil
	}
	logger.Info("Using in-memory idempotency storage")
	return cache.NewMemoryStorage(memoryStorageGC), nil
}
