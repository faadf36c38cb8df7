// Package testutils starts a disposable Postgres for integration tests and
// wires the ledger on top of it.
package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/branchledger/infra"
	"github.com/amirasaad/branchledger/infra/cache"
	"github.com/amirasaad/branchledger/infra/migrations"
	"github.com/amirasaad/branchledger/internal/fixtures"
	"github.com/amirasaad/branchledger/pkg/app"
	"github.com/amirasaad/branchledger/pkg/config"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// startPostgresContainer starts a Postgres container using Testcontainers
func startPostgresContainer(ctx context.Context) (*tcpostgres.PostgresContainer, error) {
	return tcpostgres.Run(
		ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second),
		),
	)
}

// Postgres starts a migrated database that lives as long as t.
func Postgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()
	container, err := startPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := infra.NewDBConnection(&config.DB{
		Url:             url,
		MaxOpenConns:    20,
		MaxIdleConns:    20,
		ConnMaxLifetime: time.Minute,
	}, "test")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, migrations.Up(sqlDB))
	return db
}

// PostgresApp returns a bootstrapped ledger backed by a fresh database.
func PostgresApp(t *testing.T, cfg *config.App) *app.App {
	t.Helper()
	db := Postgres(t)
	if cfg == nil {
		cfg = &config.App{Env: "test"}
	}
	deps := &config.Deps{
		Uow:     infra.NewUoW(db),
		Storage: cache.NewMemoryStorage(time.Minute),
		Logger:  fixtures.Logger(),
		Config:  cfg,
	}
	a := app.New(deps, cfg)
	require.NoError(t, a.Bootstrap(context.Background()))
	return a
}
