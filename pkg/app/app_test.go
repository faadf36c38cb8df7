package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/amirasaad/branchledger/internal/fixtures"
	"github.com/amirasaad/branchledger/internal/fixtures/memstore"
	"github.com/amirasaad/branchledger/pkg/app"
	"github.com/amirasaad/branchledger/pkg/config"
	"github.com/amirasaad/branchledger/pkg/domain/category"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedDoc = `
branches:
  - name: North
    location: Kano
categories:
  - kind: expenditure
    name: Diesel
    scope: sub
`

func newApp(t *testing.T, cfg *config.App) (*app.App, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	deps := &config.Deps{Uow: store, Logger: fixtures.Logger(), Config: cfg}
	return app.New(deps, cfg), store
}

func TestBootstrap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedDoc), 0o600))
	a, store := newApp(t, &config.App{
		Ledger: &config.Ledger{MainBranch: &config.MainBranch{Name: "Cathedral", Location: "Lagos"}},
		Seed:   &config.Seed{File: path},
	})
	ctx := context.Background()

	require.NoError(t, a.Bootstrap(ctx))
	counts := store.Counts()
	// main + North; two reserved categories + Diesel
	assert.Equal(t, 2, counts.Branches)
	assert.Equal(t, 3, counts.Categories)

	mainBranch, err := a.BranchService.EnsureMain(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Cathedral", mainBranch.Name)
	assert.Equal(t, "Lagos", mainBranch.Location)

	super := user.Principal{Role: user.RoleSuperAdmin}
	list, err := a.CategoryService.List(ctx, super, category.KindIncome)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, category.ReservedName, list[0].Name)

	require.NoError(t, a.Bootstrap(ctx))
	assert.Equal(t, counts, store.Counts())
}

func TestBootstrap_WithoutConfig(t *testing.T) {
	a, store := newApp(t, nil)
	require.NoError(t, a.Bootstrap(context.Background()))
	assert.Equal(t, 1, store.Counts().Branches)
}

func TestBootstrap_MissingSeedFile(t *testing.T) {
	a, _ := newApp(t, &config.App{Seed: &config.Seed{File: filepath.Join(t.TempDir(), "absent.yaml")}})
	err := a.Bootstrap(context.Background())
	assert.ErrorContains(t, err, "seed")
}
