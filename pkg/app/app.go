// Package app assembles the ledger services on top of shared infrastructure.
package app

import (
	"context"
	"fmt"

	"github.com/amirasaad/branchledger/pkg/config"
	"github.com/amirasaad/branchledger/pkg/seed"
	"github.com/amirasaad/branchledger/pkg/service/auth"
	"github.com/amirasaad/branchledger/pkg/service/branch"
	"github.com/amirasaad/branchledger/pkg/service/category"
	"github.com/amirasaad/branchledger/pkg/service/ledger"
	"github.com/amirasaad/branchledger/pkg/service/report"
	"github.com/amirasaad/branchledger/pkg/service/user"
)

type App struct {
	Deps            *config.Deps
	Config          *config.App
	AuthService     *auth.Service
	UserService     *user.Service
	BranchService   *branch.Service
	CategoryService *category.Service
	LedgerService   *ledger.Service
	ReportService   *report.Service
}

func New(deps *config.Deps, cfg *config.App) *App {
	a := &App{
		Deps:   deps,
		Config: cfg,
	}
	var (
		ledgerCfg  *config.Ledger
		mainBranch *config.MainBranch
		jwtCfg     *config.Jwt
	)
	if cfg != nil {
		ledgerCfg = cfg.Ledger
		if ledgerCfg != nil {
			mainBranch = ledgerCfg.MainBranch
		}
		if cfg.Auth != nil {
			jwtCfg = cfg.Auth.Jwt
		}
	}
	a.AuthService = auth.New(deps.Uow, jwtCfg, deps.Logger)
	a.UserService = user.New(deps.Uow, deps.Logger)
	a.BranchService = branch.New(deps.Uow, mainBranch, deps.Logger)
	a.CategoryService = category.New(deps.Uow, deps.Logger)
	a.LedgerService = ledger.New(deps.Uow, ledgerCfg, deps.Logger)
	a.ReportService = report.New(deps.Uow, a.BranchService, deps.Logger)
	return a
}

// Bootstrap creates the reserved categories and the main branch, then
// applies the seed file when one is configured. It is safe to run on every
// start.
func (a *App) Bootstrap(ctx context.Context) error {
	if err := a.CategoryService.EnsureReserved(ctx); err != nil {
		return fmt.Errorf("reserved categories: %w", err)
	}
	if _, err := a.BranchService.EnsureMain(ctx); err != nil {
		return fmt.Errorf("main branch: %w", err)
	}
	if a.Config == nil || a.Config.Seed == nil || a.Config.Seed.File == "" {
		return nil
	}
	f, err := seed.Load(a.Config.Seed.File)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if _, err := seed.Apply(ctx, f, a.BranchService, a.CategoryService, a.Deps.Logger); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}
