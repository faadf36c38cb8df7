// Package report builds dashboards, period reports and spreadsheet exports
// from ledger aggregates.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/amirasaad/branchledger/pkg/repository"
	branchrepo "github.com/amirasaad/branchledger/pkg/repository/branch"
	reportrepo "github.com/amirasaad/branchledger/pkg/repository/report"
	transactionrepo "github.com/amirasaad/branchledger/pkg/repository/transaction"
	userrepo "github.com/amirasaad/branchledger/pkg/repository/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	recentTransactions = 10
	topCategories      = 5
	trendDays          = 30
)

// MainBranchProvider returns the main branch, creating it when needed.
type MainBranchProvider interface {
	EnsureMain(ctx context.Context) (*branch.Branch, error)
}

// Service provides dashboards and reports.
type Service struct {
	uow      repository.UnitOfWork
	branches MainBranchProvider
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a report Service.
func New(
	uow repository.UnitOfWork,
	branches MainBranchProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:      uow,
		branches: branches,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// BranchSummary is the balance of one branch with its latest transactions.
type BranchSummary struct {
	Branch      *branch.Branch         `json:"branch"`
	Income      decimal.Decimal        `json:"income"`
	Expenditure decimal.Decimal        `json:"expenditure"`
	Balance     decimal.Decimal        `json:"balance"`
	Recent      []*dto.TransactionRead `json:"recent_transactions"`
}

// Dashboard is the landing view. Super admins get the organisation-wide
// fields; branch admins only Branch.
type Dashboard struct {
	Branch         *BranchSummary   `json:"branch,omitempty"`
	Main           *BranchSummary   `json:"main_branch,omitempty"`
	Totals         *dto.Totals      `json:"totals,omitempty"`
	Net            *decimal.Decimal `json:"net,omitempty"`
	TotalAllocated *decimal.Decimal `json:"total_allocated,omitempty"`
	SubBranches    []*branch.Branch `json:"sub_branches,omitempty"`
	ActiveAdmins   *int64           `json:"active_branch_admins,omitempty"`
}

// Dashboard returns the dashboard of p.
func (s *Service) Dashboard(ctx context.Context, p user.Principal) (*Dashboard, error) {
	if !p.IsSuperAdmin() {
		id, err := p.ManagedBranch()
		if err != nil {
			return nil, err
		}
		summary, err := s.branchSummary(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Dashboard{Branch: summary}, nil
	}

	mainBranch, err := s.branches.EnsureMain(ctx)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{}
	if d.Main, err = s.branchSummary(ctx, mainBranch.ID); err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		branches, err := repository.Get[branchrepo.Repository](uow)
		if err != nil {
			return err
		}
		txs, err := repository.Get[transactionrepo.Repository](uow)
		if err != nil {
			return err
		}
		users, err := repository.Get[userrepo.Repository](uow)
		if err != nil {
			return err
		}
		totals, err := txs.Totals(ctx, dto.TransactionFilter{ActiveBranchesOnly: true})
		if err != nil {
			return err
		}
		net := totals.Net()
		d.Totals, d.Net = &totals, &net
		allocated, err := branches.SumAllocatedFunds(ctx)
		if err != nil {
			return err
		}
		d.TotalAllocated = &allocated
		if d.SubBranches, err = branches.List(ctx, dto.BranchFilter{ActiveOnly: true, Type: branch.TypeSub}); err != nil {
			return err
		}
		admins, err := users.CountActive(ctx, user.RoleBranchAdmin)
		if err != nil {
			return err
		}
		d.ActiveAdmins = &admins
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) branchSummary(ctx context.Context, id uuid.UUID) (summary *BranchSummary, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		branches, err := repository.Get[branchrepo.Repository](uow)
		if err != nil {
			return err
		}
		txs, err := repository.Get[transactionrepo.Repository](uow)
		if err != nil {
			return err
		}
		b, err := branches.Get(ctx, id)
		if err != nil {
			return err
		}
		filter := dto.TransactionFilter{BranchID: &id}
		totals, err := txs.Totals(ctx, filter)
		if err != nil {
			return err
		}
		filter.Limit = recentTransactions
		recent, err := txs.List(ctx, filter)
		if err != nil {
			return err
		}
		summary = &BranchSummary{
			Branch:      b,
			Income:      totals.Income,
			Expenditure: totals.Expenditure,
			Balance:     totals.Net(),
			Recent:      recent,
		}
		return nil
	})
	return summary, err
}

// Filter selects the period and branch of a report.
type Filter struct {
	StartDate *time.Time
	EndDate   *time.Time
	BranchID  *uuid.UUID
}

// DailyPoint is one day of the trend chart.
type DailyPoint struct {
	Date        time.Time       `json:"date"`
	Income      decimal.Decimal `json:"income"`
	Expenditure decimal.Decimal `json:"expenditure"`
}

// Report summarises the ledger over a period.
type Report struct {
	StartDate           time.Time           `json:"start_date"`
	EndDate             time.Time           `json:"end_date"`
	BranchID            *uuid.UUID          `json:"branch_id,omitempty"`
	Totals              dto.Totals          `json:"totals"`
	Net                 decimal.Decimal     `json:"net"`
	Average             decimal.Decimal     `json:"average_transaction"`
	Trend               []DailyPoint        `json:"daily_trend"`
	TopIncome           []dto.CategoryTotal `json:"top_income_categories"`
	TopExpenditure      []dto.CategoryTotal `json:"top_expenditure_categories"`
	Branches            []dto.BranchTotal   `json:"branch_performance,omitempty"`
	CurrentMonthIncome  decimal.Decimal     `json:"current_month_income"`
	PreviousMonthIncome decimal.Decimal     `json:"previous_month_income"`
	Growth              decimal.Decimal     `json:"income_growth_percent"`
}

// resolve applies role scoping and the default period (first of the
// current month until today).
func (s *Service) resolve(p user.Principal, f Filter) (Filter, error) {
	if !p.IsSuperAdmin() {
		id, err := p.ManagedBranch()
		if err != nil {
			return f, err
		}
		f.BranchID = &id
	}
	today := ledger.Day(s.now())
	if f.EndDate == nil {
		f.EndDate = &today
	}
	if f.StartDate == nil {
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		f.StartDate = &start
	}
	start, end := ledger.Day(*f.StartDate), ledger.Day(*f.EndDate)
	if start.After(end) {
		return f, fmt.Errorf("%w: start date is after end date", domain.ErrValidation)
	}
	f.StartDate, f.EndDate = &start, &end
	return f, nil
}

// Report computes the report of p over f.
func (s *Service) Report(ctx context.Context, p user.Principal, f Filter) (*Report, error) {
	f, err := s.resolve(p, f)
	if err != nil {
		return nil, err
	}
	r := &Report{StartDate: *f.StartDate, EndDate: *f.EndDate, BranchID: f.BranchID}
	period := dto.TransactionFilter{
		BranchID:           f.BranchID,
		StartDate:          f.StartDate,
		EndDate:            f.EndDate,
		ActiveBranchesOnly: true,
	}

	today := ledger.Day(s.now())
	curStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevStart := curStart.AddDate(0, -1, 0)
	prevEnd := curStart.AddDate(0, 0, -1)
	trendStart := r.EndDate.AddDate(0, 0, -(trendDays - 1))

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := repository.Get[transactionrepo.Repository](uow)
		if err != nil {
			return err
		}
		reports, err := repository.Get[reportrepo.Repository](uow)
		if err != nil {
			return err
		}

		if r.Totals, err = txs.Totals(ctx, period); err != nil {
			return err
		}

		trend := period
		trend.StartDate = &trendStart
		daily, err := reports.DailyTotals(ctx, trend)
		if err != nil {
			return err
		}
		r.Trend = fillTrend(trendStart, r.EndDate, daily)

		top := period
		top.Limit = topCategories
		top.Type = ledger.TypeIncome
		if r.TopIncome, err = reports.CategoryTotals(ctx, top); err != nil {
			return err
		}
		top.Type = ledger.TypeExpenditure
		if r.TopExpenditure, err = reports.CategoryTotals(ctx, top); err != nil {
			return err
		}

		if p.IsSuperAdmin() {
			if r.Branches, err = reports.BranchTotals(ctx, period); err != nil {
				return err
			}
		}

		month := dto.TransactionFilter{
			BranchID:           f.BranchID,
			Type:               ledger.TypeIncome,
			StartDate:          &curStart,
			EndDate:            &today,
			ActiveBranchesOnly: true,
		}
		current, err := txs.Totals(ctx, month)
		if err != nil {
			return err
		}
		month.StartDate, month.EndDate = &prevStart, &prevEnd
		previous, err := txs.Totals(ctx, month)
		if err != nil {
			return err
		}
		r.CurrentMonthIncome = current.Income
		r.PreviousMonthIncome = previous.Income
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to build report", "error", err)
		return nil, err
	}

	r.Net = r.Totals.Net()
	r.Average = decimal.Zero
	if n := r.Totals.Count(); n > 0 {
		r.Average = r.Totals.Income.Add(r.Totals.Expenditure).
			Div(decimal.NewFromInt(n)).
			Round(ledger.MaxFractionDigits)
	}
	r.Growth = Growth(r.CurrentMonthIncome, r.PreviousMonthIncome)
	return r, nil
}

// Growth returns the percentage change from previous to current, rounded to
// two places. It is zero when previous is zero.
func Growth(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).
		Div(previous).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// fillTrend spreads daily totals over every day in [start, end], zero-filled.
func fillTrend(start, end time.Time, daily []dto.DailyTotal) []DailyPoint {
	index := map[time.Time]int{}
	var points []DailyPoint
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		index[d] = len(points)
		points = append(points, DailyPoint{Date: d, Income: decimal.Zero, Expenditure: decimal.Zero})
	}
	for _, t := range daily {
		i, ok := index[ledger.Day(t.Date)]
		if !ok {
			continue
		}
		if t.Type == ledger.TypeIncome {
			points[i].Income = points[i].Income.Add(t.Total)
		} else {
			points[i].Expenditure = points[i].Expenditure.Add(t.Total)
		}
	}
	return points
}
