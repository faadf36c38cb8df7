package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type reportRepository struct {
	db *db
}

func (r *reportRepository) DailyTotals(
	_ context.Context,
	filter dto.TransactionFilter,
) ([]dto.DailyTotal, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	type key struct {
		date time.Time
		typ  ledger.Type
	}
	sums := map[key]decimal.Decimal{}
	for _, t := range r.db.state.filtered(filter) {
		k := key{date: t.Date, typ: t.Type}
		sums[k] = sums[k].Add(t.Amount)
	}
	result := make([]dto.DailyTotal, 0, len(sums))
	for k, total := range sums {
		result = append(result, dto.DailyTotal{Date: k.date, Type: k.typ, Total: total})
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Type < result[j].Type
	})
	return result, nil
}

func (r *reportRepository) CategoryTotals(
	_ context.Context,
	filter dto.TransactionFilter,
) ([]dto.CategoryTotal, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	byCategory := map[uuid.UUID]*dto.CategoryTotal{}
	for _, t := range r.db.state.filtered(filter) {
		ct, ok := byCategory[t.CategoryID]
		if !ok {
			ct = &dto.CategoryTotal{
				CategoryID: t.CategoryID,
				Name:       r.db.state.categories[t.CategoryID].Name,
				Total:      decimal.Zero,
			}
			byCategory[t.CategoryID] = ct
		}
		ct.Total = ct.Total.Add(t.Amount)
		ct.Count++
	}
	result := make([]dto.CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		result = append(result, *ct)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Total.GreaterThan(result[j].Total)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *reportRepository) BranchTotals(
	_ context.Context,
	filter dto.TransactionFilter,
) ([]dto.BranchTotal, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	byBranch := map[uuid.UUID]*dto.BranchTotal{}
	for _, b := range r.db.state.branches {
		if !b.IsActive || (filter.BranchID != nil && b.ID != *filter.BranchID) {
			continue
		}
		byBranch[b.ID] = &dto.BranchTotal{
			BranchID:    b.ID,
			Name:        b.Name,
			Income:      decimal.Zero,
			Expenditure: decimal.Zero,
		}
	}
	dates := dto.TransactionFilter{StartDate: filter.StartDate, EndDate: filter.EndDate}
	for _, t := range r.db.state.filtered(dates) {
		bt, ok := byBranch[t.BranchID]
		if !ok {
			continue
		}
		if t.Type == ledger.TypeIncome {
			bt.Income = bt.Income.Add(t.Amount)
		} else {
			bt.Expenditure = bt.Expenditure.Add(t.Amount)
		}
		bt.Count++
	}
	result := make([]dto.BranchTotal, 0, len(byBranch))
	for _, bt := range byBranch {
		result = append(result, *bt)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}
