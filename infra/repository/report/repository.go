// Package report implements the aggregate queries behind dashboards and reports.
package report

import (
	"context"
	"strings"
	"time"

	infrarepo "github.com/amirasaad/branchledger/infra/repository"
	"github.com/amirasaad/branchledger/infra/repository/transaction"
	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/dto"
	reportrepo "github.com/amirasaad/branchledger/pkg/repository/report"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed report repository.
func New(db *gorm.DB) reportrepo.Repository {
	return &repository{db: db}
}

func (r *repository) DailyTotals(
	ctx context.Context,
	filter dto.TransactionFilter,
) ([]dto.DailyTotal, error) {
	var rows []struct {
		Date            time.Time
		TransactionType string
		Total           decimal.Decimal
	}
	err := transaction.Scoped(r.db.WithContext(ctx), filter).
		Select("t.date AS date, t.transaction_type, SUM(t.amount) AS total").
		Group("t.date, t.transaction_type").
		Order("t.date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	result := make([]dto.DailyTotal, 0, len(rows))
	for _, row := range rows {
		result = append(result, dto.DailyTotal{
			Date:  ledger.Day(row.Date),
			Type:  ledger.Type(row.TransactionType),
			Total: row.Total,
		})
	}
	return result, nil
}

func (r *repository) CategoryTotals(
	ctx context.Context,
	filter dto.TransactionFilter,
) ([]dto.CategoryTotal, error) {
	q := transaction.Scoped(r.db.WithContext(ctx), filter).
		Select("t.category_id, c.name, SUM(t.amount) AS total, COUNT(*) AS count").
		Joins("JOIN categories AS c ON c.id = t.category_id").
		Group("t.category_id, c.name").
		Order("total DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var rows []dto.CategoryTotal
	if err := q.Scan(&rows).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return rows, nil
}

func (r *repository) BranchTotals(
	ctx context.Context,
	filter dto.TransactionFilter,
) ([]dto.BranchTotal, error) {
	on := []string{"t.branch_id = b.id"}
	args := []any{}
	if filter.StartDate != nil {
		on = append(on, "t.date >= ?")
		args = append(args, ledger.Day(*filter.StartDate))
	}
	if filter.EndDate != nil {
		on = append(on, "t.date <= ?")
		args = append(args, ledger.Day(*filter.EndDate))
	}

	q := r.db.WithContext(ctx).Table("branches AS b").
		Select(`b.id AS branch_id, b.name,
			COALESCE(SUM(CASE WHEN t.transaction_type = 'income' THEN t.amount END), 0) AS income,
			COALESCE(SUM(CASE WHEN t.transaction_type = 'expenditure' THEN t.amount END), 0) AS expenditure,
			COUNT(t.id) AS count`).
		Joins("LEFT JOIN transactions AS t ON "+strings.Join(on, " AND "), args...).
		Where("b.is_active = ?", true)
	if filter.BranchID != nil {
		q = q.Where("b.id = ?", *filter.BranchID)
	}

	var rows []struct {
		BranchID    uuid.UUID
		Name        string
		Income      decimal.Decimal
		Expenditure decimal.Decimal
		Count       int64
	}
	if err := q.Group("b.id, b.name").Order("b.name ASC").Scan(&rows).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	result := make([]dto.BranchTotal, 0, len(rows))
	for _, row := range rows {
		result = append(result, dto.BranchTotal(row))
	}
	return result, nil
}

var _ reportrepo.Repository = (*repository)(nil)
