package transaction

import (
	"context"

	infrarepo "github.com/amirasaad/branchledger/infra/repository"
	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/dto"
	transactionrepo "github.com/amirasaad/branchledger/pkg/repository/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed transaction repository.
func New(db *gorm.DB) transactionrepo.Repository {
	return &repository{db: db}
}

// Scoped returns a query over "transactions AS t" joined with
// "branches AS b" and narrowed by filter. The limit is not applied.
func Scoped(db *gorm.DB, filter dto.TransactionFilter) *gorm.DB {
	q := db.Table("transactions AS t").Joins("JOIN branches AS b ON b.id = t.branch_id")
	if filter.BranchID != nil {
		q = q.Where("t.branch_id = ?", *filter.BranchID)
	}
	if filter.Type != "" {
		q = q.Where("t.transaction_type = ?", string(filter.Type))
	}
	if filter.StartDate != nil {
		q = q.Where("t.date >= ?", ledger.Day(*filter.StartDate))
	}
	if filter.EndDate != nil {
		q = q.Where("t.date <= ?", ledger.Day(*filter.EndDate))
	}
	if filter.ActiveBranchesOnly {
		q = q.Where("b.is_active = ?", true)
	}
	return q
}

func (r *repository) Create(ctx context.Context, t *ledger.Transaction) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Create(fromDomain(t)).Error
	})
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var m Transaction
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return m.toDomain(), nil
}

func (r *repository) List(
	ctx context.Context,
	filter dto.TransactionFilter,
) ([]*dto.TransactionRead, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = dto.MaxTransactionRows
	}
	if limit > dto.MaxExportRows {
		limit = dto.MaxExportRows
	}
	var rows []row
	err := Scoped(r.db.WithContext(ctx), filter).
		Select("t.*, b.name AS branch_name, c.name AS category_name").
		Joins("LEFT JOIN categories AS c ON c.id = t.category_id").
		Order("t.date DESC, t.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	result := make([]*dto.TransactionRead, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toRead())
	}
	return result, nil
}

func (r *repository) Totals(ctx context.Context, filter dto.TransactionFilter) (dto.Totals, error) {
	var rows []struct {
		TransactionType string
		Total           decimal.Decimal
		Count           int64
	}
	err := Scoped(r.db.WithContext(ctx), filter).
		Select("t.transaction_type, COALESCE(SUM(t.amount), 0) AS total, COUNT(*) AS count").
		Group("t.transaction_type").
		Scan(&rows).Error
	if err != nil {
		return dto.Totals{}, infrarepo.MapGormErrorToDomain(err)
	}
	totals := dto.Totals{Income: decimal.Zero, Expenditure: decimal.Zero}
	for _, agg := range rows {
		switch ledger.Type(agg.TransactionType) {
		case ledger.TypeIncome:
			totals.Income = agg.Total
			totals.IncomeCount = agg.Count
		case ledger.TypeExpenditure:
			totals.Expenditure = agg.Total
			totals.ExpenditureCount = agg.Count
		}
	}
	return totals, nil
}

func (r *repository) CountByBranch(ctx context.Context, branchID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("branch_id = ?", branchID).
		Count(&count).Error
	if err != nil {
		return 0, infrarepo.MapGormErrorToDomain(err)
	}
	return count, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return infrarepo.RequireAffected(
		r.db.WithContext(ctx).Delete(&Transaction{}, "id = ?", id),
	)
}

func (r *repository) DeleteByBranch(ctx context.Context, branchID uuid.UUID) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Delete(&Transaction{}, "branch_id = ?", branchID).Error
	})
}

func (r *repository) UnlinkAllocationsTo(ctx context.Context, branchID uuid.UUID) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Model(&Transaction{}).
			Where("fund_allocation_id IN (?)",
				r.db.Table("fund_allocations").Select("id").Where("to_branch_id = ?", branchID),
			).
			Update("fund_allocation_id", nil).Error
	})
}

func (r *repository) ReassignCreator(ctx context.Context, from, to uuid.UUID) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Model(&Transaction{}).
			Where("created_by_id = ?", from).
			Update("created_by_id", to).Error
	})
}

var _ transactionrepo.Repository = (*repository)(nil)
