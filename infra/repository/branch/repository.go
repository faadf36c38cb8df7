package branch

import (
	"context"
	"time"

	infrarepo "github.com/amirasaad/branchledger/infra/repository"
	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/amirasaad/branchledger/pkg/dto"
	branchrepo "github.com/amirasaad/branchledger/pkg/repository/branch"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed branch repository.
func New(db *gorm.DB) branchrepo.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *branch.Branch) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Create(fromDomain(b)).Error
	})
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*branch.Branch, error) {
	var m Branch
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return m.toDomain(), nil
}

func (r *repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*branch.Branch, error) {
	var m Branch
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return m.toDomain(), nil
}

func (r *repository) GetMain(ctx context.Context) (*branch.Branch, error) {
	var m Branch
	err := r.db.WithContext(ctx).
		Where("branch_type = ?", string(branch.TypeMain)).
		First(&m).Error
	if err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return m.toDomain(), nil
}

func (r *repository) List(ctx context.Context, filter dto.BranchFilter) ([]*branch.Branch, error) {
	q := r.db.WithContext(ctx).Model(&Branch{})
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.Type != "" {
		q = q.Where("branch_type = ?", string(filter.Type))
	}
	var rows []Branch
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	result := make([]*branch.Branch, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toDomain())
	}
	return result, nil
}

func (r *repository) IncrementAllocatedFunds(
	ctx context.Context,
	id uuid.UUID,
	amount decimal.Decimal,
) error {
	res := r.db.WithContext(ctx).Model(&Branch{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"allocated_funds": gorm.Expr("allocated_funds + ?", amount),
			"updated_at":      time.Now().UTC(),
		})
	return infrarepo.RequireAffected(res)
}

func (r *repository) SumAllocatedFunds(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&Branch{}).
		Where("is_active = ?", true).
		Select("COALESCE(SUM(allocated_funds), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, infrarepo.MapGormErrorToDomain(err)
	}
	return total, nil
}

func (r *repository) ReassignCreator(ctx context.Context, from, to uuid.UUID) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Model(&Branch{}).
			Where("created_by_id = ?", from).
			Update("created_by_id", to).Error
	})
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return infrarepo.RequireAffected(
		r.db.WithContext(ctx).Delete(&Branch{}, "id = ?", id),
	)
}

var _ branchrepo.Repository = (*repository)(nil)
