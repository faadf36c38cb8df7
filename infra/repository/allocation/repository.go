package allocation

import (
	"context"

	infrarepo "github.com/amirasaad/branchledger/infra/repository"
	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/dto"
	allocationrepo "github.com/amirasaad/branchledger/pkg/repository/allocation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultListLimit caps allocation listings without an explicit limit.
const DefaultListLimit = 100

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed allocation repository.
func New(db *gorm.DB) allocationrepo.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, a *ledger.FundAllocation) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Create(fromDomain(a)).Error
	})
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*ledger.FundAllocation, error) {
	var m FundAllocation
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return m.toDomain(), nil
}

func (r *repository) List(
	ctx context.Context,
	filter dto.AllocationFilter,
) ([]*dto.AllocationRead, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	q := r.db.WithContext(ctx).Table("fund_allocations AS a").
		Select("a.*, fb.name AS from_branch_name, tb.name AS to_branch_name").
		Joins("JOIN branches AS fb ON fb.id = a.from_branch_id").
		Joins("JOIN branches AS tb ON tb.id = a.to_branch_id")
	if filter.ToBranchID != nil {
		q = q.Where("a.to_branch_id = ?", *filter.ToBranchID)
	}
	var rows []struct {
		FundAllocation
		FromBranchName string
		ToBranchName   string
	}
	if err := q.Order("a.allocated_at DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	result := make([]*dto.AllocationRead, 0, len(rows))
	for i := range rows {
		result = append(result, &dto.AllocationRead{
			FundAllocation: *rows[i].toDomain(),
			FromBranchName: rows[i].FromBranchName,
			ToBranchName:   rows[i].ToBranchName,
		})
	}
	return result, nil
}

func (r *repository) CountByBranch(ctx context.Context, branchID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&FundAllocation{}).
		Where("to_branch_id = ?", branchID).
		Count(&count).Error
	if err != nil {
		return 0, infrarepo.MapGormErrorToDomain(err)
	}
	return count, nil
}

func (r *repository) DeleteByBranch(ctx context.Context, branchID uuid.UUID) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Delete(&FundAllocation{}, "to_branch_id = ?", branchID).Error
	})
}

func (r *repository) ReassignAllocator(ctx context.Context, from, to uuid.UUID) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Model(&FundAllocation{}).
			Where("allocated_by_id = ?", from).
			Update("allocated_by_id", to).Error
	})
}

var _ allocationrepo.Repository = (*repository)(nil)
