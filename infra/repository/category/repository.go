package category

import (
	"context"

	infrarepo "github.com/amirasaad/branchledger/infra/repository"
	"github.com/amirasaad/branchledger/pkg/domain/category"
	"github.com/amirasaad/branchledger/pkg/dto"
	categoryrepo "github.com/amirasaad/branchledger/pkg/repository/category"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed category repository.
func New(db *gorm.DB) categoryrepo.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *category.Category) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Create(fromDomain(c)).Error
	})
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	var m Category
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return m.toDomain(), nil
}

func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Category{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, infrarepo.MapGormErrorToDomain(err)
	}
	return count > 0, nil
}

func (r *repository) List(ctx context.Context, filter dto.CategoryFilter) ([]*category.Category, error) {
	q := r.db.WithContext(ctx).Model(&Category{})
	if filter.Kind != "" {
		q = q.Where("kind = ?", string(filter.Kind))
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []Category
	if err := q.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	result := make([]*category.Category, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toDomain())
	}
	return result, nil
}

func (r *repository) DeleteByBranch(ctx context.Context, branchID uuid.UUID) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Delete(&Category{}, "branch_id = ?", branchID).Error
	})
}

func (r *repository) ReassignCreator(ctx context.Context, from, to uuid.UUID) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Model(&Category{}).
			Where("created_by_id = ?", from).
			Update("created_by_id", to).Error
	})
}

var _ categoryrepo.Repository = (*repository)(nil)
