package user

import (
	"context"
	"time"

	infrarepo "github.com/amirasaad/branchledger/infra/repository"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/dto"
	userrepo "github.com/amirasaad/branchledger/pkg/repository/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed user repository.
func New(db *gorm.DB) userrepo.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *user.User) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Create(fromDomain(u)).Error
	})
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, uu *dto.UserUpdate) error {
	updates := make(map[string]any)

	if uu.Email != nil {
		updates["email"] = *uu.Email
	}
	if uu.FirstName != nil {
		updates["first_name"] = *uu.FirstName
	}
	if uu.LastName != nil {
		updates["last_name"] = *uu.LastName
	}
	if uu.Phone != nil {
		updates["phone"] = *uu.Phone
	}
	if uu.Password != nil {
		updates["password"] = *uu.Password
	}
	if uu.IsActive != nil {
		updates["is_active"] = *uu.IsActive
	}
	switch {
	case uu.ClearBranch:
		updates["branch_id"] = nil
	case uu.BranchID != nil:
		updates["branch_id"] = *uu.BranchID
	}

	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()

	return infrarepo.RequireAffected(
		r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates),
	)
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *repository) first(ctx context.Context, query string, arg any) (*user.User, error) {
	var m User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return m.toDomain(), nil
}

func (r *repository) List(ctx context.Context, role user.Role) ([]*user.User, error) {
	q := r.db.WithContext(ctx).Model(&User{})
	if role != "" {
		q = q.Where("role = ?", string(role))
	}
	var rows []User
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	result := make([]*user.User, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toDomain())
	}
	return result, nil
}

func (r *repository) CountActive(ctx context.Context, role user.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&User{}).
		Where("role = ? AND is_active = ?", string(role), true).
		Count(&count).Error
	if err != nil {
		return 0, infrarepo.MapGormErrorToDomain(err)
	}
	return count, nil
}

func (r *repository) ClearBranch(ctx context.Context, branchID uuid.UUID) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Model(&User{}).
			Where("branch_id = ?", branchID).
			Update("branch_id", nil).Error
	})
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return infrarepo.RequireAffected(
		r.db.WithContext(ctx).Delete(&User{}, "id = ?", id),
	)
}

var _ userrepo.Repository = (*repository)(nil)
