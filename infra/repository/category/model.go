package category

import (
	"time"

	"github.com/amirasaad/branchledger/pkg/domain/category"
	"github.com/google/uuid"
)

// Category represents an income or expenditure category row.
type Category struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Kind        string     `gorm:"size:16;not null;index"`
	Name        string     `gorm:"size:100;not null"`
	Description string     `gorm:"type:text"`
	Scope       string     `gorm:"size:10;not null"`
	BranchID    *uuid.UUID `gorm:"type:uuid;index"`
	IsActive    bool       `gorm:"not null"`
	CreatedByID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
}

// TableName specifies the table name for the Category model.
func (Category) TableName() string {
	return "categories"
}

func fromDomain(c *category.Category) *Category {
	return &Category{
		ID:          c.ID,
		Kind:        string(c.Kind),
		Name:        c.Name,
		Description: c.Description,
		Scope:       string(c.Scope),
		BranchID:    c.BranchID,
		IsActive:    c.IsActive,
		CreatedByID: c.CreatedBy,
		CreatedAt:   c.CreatedAt,
	}
}

func (m *Category) toDomain() *category.Category {
	return &category.Category{
		ID:          m.ID,
		Kind:        category.Kind(m.Kind),
		Name:        m.Name,
		Description: m.Description,
		Scope:       category.Scope(m.Scope),
		BranchID:    m.BranchID,
		IsActive:    m.IsActive,
		CreatedBy:   m.CreatedByID,
		CreatedAt:   m.CreatedAt,
	}
}
