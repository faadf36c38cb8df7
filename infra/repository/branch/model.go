package branch

import (
	"time"

	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Branch represents a branch row.
type Branch struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name           string          `gorm:"size:200;not null"`
	Location       string          `gorm:"size:200"`
	State          string          `gorm:"size:100"`
	Address        string          `gorm:"type:text"`
	BranchType     string          `gorm:"size:10;not null;index"`
	AllocatedFunds decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	IsActive       bool            `gorm:"not null"`
	CreatedByID    *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for the Branch model.
func (Branch) TableName() string {
	return "branches"
}

func fromDomain(b *branch.Branch) *Branch {
	return &Branch{
		ID:             b.ID,
		Name:           b.Name,
		Location:       b.Location,
		State:          b.State,
		Address:        b.Address,
		BranchType:     string(b.Type),
		AllocatedFunds: b.AllocatedFunds,
		IsActive:       b.IsActive,
		CreatedByID:    b.CreatedBy,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func (m *Branch) toDomain() *branch.Branch {
	return &branch.Branch{
		ID:             m.ID,
		Name:           m.Name,
		Location:       m.Location,
		State:          m.State,
		Address:        m.Address,
		Type:           branch.Type(m.BranchType),
		AllocatedFunds: m.AllocatedFunds,
		IsActive:       m.IsActive,
		CreatedBy:      m.CreatedByID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
