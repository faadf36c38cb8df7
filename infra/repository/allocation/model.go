package allocation

import (
	"time"

	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FundAllocation represents a persisted allocation from the main branch.
type FundAllocation struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	FromBranchID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ToBranchID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Description   string          `gorm:"type:text"`
	AllocatedByID *uuid.UUID      `gorm:"type:uuid"`
	AllocatedAt   time.Time       `gorm:"not null"`
	IsActive      bool            `gorm:"not null"`
}

// TableName specifies the table name for the FundAllocation model.
func (FundAllocation) TableName() string {
	return "fund_allocations"
}

func fromDomain(a *ledger.FundAllocation) *FundAllocation {
	return &FundAllocation{
		ID:            a.ID,
		FromBranchID:  a.FromBranchID,
		ToBranchID:    a.ToBranchID,
		Amount:        a.Amount,
		Description:   a.Description,
		AllocatedByID: a.AllocatedBy,
		AllocatedAt:   a.AllocatedAt,
		IsActive:      a.IsActive,
	}
}

func (m *FundAllocation) toDomain() *ledger.FundAllocation {
	return &ledger.FundAllocation{
		ID:           m.ID,
		FromBranchID: m.FromBranchID,
		ToBranchID:   m.ToBranchID,
		Amount:       m.Amount,
		Description:  m.Description,
		AllocatedBy:  m.AllocatedByID,
		AllocatedAt:  m.AllocatedAt,
		IsActive:     m.IsActive,
	}
}
