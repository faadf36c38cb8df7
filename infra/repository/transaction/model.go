package transaction

import (
	"time"

	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction represents a persisted ledger entry.
type Transaction struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BranchID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionType  string          `gorm:"size:16;not null"`
	Amount           decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Date             time.Time       `gorm:"type:date;not null;index"`
	Description      string          `gorm:"type:text"`
	CategoryID       uuid.UUID       `gorm:"type:uuid;not null"`
	FundAllocationID *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedByID      *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt        time.Time
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string {
	return "transactions"
}

// row is a transaction joined with its branch and category names.
type row struct {
	Transaction
	BranchName   string
	CategoryName string
}

func fromDomain(t *ledger.Transaction) *Transaction {
	return &Transaction{
		ID:               t.ID,
		BranchID:         t.BranchID,
		TransactionType:  string(t.Type),
		Amount:           t.Amount,
		Date:             t.Date,
		Description:      t.Description,
		CategoryID:       t.CategoryID,
		FundAllocationID: t.FundAllocationID,
		CreatedByID:      t.CreatedBy,
		CreatedAt:        t.CreatedAt,
	}
}

func (m *Transaction) toDomain() *ledger.Transaction {
	return &ledger.Transaction{
		ID:               m.ID,
		BranchID:         m.BranchID,
		Type:             ledger.Type(m.TransactionType),
		Amount:           m.Amount,
		Date:             m.Date,
		Description:      m.Description,
		CategoryID:       m.CategoryID,
		FundAllocationID: m.FundAllocationID,
		CreatedBy:        m.CreatedByID,
		CreatedAt:        m.CreatedAt,
	}
}

func (r *row) toRead() *dto.TransactionRead {
	return &dto.TransactionRead{
		Transaction:  *r.Transaction.toDomain(),
		BranchName:   r.BranchName,
		CategoryName: r.CategoryName,
	}
}
