package dto

import (
	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/amirasaad/branchledger/pkg/domain/category"
)

// BranchFilter narrows branch listings.
type BranchFilter struct {
	ActiveOnly bool
	Type       branch.Type
}

// CategoryFilter narrows category listings.
type CategoryFilter struct {
	Kind       category.Kind
	ActiveOnly bool
}

// BranchDeleteSummary lists what deleting a branch removes.
type BranchDeleteSummary struct {
	Branch           *branch.Branch `json:"branch"`
	TransactionCount int64          `json:"transaction_count"`
	AllocationCount  int64          `json:"allocation_count"`
}
