package branch

import "github.com/shopspring/decimal"

//revive:disable

// CreateBranchRequest represents the request body for creating a branch.
type CreateBranchRequest struct {
	Name           string          `json:"name" validate:"required,max=200"`
	Location       string          `json:"location" validate:"required,max=200"`
	State          string          `json:"state" validate:"max=100"`
	Address        string          `json:"address" validate:"max=500"`
	BranchType     string          `json:"branch_type" validate:"omitempty,oneof=main sub"`
	AllocatedFunds decimal.Decimal `json:"allocated_funds"`
}

// AssignAdminsRequest replaces the admins of a branch.
type AssignAdminsRequest struct {
	AdminIDs []string `json:"admin_ids" validate:"dive,uuid"`
}
