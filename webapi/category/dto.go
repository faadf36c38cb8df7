package category

// CreateCategoryRequest represents the request body for creating a category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	BranchType  string `json:"branch_type" validate:"omitempty,oneof=all main sub"`
	BranchID    string `json:"branch_id" validate:"omitempty,uuid"`
}
