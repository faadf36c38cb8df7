package user

// NewUser represents the request body for creating a branch admin.
type NewUser struct {
	Username        string `json:"username" validate:"required,max=150,min=3"`
	Email           string `json:"email" validate:"omitempty,email,max=254"`
	FirstName       string `json:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
	Phone           string `json:"phone" validate:"max=15"`
	Password        string `json:"password" validate:"required,min=4,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	BranchID        string `json:"branch_id" validate:"omitempty,uuid"`
}

// PasswordInput represents the request body for resetting a password.
type PasswordInput struct {
	Password        string `json:"password" validate:"required,min=4,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}
