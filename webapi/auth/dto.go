package auth

// LoginInput represents the request body for logging in.
type LoginInput struct {
	Identity string `json:"identity" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}
