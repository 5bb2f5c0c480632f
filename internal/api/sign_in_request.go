package api

// swagger:model api.SignInRequest
type SignInRequest struct {
	Username string `json:"username" form:"username" validate:"required" example:"ann1"`
	Password string `json:"password" form:"password" validate:"required" example:"pw123"`
}
