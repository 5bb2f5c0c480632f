package api

// swagger:model api.CreateUserRequest
type CreateUserRequest struct {
	Name     string `json:"name" form:"name" validate:"required" example:"Ann"`
	Username string `json:"username" form:"username" validate:"required" example:"ann1"`
	Email    string `json:"email" form:"email" validate:"required" example:"a@x.com"`
	Password string `json:"password" form:"password" validate:"required,max=72" example:"pw123"`
}
