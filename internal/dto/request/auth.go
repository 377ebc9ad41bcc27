package request

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	ProfileImage    *string `json:"profile_image,omitempty" validate:"omitempty,url,max=255"`
	Password        *string `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
	CurrentPassword *string `json:"current_password,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72,nefield=CurrentPassword"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=client vip admin"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
