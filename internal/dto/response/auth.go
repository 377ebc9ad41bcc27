package response

import (
	"time"

	"travel-agency/internal/data/entity"
)

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Role         entity.UserRole `json:"role"`
	ProfileImage *string         `json:"profile_image,omitempty"`
	IsActive     bool            `json:"is_active"`
	LastLogin    *time.Time      `json:"last_login,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Helper converters
func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:           user.ID.String(),
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		ProfileImage: user.ProfileImage,
		IsActive:     user.IsActive,
		LastLogin:    user.LastLogin,
		CreatedAt:    user.CreatedAt,
	}
}

func AuthToResponse(user *entity.User, token string, expiresAt time.Time) AuthResponse {
	return AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      UserToResponse(user),
	}
}

type RoleCountsResponse struct {
	Admin  int64 `json:"admin"`
	Client int64 `json:"client"`
	VIP    int64 `json:"vip"`
	Total  int64 `json:"total"`
}

func RoleCountsToResponse(counts map[entity.UserRole]int64) RoleCountsResponse {
	resp := RoleCountsResponse{
		Admin:  counts[entity.RoleAdmin],
		Client: counts[entity.RoleClient],
		VIP:    counts[entity.RoleVIP],
	}
	for _, n := range counts {
		resp.Total += n
	}
	return resp
}
