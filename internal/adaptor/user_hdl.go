package adaptor

import (
	"net/http"

	"travel-agency/internal/dto/request"
	"travel-agency/internal/usecase"
	"travel-agency/pkg/utils"

	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log.With(zap.String("handler", "user")),
	}
}

// GetProfile handles GET /api/users/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "Profile retrieved successfully", profile)
}

// UpdateProfile handles PUT /api/users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update profile")
		return
	}

	utils.ResponseSuccess(w, "Profile updated successfully", profile)
}

// ChangePassword handles PUT /api/users/password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	sessionID, _ := utils.GetSessionIDFromContext(r.Context())

	var req request.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, sessionID, &req); err != nil {
		handleServiceError(w, h.log, err, "change password")
		return
	}

	utils.ResponseSuccess(w, "Password changed successfully", nil)
}

// GetAllUsers handles GET /api/admin/users (admin only)
func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	req := paginationFrom(r)

	users, err := h.service.GetAllUsers(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "get all users")
		return
	}

	utils.ResponseSuccess(w, "Users retrieved successfully", users)
}

// CountByRole handles GET /api/admin/users/stats (admin only)
func (h *UserHandler) CountByRole(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.CountByRole(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "count users by role")
		return
	}

	utils.ResponseSuccess(w, "success", counts)
}

// UpdateRole handles PUT /api/admin/users/{id}/role (admin only)
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	userID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req request.UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.UpdateRole(r.Context(), actor, userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update role")
		return
	}

	utils.ResponseSuccess(w, "Role updated successfully", user)
}

// SetActive handles PUT /api/admin/users/{id}/status (admin only)
func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	userID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req request.SetActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.SetActive(r.Context(), actor, userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "set account status")
		return
	}

	utils.ResponseSuccess(w, "Account status updated successfully", user)
}
