package wire

import (
	"travel-agency/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireUser(r chi.Router, userHandler *adaptor.UserHandler, g guards) {
	// ==================== PROTECTED USER ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.Get("/api/users/profile", userHandler.GetProfile)
		r.Put("/api/users/profile", userHandler.UpdateProfile)
		r.Put("/api/users/password", userHandler.ChangePassword)
	})
	r.Group(func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Get("/api/admin/users", userHandler.GetAllUsers)
		r.Get("/api/admin/users/stats", userHandler.CountByRole)
		r.Put("/api/admin/users/{id}/role", userHandler.UpdateRole)
		r.Put("/api/admin/users/{id}/status", userHandler.SetActive)
	})
}
