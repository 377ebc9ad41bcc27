package wire

import (
	"travel-agency/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireReview(r chi.Router, reviewHandler *adaptor.ReviewHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	// approved reviews only
	r.Get("/api/packages/{id}/reviews", reviewHandler.GetPackageReviews)

	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.Post("/api/reviews", reviewHandler.CreateReview)
		r.Get("/api/user/reviews", reviewHandler.GetUserReviews)
		r.Put("/api/reviews/{id}", reviewHandler.UpdateReview)
		r.Delete("/api/reviews/{id}", reviewHandler.DeleteReview)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Get("/api/admin/reviews/pending", reviewHandler.ListPendingReviews)
		r.Get("/api/admin/reviews/stats", reviewHandler.GetStats)
		r.Post("/api/admin/reviews/{id}/approve", reviewHandler.ApproveReview)
		r.Post("/api/admin/reviews/{id}/reject", reviewHandler.RejectReview)
	})
}
