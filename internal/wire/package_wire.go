package wire

import (
	"travel-agency/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePackage(r chi.Router, packageHandler *adaptor.PackageHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/packages", packageHandler.ListPackages)
	r.Get("/api/packages/top-rated", packageHandler.TopRatedPackages)
	r.Get("/api/packages/most-booked", packageHandler.MostBookedPackages)
	r.Get("/api/packages/{id}", packageHandler.GetPackage)
	r.Get("/api/packages/{id}/similar", packageHandler.SimilarPackages)
	r.Get("/api/packages/{id}/availability", packageHandler.CheckAvailability)
	r.Get("/api/packages/{id}/available-dates", packageHandler.AvailableDates)

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Post("/api/admin/packages", packageHandler.CreatePackage)
		r.Put("/api/admin/packages/{id}", packageHandler.UpdatePackage)
		r.Patch("/api/admin/packages/{id}/availability", packageHandler.ToggleAvailability)
		r.Delete("/api/admin/packages/{id}", packageHandler.DeletePackage)
	})
}
