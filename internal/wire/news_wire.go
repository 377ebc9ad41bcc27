package wire

import (
	"travel-agency/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireNews(r chi.Router, newsHandler *adaptor.NewsHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	// A token is optional here; it unlocks exclusive items for VIP readers.
	r.Group(func(r chi.Router) {
		r.Use(g.optional)

		r.Get("/api/news", newsHandler.ListNews)
		r.Get("/api/news/search", newsHandler.SearchNews)
		r.Get("/api/news/featured", newsHandler.FeaturedNews)
		r.Get("/api/news/popular", newsHandler.PopularNews)
		r.Get("/api/news/recent", newsHandler.RecentNews)
		r.Get("/api/news/{id}", newsHandler.GetNews)
		r.Get("/api/news/{id}/related", newsHandler.RelatedNews)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Post("/api/admin/news", newsHandler.CreateNews)
		r.Put("/api/admin/news/{id}", newsHandler.UpdateNews)
		r.Delete("/api/admin/news/{id}", newsHandler.DeleteNews)
		r.Patch("/api/admin/news/{id}/featured", newsHandler.ToggleFeatured)
		r.Patch("/api/admin/news/{id}/exclusive", newsHandler.ToggleExclusive)
	})
}
