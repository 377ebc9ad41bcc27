package wire

import (
	"travel-agency/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, g guards) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.Post("/api/bookings", bookingHandler.CreateBooking)
		r.Get("/api/bookings/upcoming", bookingHandler.UpcomingBookings)
		r.Get("/api/bookings/{id}", bookingHandler.GetBooking)
		r.Post("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)
		r.Get("/api/bookings/{id}/confirmation.pdf", bookingHandler.DownloadConfirmation)
		r.Get("/api/bookings/{id}/itinerary.pdf", bookingHandler.DownloadItinerary)
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Get("/api/admin/bookings", bookingHandler.ListBookings)
		r.Get("/api/admin/bookings/stats", bookingHandler.GetStats)
		r.Get("/api/admin/bookings/top-users", bookingHandler.MostActiveUsers)
		r.Get("/api/admin/bookings/number/{number}", bookingHandler.GetBookingByNumber)
	})
}
