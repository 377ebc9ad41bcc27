package wire

import (
	"travel-agency/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler, g guards) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.Post("/api/payments", paymentHandler.RecordPayment)
		r.Get("/api/payments/{id}/receipt", paymentHandler.GetReceipt)
		r.Get("/api/payments/{id}/receipt.pdf", paymentHandler.DownloadReceipt)
		r.Get("/api/bookings/{id}/payments", paymentHandler.ListBookingPayments)
		r.Get("/api/bookings/{id}/payment-status", paymentHandler.GetPaymentStatus)
		r.Get("/api/user/payments", paymentHandler.ListMyPayments)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Post("/api/admin/payments/{id}/refund", paymentHandler.RefundPayment)
		r.Get("/api/admin/payments/stats", paymentHandler.GetStats)
		r.Post("/api/admin/bookings/{id}/reconcile", paymentHandler.ReconcileBooking)
	})
}
