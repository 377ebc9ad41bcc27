package adaptor

import (
	"net/http"

	"travel-agency/internal/dto/request"
	"travel-agency/internal/usecase"
	"travel-agency/pkg/utils"

	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// RecordPayment handles POST /api/payments
func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.RecordPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.RecordPayment(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "record payment")
		return
	}

	utils.ResponseCreated(w, "Payment recorded successfully", result)
}

// GetPaymentStatus handles GET /api/bookings/{id}/payment-status
func (h *PaymentHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	bookingID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	status, err := h.service.GetPaymentStatus(r.Context(), actor, bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "get payment status")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}

// ListBookingPayments handles GET /api/bookings/{id}/payments
func (h *PaymentHandler) ListBookingPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	bookingID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	payments, err := h.service.ListBookingPayments(r.Context(), actor, bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "list booking payments")
		return
	}

	utils.ResponseSuccess(w, "success", payments)
}

// ListMyPayments handles GET /api/user/payments
func (h *PaymentHandler) ListMyPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	req := paginationFrom(r)
	payments, err := h.service.ListMyPayments(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "list user payments")
		return
	}

	utils.ResponseSuccess(w, "success", payments)
}

// GetReceipt handles GET /api/payments/{id}/receipt
func (h *PaymentHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	paymentID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	receipt, err := h.service.GetReceipt(r.Context(), actor, paymentID)
	if err != nil {
		handleServiceError(w, h.log, err, "get receipt")
		return
	}

	utils.ResponseSuccess(w, "success", receipt)
}

// DownloadReceipt handles GET /api/payments/{id}/receipt.pdf
func (h *PaymentHandler) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	paymentID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	body, filename, err := h.service.RenderReceipt(r.Context(), actor, paymentID)
	if err != nil {
		handleServiceError(w, h.log, err, "render receipt")
		return
	}

	utils.ResponsePDF(w, filename, body)
}

// RefundPayment handles POST /api/admin/payments/{id}/refund (admin only)
func (h *PaymentHandler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	paymentID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.service.RefundPayment(r.Context(), actor, paymentID)
	if err != nil {
		handleServiceError(w, h.log, err, "refund payment")
		return
	}

	utils.ResponseSuccess(w, "Payment refunded", result)
}

// ReconcileBooking handles POST /api/admin/bookings/{id}/reconcile (admin only)
func (h *PaymentHandler) ReconcileBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	status, changed, err := h.service.ReconcileBooking(r.Context(), bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "reconcile booking")
		return
	}

	utils.ResponseSuccess(w, "success", map[string]any{
		"booking_id": bookingID.String(),
		"status":     status,
		"changed":    changed,
	})
}

// GetStats handles GET /api/admin/payments/stats?from=&to= (admin only)
func (h *PaymentHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context(), statsRequest(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get payment stats")
		return
	}

	utils.ResponseSuccess(w, "success", stats)
}
