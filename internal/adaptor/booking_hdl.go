package adaptor

import (
	"context"
	"net/http"

	"travel-agency/internal/dto/request"
	"travel-agency/internal/usecase"
	"travel-agency/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "Booking created successfully", booking)
}

// GetUserBookings handles GET /api/user/bookings
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	req := paginationFrom(r)
	bookings, err := h.service.GetUserBookings(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "get user bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// UpcomingBookings handles GET /api/bookings/upcoming?limit=
func (h *BookingHandler) UpcomingBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	limit := utils.ParseInt(r.URL.Query().Get("limit"), 0)
	bookings, err := h.service.UpcomingBookings(r.Context(), actor, limit)
	if err != nil {
		handleServiceError(w, h.log, err, "get upcoming bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetBooking handles GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(r.Context(), actor, id)
	if err != nil {
		handleServiceError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// CancelBooking handles POST /api/bookings/{id}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	booking, err := h.service.CancelBooking(r.Context(), actor, id)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", booking)
}

// ListBookings handles GET /api/admin/bookings?status= (admin only)
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	req := paginationFrom(r)
	bookings, err := h.service.ListBookings(r.Context(), r.URL.Query().Get("status"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "list bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetBookingByNumber handles GET /api/admin/bookings/number/{number} (admin only)
func (h *BookingHandler) GetBookingByNumber(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.GetBookingByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		handleServiceError(w, h.log, err, "get booking by number")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// GetStats handles GET /api/admin/bookings/stats?from=&to= (admin only)
func (h *BookingHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context(), statsRequest(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get booking stats")
		return
	}

	utils.ResponseSuccess(w, "success", stats)
}

// DownloadConfirmation handles GET /api/bookings/{id}/confirmation.pdf
func (h *BookingHandler) DownloadConfirmation(w http.ResponseWriter, r *http.Request) {
	h.document(w, r, "render confirmation", h.service.RenderConfirmation)
}

// DownloadItinerary handles GET /api/bookings/{id}/itinerary.pdf
func (h *BookingHandler) DownloadItinerary(w http.ResponseWriter, r *http.Request) {
	h.document(w, r, "render itinerary", h.service.RenderItinerary)
}

type renderFunc func(ctx context.Context, actor usecase.Actor, bookingID uuid.UUID) ([]byte, string, error)

func (h *BookingHandler) document(w http.ResponseWriter, r *http.Request, operation string, render renderFunc) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	bookingID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	body, filename, err := render(r.Context(), actor, bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, operation)
		return
	}

	utils.ResponsePDF(w, filename, body)
}

// MostActiveUsers handles GET /api/admin/bookings/top-users?limit= (admin only)
func (h *BookingHandler) MostActiveUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.MostActiveUsers(r.Context(), utils.ParseInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		handleServiceError(w, h.log, err, "most active users")
		return
	}

	utils.ResponseSuccess(w, "success", users)
}

func statsRequest(r *http.Request) *request.StatsRequest {
	query := r.URL.Query()
	return &request.StatsRequest{From: query.Get("from"), To: query.Get("to")}
}
