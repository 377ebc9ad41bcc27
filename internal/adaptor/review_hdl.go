package adaptor

import (
	"net/http"

	"travel-agency/internal/dto/request"
	"travel-agency/internal/usecase"
	"travel-agency/pkg/utils"

	"go.uber.org/zap"
)

type ReviewHandler struct {
	service usecase.ReviewService
	log     *zap.Logger
}

func NewReviewHandler(service usecase.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		log:     log.With(zap.String("handler", "review")),
	}
}

// CreateReview handles POST /api/reviews (protected)
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := h.service.CreateReview(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create review")
		return
	}

	utils.ResponseCreated(w, "success", review)
}

// GetPackageReviews handles GET /api/packages/{id}/reviews (public)
func (h *ReviewHandler) GetPackageReviews(w http.ResponseWriter, r *http.Request) {
	packageID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	req := paginationFrom(r)
	reviews, err := h.service.GetPackageReviews(r.Context(), packageID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "get package reviews")
		return
	}

	utils.ResponseSuccess(w, "success", reviews)
}

// GetUserReviews handles GET /api/user/reviews (protected)
func (h *ReviewHandler) GetUserReviews(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	reviews, err := h.service.GetMyReviews(r.Context(), actor)
	if err != nil {
		handleServiceError(w, h.log, err, "get user reviews")
		return
	}

	utils.ResponseSuccess(w, "success", reviews)
}

// UpdateReview handles PUT /api/reviews/{id} (protected)
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	reviewID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req request.UpdateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := h.service.UpdateReview(r.Context(), actor, reviewID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update review")
		return
	}

	utils.ResponseSuccess(w, "success", review)
}

// DeleteReview handles DELETE /api/reviews/{id} (protected)
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	reviewID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteReview(r.Context(), actor, reviewID); err != nil {
		handleServiceError(w, h.log, err, "delete review")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// ListPendingReviews handles GET /api/admin/reviews/pending (admin only)
func (h *ReviewHandler) ListPendingReviews(w http.ResponseWriter, r *http.Request) {
	req := paginationFrom(r)
	reviews, err := h.service.ListPendingReviews(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "list pending reviews")
		return
	}

	utils.ResponseSuccess(w, "success", reviews)
}

// ApproveReview handles POST /api/admin/reviews/{id}/approve (admin only)
func (h *ReviewHandler) ApproveReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	review, err := h.service.ApproveReview(r.Context(), reviewID)
	if err != nil {
		handleServiceError(w, h.log, err, "approve review")
		return
	}

	utils.ResponseSuccess(w, "Review approved", review)
}

// RejectReview handles POST /api/admin/reviews/{id}/reject (admin only)
func (h *ReviewHandler) RejectReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	review, err := h.service.RejectReview(r.Context(), reviewID)
	if err != nil {
		handleServiceError(w, h.log, err, "reject review")
		return
	}

	utils.ResponseSuccess(w, "Review rejected", review)
}

// GetStats handles GET /api/admin/reviews/stats (admin only)
func (h *ReviewHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "get review stats")
		return
	}

	utils.ResponseSuccess(w, "success", stats)
}
