package adaptor

import (
	"net/http"
	"strconv"

	"travel-agency/internal/dto/request"
	"travel-agency/internal/usecase"
	"travel-agency/pkg/utils"

	"go.uber.org/zap"
)

type PackageHandler struct {
	service  usecase.PackageService
	bookings usecase.BookingService
	log      *zap.Logger
}

func NewPackageHandler(service usecase.PackageService, bookings usecase.BookingService, log *zap.Logger) *PackageHandler {
	return &PackageHandler{
		service:  service,
		bookings: bookings,
		log:      log.With(zap.String("handler", "package")),
	}
}

// ListPackages handles GET /api/packages
//
// Query: page, per_page, search, min_price, max_price, min_duration,
// max_duration, available
func (h *PackageHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PackageListRequest{
		PaginatedRequest: paginationFrom(r),
		Search:           query.Get("search"),
		MinPrice:         query.Get("min_price"),
		MaxPrice:         query.Get("max_price"),
		MinDuration:      utils.ParseInt(query.Get("min_duration"), 0),
		MaxDuration:      utils.ParseInt(query.Get("max_duration"), 0),
	}
	req.AvailableOnly, _ = strconv.ParseBool(query.Get("available"))

	packages, err := h.service.ListPackages(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list packages")
		return
	}

	utils.ResponseSuccess(w, "success", packages)
}

// GetPackage handles GET /api/packages/{id}
func (h *PackageHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	pkg, err := h.service.GetPackage(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "get package")
		return
	}

	utils.ResponseSuccess(w, "success", pkg)
}

// TopRatedPackages handles GET /api/packages/top-rated?limit=
func (h *PackageHandler) TopRatedPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.service.TopRatedPackages(r.Context(), utils.ParseInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		handleServiceError(w, h.log, err, "top rated packages")
		return
	}

	utils.ResponseSuccess(w, "success", packages)
}

// MostBookedPackages handles GET /api/packages/most-booked?limit=
func (h *PackageHandler) MostBookedPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.service.MostBookedPackages(r.Context(), utils.ParseInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		handleServiceError(w, h.log, err, "most booked packages")
		return
	}

	utils.ResponseSuccess(w, "success", packages)
}

// SimilarPackages handles GET /api/packages/{id}/similar?limit=
func (h *PackageHandler) SimilarPackages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	packages, err := h.service.SimilarPackages(r.Context(), id, utils.ParseInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		handleServiceError(w, h.log, err, "similar packages")
		return
	}

	utils.ResponseSuccess(w, "success", packages)
}

// CheckAvailability handles GET /api/packages/{id}/availability?date=YYYY-MM-DD
func (h *PackageHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.bookings.CheckAvailability(r.Context(), id, r.URL.Query().Get("date"))
	if err != nil {
		handleServiceError(w, h.log, err, "check availability")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// AvailableDates handles GET /api/packages/{id}/available-dates?start_date=&end_date=
func (h *PackageHandler) AvailableDates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	query := r.URL.Query()
	resp, err := h.bookings.AvailableDates(r.Context(), id, &request.AvailableDatesRequest{
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
	})
	if err != nil {
		handleServiceError(w, h.log, err, "list available dates")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// CreatePackage handles POST /api/admin/packages (admin only)
func (h *PackageHandler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePackageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pkg, err := h.service.CreatePackage(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create package")
		return
	}

	utils.ResponseCreated(w, "Package created successfully", pkg)
}

// UpdatePackage handles PUT /api/admin/packages/{id} (admin only)
func (h *PackageHandler) UpdatePackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req request.UpdatePackageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pkg, err := h.service.UpdatePackage(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update package")
		return
	}

	utils.ResponseSuccess(w, "Package updated successfully", pkg)
}

// ToggleAvailability handles PATCH /api/admin/packages/{id}/availability (admin only)
func (h *PackageHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	pkg, err := h.service.ToggleAvailability(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "toggle availability")
		return
	}

	utils.ResponseSuccess(w, "Availability updated", pkg)
}

// DeletePackage handles DELETE /api/admin/packages/{id} (admin only)
func (h *PackageHandler) DeletePackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeletePackage(r.Context(), id); err != nil {
		handleServiceError(w, h.log, err, "delete package")
		return
	}

	utils.ResponseSuccess(w, "Package deleted successfully", nil)
}
