package adaptor

import (
	"context"
	"net/http"
	"strconv"

	"travel-agency/internal/dto/request"
	"travel-agency/internal/dto/response"
	"travel-agency/internal/usecase"
	"travel-agency/pkg/utils"

	"go.uber.org/zap"
)

type NewsHandler struct {
	service usecase.NewsService
	log     *zap.Logger
}

func NewNewsHandler(service usecase.NewsService, log *zap.Logger) *NewsHandler {
	return &NewsHandler{
		service: service,
		log:     log.With(zap.String("handler", "news")),
	}
}

// ListNews handles GET /api/news?category=&tag=&featured=
func (h *NewsHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	reader, _ := actorFrom(r)

	news, err := h.service.ListNews(r.Context(), reader, newsListRequest(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list news")
		return
	}

	utils.ResponseSuccess(w, "success", news)
}

// SearchNews handles GET /api/news/search?q=
func (h *NewsHandler) SearchNews(w http.ResponseWriter, r *http.Request) {
	reader, _ := actorFrom(r)

	req := newsListRequest(r)
	req.Search = r.URL.Query().Get("q")

	news, err := h.service.SearchNews(r.Context(), reader, req)
	if err != nil {
		handleServiceError(w, h.log, err, "search news")
		return
	}

	utils.ResponseSuccess(w, "success", news)
}

// FeaturedNews handles GET /api/news/featured?limit=
func (h *NewsHandler) FeaturedNews(w http.ResponseWriter, r *http.Request) {
	h.top(w, r, "featured news", h.service.FeaturedNews)
}

// PopularNews handles GET /api/news/popular?limit=
func (h *NewsHandler) PopularNews(w http.ResponseWriter, r *http.Request) {
	h.top(w, r, "popular news", h.service.PopularNews)
}

// RecentNews handles GET /api/news/recent?limit=
func (h *NewsHandler) RecentNews(w http.ResponseWriter, r *http.Request) {
	h.top(w, r, "recent news", h.service.RecentNews)
}

// GetNews handles GET /api/news/{id}
func (h *NewsHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	reader, _ := actorFrom(r)
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	news, err := h.service.GetNews(r.Context(), reader, id)
	if err != nil {
		handleServiceError(w, h.log, err, "get news")
		return
	}

	utils.ResponseSuccess(w, "success", news)
}

// RelatedNews handles GET /api/news/{id}/related?limit=
func (h *NewsHandler) RelatedNews(w http.ResponseWriter, r *http.Request) {
	reader, _ := actorFrom(r)
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	news, err := h.service.RelatedNews(r.Context(), reader, id, utils.ParseInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		handleServiceError(w, h.log, err, "related news")
		return
	}

	utils.ResponseSuccess(w, "success", news)
}

// CreateNews handles POST /api/admin/news (admin only)
func (h *NewsHandler) CreateNews(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)

	var req request.CreateNewsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	news, err := h.service.CreateNews(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create news")
		return
	}

	utils.ResponseCreated(w, "News created successfully", news)
}

// UpdateNews handles PUT /api/admin/news/{id} (admin only)
func (h *NewsHandler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req request.UpdateNewsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	news, err := h.service.UpdateNews(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update news")
		return
	}

	utils.ResponseSuccess(w, "News updated successfully", news)
}

// DeleteNews handles DELETE /api/admin/news/{id} (admin only)
func (h *NewsHandler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteNews(r.Context(), id); err != nil {
		handleServiceError(w, h.log, err, "delete news")
		return
	}

	utils.ResponseSuccess(w, "News deleted successfully", nil)
}

// ToggleFeatured handles PATCH /api/admin/news/{id}/featured (admin only)
func (h *NewsHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	news, err := h.service.ToggleFeatured(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "toggle featured")
		return
	}

	utils.ResponseSuccess(w, "Featured flag updated", news)
}

// ToggleExclusive handles PATCH /api/admin/news/{id}/exclusive (admin only)
func (h *NewsHandler) ToggleExclusive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	news, err := h.service.ToggleExclusive(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "toggle exclusive")
		return
	}

	utils.ResponseSuccess(w, "Exclusive flag updated", news)
}

type topNewsFunc func(ctx context.Context, reader usecase.Actor, limit int) ([]response.NewsResponse, error)

func (h *NewsHandler) top(w http.ResponseWriter, r *http.Request, operation string, list topNewsFunc) {
	reader, _ := actorFrom(r)
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 0)

	news, err := list(r.Context(), reader, limit)
	if err != nil {
		handleServiceError(w, h.log, err, "get "+operation)
		return
	}

	utils.ResponseSuccess(w, "success", news)
}

func newsListRequest(r *http.Request) *request.NewsListRequest {
	query := r.URL.Query()
	req := &request.NewsListRequest{
		PaginatedRequest: paginationFrom(r),
		Category:         query.Get("category"),
		Tag:              query.Get("tag"),
	}
	req.FeaturedOnly, _ = strconv.ParseBool(query.Get("featured"))
	return req
}
