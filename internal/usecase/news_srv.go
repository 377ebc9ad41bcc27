package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travel-agency/internal/data/entity"
	"travel-agency/internal/data/repository"
	"travel-agency/internal/dto/request"
	"travel-agency/internal/dto/response"
	"travel-agency/pkg/utils"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	defaultNewsLimit    = 5
	defaultRelatedLimit = 3
)

type NewsService interface {
	// Public endpoints; exclusive items are only visible to VIP and admin readers
	ListNews(ctx context.Context, reader Actor, req *request.NewsListRequest) (*response.PaginatedResponse[response.NewsResponse], error)
	SearchNews(ctx context.Context, reader Actor, req *request.NewsListRequest) (*response.PaginatedResponse[response.NewsResponse], error)
	FeaturedNews(ctx context.Context, reader Actor, limit int) ([]response.NewsResponse, error)
	PopularNews(ctx context.Context, reader Actor, limit int) ([]response.NewsResponse, error)
	RecentNews(ctx context.Context, reader Actor, limit int) ([]response.NewsResponse, error)
	GetNews(ctx context.Context, reader Actor, id uuid.UUID) (*response.NewsResponse, error)
	RelatedNews(ctx context.Context, reader Actor, id uuid.UUID, limit int) ([]response.NewsResponse, error)

	// Admin endpoints
	CreateNews(ctx context.Context, actor Actor, req *request.CreateNewsRequest) (*response.NewsResponse, error)
	UpdateNews(ctx context.Context, id uuid.UUID, req *request.UpdateNewsRequest) (*response.NewsResponse, error)
	DeleteNews(ctx context.Context, id uuid.UUID) error
	ToggleFeatured(ctx context.Context, id uuid.UUID) (*response.NewsResponse, error)
	ToggleExclusive(ctx context.Context, id uuid.UUID) (*response.NewsResponse, error)
}

type newsService struct {
	repo  *repository.Repository
	clock clock
	log   *zap.Logger
}

func NewNewsService(repo *repository.Repository, clock clock, log *zap.Logger) NewsService {
	return &newsService{
		repo:  repo,
		clock: clock,
		log:   log.With(zap.String("service", "news")),
	}
}

func (s *newsService) ListNews(ctx context.Context, reader Actor, req *request.NewsListRequest) (*response.PaginatedResponse[response.NewsResponse], error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	return s.page(ctx, s.filter(reader, req), req.PaginatedRequest)
}

func (s *newsService) SearchNews(ctx context.Context, reader Actor, req *request.NewsListRequest) (*response.PaginatedResponse[response.NewsResponse], error) {
	if strings.TrimSpace(req.Search) == "" {
		return nil, invalid("q", "This field is required")
	}
	return s.ListNews(ctx, reader, req)
}

func (s *newsService) FeaturedNews(ctx context.Context, reader Actor, limit int) ([]response.NewsResponse, error) {
	filter := entity.NewsFilter{FeaturedOnly: true, IncludeExclusive: canReadExclusive(reader)}
	return s.top(ctx, filter, repository.NewsOrderRecent, limit)
}

func (s *newsService) PopularNews(ctx context.Context, reader Actor, limit int) ([]response.NewsResponse, error) {
	filter := entity.NewsFilter{IncludeExclusive: canReadExclusive(reader)}
	return s.top(ctx, filter, repository.NewsOrderPopular, limit)
}

func (s *newsService) RecentNews(ctx context.Context, reader Actor, limit int) ([]response.NewsResponse, error) {
	filter := entity.NewsFilter{IncludeExclusive: canReadExclusive(reader)}
	return s.top(ctx, filter, repository.NewsOrderRecent, limit)
}

// GetNews returns the full article and counts the view.
func (s *newsService) GetNews(ctx context.Context, reader Actor, id uuid.UUID) (*response.NewsResponse, error) {
	news, err := s.repo.News.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find news: %w", err)
	}
	if news == nil {
		return nil, fmt.Errorf("news %s: %w", id, ErrNotFound)
	}
	if news.IsExclusive && !canReadExclusive(reader) {
		return nil, fmt.Errorf("exclusive news %s: %w", id, ErrUnauthorized)
	}

	if err := s.repo.News.IncrementViews(ctx, id); err != nil {
		s.log.Warn("Failed to count news view", zap.Error(err), zap.String("news_id", id.String()))
	} else {
		news.ViewsCount++
	}

	resp := response.NewsToResponse(news, true)
	return &resp, nil
}

// RelatedNews lists the newest articles in the same category as id.
func (s *newsService) RelatedNews(ctx context.Context, reader Actor, id uuid.UUID, limit int) ([]response.NewsResponse, error) {
	news, err := s.repo.News.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find news: %w", err)
	}
	if news == nil {
		return nil, fmt.Errorf("news %s: %w", id, ErrNotFound)
	}
	if news.IsExclusive && !canReadExclusive(reader) {
		return nil, fmt.Errorf("exclusive news %s: %w", id, ErrUnauthorized)
	}

	filter := entity.NewsFilter{
		Category:         news.Category,
		IncludeExclusive: canReadExclusive(reader),
		ExcludeID:        id,
	}
	items, err := s.repo.News.FindAll(ctx, filter, repository.NewsOrderRecent, clampLimit(limit, defaultRelatedLimit), 0)
	if err != nil {
		return nil, fmt.Errorf("related news: %w", err)
	}
	return response.NewsListToResponse(items), nil
}

// ==================== ADMIN METHODS ====================

func (s *newsService) CreateNews(ctx context.Context, actor Actor, req *request.CreateNewsRequest) (*response.NewsResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	now := s.clock()
	news := &entity.News{
		Base:        entity.NewBase(now),
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		AuthorID:    actor.UserID,
		IsFeatured:  req.IsFeatured,
		IsExclusive: req.IsExclusive,
		Category:    lo.Ternary(req.Category == "", "general", req.Category),
		Tags:        normalizeTags(req.Tags),
		PublishDate: now,
	}
	if req.PublishDate != nil {
		news.PublishDate, _ = utils.ParseDate(*req.PublishDate)
	}

	if err := s.repo.News.Create(ctx, news); err != nil {
		return nil, fmt.Errorf("create news: %w", err)
	}

	s.log.Info("News created",
		zap.String("news_id", news.ID.String()),
		zap.String("title", news.Title),
		zap.Bool("exclusive", news.IsExclusive),
	)

	resp := response.NewsToResponse(news, true)
	return &resp, nil
}

func (s *newsService) UpdateNews(ctx context.Context, id uuid.UUID, req *request.UpdateNewsRequest) (*response.NewsResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	news, err := s.repo.News.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find news: %w", err)
	}
	if news == nil {
		return nil, fmt.Errorf("news %s: %w", id, ErrNotFound)
	}

	if req.Title != nil {
		news.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		news.Content = *req.Content
	}
	if req.ImageURL != nil {
		news.ImageURL = req.ImageURL
	}
	if req.IsFeatured != nil {
		news.IsFeatured = *req.IsFeatured
	}
	if req.IsExclusive != nil {
		news.IsExclusive = *req.IsExclusive
	}
	if req.Category != nil {
		news.Category = *req.Category
	}
	if req.Tags != nil {
		news.Tags = normalizeTags(req.Tags)
	}
	if req.PublishDate != nil {
		news.PublishDate, _ = utils.ParseDate(*req.PublishDate)
	}
	news.UpdatedAt = s.clock()

	if err := s.repo.News.Update(ctx, news); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("news %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("update news: %w", err)
	}

	resp := response.NewsToResponse(news, true)
	return &resp, nil
}

func (s *newsService) DeleteNews(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.News.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("news %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("delete news: %w", err)
	}
	return nil
}

func (s *newsService) ToggleFeatured(ctx context.Context, id uuid.UUID) (*response.NewsResponse, error) {
	return s.toggle(ctx, id, repository.NewsFlagFeatured)
}

func (s *newsService) ToggleExclusive(ctx context.Context, id uuid.UUID) (*response.NewsResponse, error) {
	return s.toggle(ctx, id, repository.NewsFlagExclusive)
}

func (s *newsService) toggle(ctx context.Context, id uuid.UUID, flag repository.NewsFlag) (*response.NewsResponse, error) {
	value, err := s.repo.News.ToggleFlag(ctx, id, flag)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("news %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("toggle %s: %w", flag, err)
	}

	s.log.Info("News flag toggled",
		zap.String("news_id", id.String()),
		zap.String("flag", string(flag)),
		zap.Bool("value", value),
	)

	news, err := s.repo.News.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find news: %w", err)
	}
	if news == nil {
		return nil, fmt.Errorf("news %s: %w", id, ErrNotFound)
	}

	resp := response.NewsToResponse(news, true)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

func canReadExclusive(reader Actor) bool {
	return reader.IsAdmin() || reader.Role == entity.RoleVIP
}

func (s *newsService) filter(reader Actor, req *request.NewsListRequest) entity.NewsFilter {
	return entity.NewsFilter{
		Category:         req.Category,
		Tag:              strings.ToLower(strings.TrimSpace(req.Tag)),
		Search:           strings.TrimSpace(req.Search),
		FeaturedOnly:     req.FeaturedOnly,
		IncludeExclusive: canReadExclusive(reader),
	}
}

func (s *newsService) page(ctx context.Context, filter entity.NewsFilter, p request.PaginatedRequest) (*response.PaginatedResponse[response.NewsResponse], error) {
	items, err := s.repo.News.FindAll(ctx, filter, repository.NewsOrderRecent, p.Limit(), p.Offset())
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}

	total, err := s.repo.News.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count news: %w", err)
	}

	return response.NewPaginatedResponse(response.NewsListToResponse(items), p.Page, p.Limit(), total), nil
}

func (s *newsService) top(ctx context.Context, filter entity.NewsFilter, order repository.NewsOrder, limit int) ([]response.NewsResponse, error) {
	items, err := s.repo.News.FindAll(ctx, filter, order, clampLimit(limit, defaultNewsLimit), 0)
	if err != nil {
		return nil, fmt.Errorf("list %s news: %w", order, err)
	}
	return response.NewsListToResponse(items), nil
}

func normalizeTags(tags []string) []string {
	out := lo.Uniq(lo.FilterMap(tags, func(t string, _ int) (string, bool) {
		t = strings.ToLower(strings.TrimSpace(t))
		return t, t != ""
	}))
	if out == nil {
		return []string{}
	}
	return out
}
