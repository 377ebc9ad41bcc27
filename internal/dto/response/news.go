package response

import (
	"time"

	"travel-agency/internal/data/entity"
)

const newsPreviewChars = 200

type NewsResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content,omitempty"`
	Preview     string    `json:"preview"`
	ImageURL    *string   `json:"image_url,omitempty"`
	AuthorID    string    `json:"author_id"`
	IsFeatured  bool      `json:"is_featured"`
	IsExclusive bool      `json:"is_exclusive"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	ViewsCount  int       `json:"views_count"`
	PublishDate time.Time `json:"publish_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewsToResponse renders an article. Listings pass full=false and only carry the preview.
func NewsToResponse(news *entity.News, full bool) NewsResponse {
	tags := news.Tags
	if tags == nil {
		tags = []string{}
	}

	resp := NewsResponse{
		ID:          news.ID.String(),
		Title:       news.Title,
		Preview:     news.Preview(newsPreviewChars),
		ImageURL:    news.ImageURL,
		AuthorID:    news.AuthorID.String(),
		IsFeatured:  news.IsFeatured,
		IsExclusive: news.IsExclusive,
		Category:    news.Category,
		Tags:        tags,
		ViewsCount:  news.ViewsCount,
		PublishDate: news.PublishDate,
		CreatedAt:   news.CreatedAt,
		UpdatedAt:   news.UpdatedAt,
	}
	if full {
		resp.Content = news.Content
	}
	return resp
}

func NewsListToResponse(items []*entity.News) []NewsResponse {
	out := make([]NewsResponse, 0, len(items))
	for _, n := range items {
		out = append(out, NewsToResponse(n, false))
	}
	return out
}
