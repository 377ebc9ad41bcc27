package request

type CreateNewsRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Content     string   `json:"content" validate:"required"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,url,max=255"`
	IsFeatured  bool     `json:"is_featured"`
	IsExclusive bool     `json:"is_exclusive"`
	Category    string   `json:"category,omitempty" validate:"omitempty,max=50"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=30"`
	PublishDate *string  `json:"publish_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateNewsRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,max=200"`
	Content     *string  `json:"content,omitempty" validate:"omitempty,min=1"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,url,max=255"`
	IsFeatured  *bool    `json:"is_featured,omitempty"`
	IsExclusive *bool    `json:"is_exclusive,omitempty"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,max=50"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=30"`
	PublishDate *string  `json:"publish_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// NewsListRequest is read from the query string.
type NewsListRequest struct {
	PaginatedRequest
	Category     string `validate:"omitempty,max=50"`
	Tag          string `validate:"omitempty,max=30"`
	Search       string `validate:"omitempty,max=100"`
	FeaturedOnly bool
}
