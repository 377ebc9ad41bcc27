package entity

import (
	"time"

	"github.com/google/uuid"
)

type News struct {
	Base
	Title       string    `db:"title"`
	Content     string    `db:"content"`
	ImageURL    *string   `db:"image_url"`
	AuthorID    uuid.UUID `db:"author_id"`
	IsFeatured  bool      `db:"is_featured"`
	IsExclusive bool      `db:"is_exclusive"`
	Category    string    `db:"category"`
	Tags        []string  `db:"tags"`
	ViewsCount  int       `db:"views_count"`
	PublishDate time.Time `db:"publish_date"`
}

// NewsFilter narrows the feed. IncludeExclusive is only set for VIP and admin readers.
type NewsFilter struct {
	Category         string
	Tag              string
	Search           string
	FeaturedOnly     bool
	IncludeExclusive bool
	ExcludeID        uuid.UUID
}

// Preview returns the first chars runes of the content.
func (n *News) Preview(chars int) string {
	r := []rune(n.Content)
	if len(r) <= chars {
		return n.Content
	}
	return string(r[:chars]) + "..."
}
