package repository

import (
	"context"
	"fmt"
	"strings"

	"travel-agency/internal/data/entity"
	"travel-agency/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// NewsOrder selects the ordering of news listings.
type NewsOrder string

const (
	NewsOrderRecent  NewsOrder = "recent"
	NewsOrderPopular NewsOrder = "popular"
)

// NewsFlag names a boolean column an admin can flip.
type NewsFlag string

const (
	NewsFlagFeatured  NewsFlag = "is_featured"
	NewsFlagExclusive NewsFlag = "is_exclusive"
)

type NewsRepository interface {
	Create(ctx context.Context, news *entity.News) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.News, error)
	FindAll(ctx context.Context, filter entity.NewsFilter, order NewsOrder, limit, offset int) ([]*entity.News, error)
	Count(ctx context.Context, filter entity.NewsFilter) (int64, error)
	Update(ctx context.Context, news *entity.News) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	// ToggleFlag flips flag and returns its new value.
	ToggleFlag(ctx context.Context, id uuid.UUID, flag NewsFlag) (bool, error)
}

type newsRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewNewsRepository(db database.Querier, log *zap.Logger) NewsRepository {
	return &newsRepository{
		db:  db,
		log: log.With(zap.String("repository", "news")),
	}
}

const newsColumns = `id, title, content, image_url, author_id, is_featured, is_exclusive, category, tags,
	views_count, publish_date, created_at, updated_at`

func scanNews(row pgx.Row) (*entity.News, error) {
	var n entity.News
	err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Content,
		&n.ImageURL,
		&n.AuthorID,
		&n.IsFeatured,
		&n.IsExclusive,
		&n.Category,
		&n.Tags,
		&n.ViewsCount,
		&n.PublishDate,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func buildNewsWhere(filter entity.NewsFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if !filter.IncludeExclusive {
		conds = append(conds, "is_exclusive = FALSE")
	}
	if filter.FeaturedOnly {
		conds = append(conds, "is_featured = TRUE")
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		add("category = $%d", c)
	}
	if t := strings.TrimSpace(filter.Tag); t != "" {
		add("$%d = ANY(tags)", t)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		add("(title ILIKE $%[1]d OR content ILIKE $%[1]d)", "%"+s+"%")
	}
	if filter.ExcludeID != uuid.Nil {
		add("id <> $%d", filter.ExcludeID)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *newsRepository) Create(ctx context.Context, news *entity.News) error {
	query := `
		INSERT INTO news (id, title, content, image_url, author_id, is_featured, is_exclusive, category, tags,
		                  views_count, publish_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		news.ID,
		news.Title,
		news.Content,
		news.ImageURL,
		news.AuthorID,
		news.IsFeatured,
		news.IsExclusive,
		news.Category,
		orEmpty(news.Tags),
		news.ViewsCount,
		news.PublishDate,
		news.CreatedAt,
		news.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create news", zap.Error(err), zap.String("title", news.Title))
		return fmt.Errorf("create news %q: %w", news.Title, err)
	}

	return nil
}

func (r *newsRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.News, error) {
	news, err := scanNews(r.db.QueryRow(ctx, `SELECT `+newsColumns+` FROM news WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find news by ID", zap.Error(err), zap.String("news_id", id.String()))
		return nil, fmt.Errorf("find news by ID %s: %w", id, err)
	}
	return news, nil
}

func (r *newsRepository) FindAll(ctx context.Context, filter entity.NewsFilter, order NewsOrder, limit, offset int) ([]*entity.News, error) {
	orderBy := "publish_date DESC"
	if order == NewsOrderPopular {
		orderBy = "views_count DESC, publish_date DESC"
	}

	where, args := buildNewsWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM news%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		newsColumns, where, orderBy, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list news", zap.Error(err))
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	var items []*entity.News
	for rows.Next() {
		news, err := scanNews(rows)
		if err != nil {
			return nil, fmt.Errorf("scan news row: %w", err)
		}
		items = append(items, news)
	}

	return items, rows.Err()
}

func (r *newsRepository) Count(ctx context.Context, filter entity.NewsFilter) (int64, error) {
	where, args := buildNewsWhere(filter)

	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM news`+where, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count news", zap.Error(err))
		return 0, fmt.Errorf("count news: %w", err)
	}
	return count, nil
}

func (r *newsRepository) Update(ctx context.Context, news *entity.News) error {
	query := `
		UPDATE news
		SET title = $2, content = $3, image_url = $4, is_featured = $5, is_exclusive = $6,
		    category = $7, tags = $8, publish_date = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		news.ID,
		news.Title,
		news.Content,
		news.ImageURL,
		news.IsFeatured,
		news.IsExclusive,
		news.Category,
		orEmpty(news.Tags),
		news.PublishDate,
		news.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update news", zap.Error(err), zap.String("news_id", news.ID.String()))
		return fmt.Errorf("update news %s: %w", news.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("news %s: %w", news.ID, ErrNotFound)
	}
	return nil
}

func (r *newsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete news", zap.Error(err), zap.String("news_id", id.String()))
		return fmt.Errorf("delete news %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("news %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *newsRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `UPDATE news SET views_count = views_count + 1 WHERE id = $1`, id); err != nil {
		r.log.Warn("Failed to increment news views", zap.Error(err), zap.String("news_id", id.String()))
		return fmt.Errorf("increment views of news %s: %w", id, err)
	}
	return nil
}

func (r *newsRepository) ToggleFlag(ctx context.Context, id uuid.UUID, flag NewsFlag) (bool, error) {
	if flag != NewsFlagFeatured && flag != NewsFlagExclusive {
		return false, fmt.Errorf("unknown news flag %q", flag)
	}

	query := fmt.Sprintf(`
		UPDATE news
		SET %[1]s = NOT %[1]s, updated_at = NOW()
		WHERE id = $1
		RETURNING %[1]s
	`, flag)

	var value bool
	err := r.db.QueryRow(ctx, query, id).Scan(&value)
	if isNoRows(err) {
		return false, fmt.Errorf("news %s: %w", id, ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to toggle news flag",
			zap.Error(err),
			zap.String("news_id", id.String()),
			zap.String("flag", string(flag)),
		)
		return false, fmt.Errorf("toggle %s of news %s: %w", flag, id, err)
	}

	return value, nil
}
