package repository

import (
	"context"
	"fmt"

	"travel-agency/internal/data/entity"
	"travel-agency/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReviewRepository interface {
	// Create inserts the review. A second review by the same user for the same
	// package returns ErrDuplicate.
	Create(ctx context.Context, review *entity.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	FindByUserAndPackage(ctx context.Context, userID, packageID uuid.UUID) (*entity.Review, error)
	FindByPackageID(ctx context.Context, packageID uuid.UUID, approval entity.ReviewApproval, limit, offset int) ([]*entity.Review, error)
	CountByPackageID(ctx context.Context, packageID uuid.UUID, approval entity.ReviewApproval) (int64, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Review, error)
	FindByApproval(ctx context.Context, approval entity.ReviewApproval, limit, offset int) ([]*entity.Review, error)
	CountByApproval(ctx context.Context, approval entity.ReviewApproval) (int64, error)
	Update(ctx context.Context, review *entity.Review) error
	SetApproval(ctx context.Context, id uuid.UUID, approval entity.ReviewApproval) error
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*entity.ReviewStats, error)
}

type reviewRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewReviewRepository(db database.Querier, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

const reviewColumns = `id, user_id, package_id, rating, comment, approval, created_at, updated_at`

func scanReview(row pgx.Row) (*entity.Review, error) {
	var rv entity.Review
	err := row.Scan(
		&rv.ID,
		&rv.UserID,
		&rv.PackageID,
		&rv.Rating,
		&rv.Comment,
		&rv.Approval,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepository) collect(rows pgx.Rows, err error) ([]*entity.Review, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*entity.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	query := `
		INSERT INTO reviews (id, user_id, package_id, rating, comment, approval, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT reviews_user_package_key DO NOTHING
	`

	result, err := r.db.Exec(ctx, query,
		review.ID,
		review.UserID,
		review.PackageID,
		review.Rating,
		review.Comment,
		review.Approval,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("user_id", review.UserID.String()),
			zap.String("package_id", review.PackageID.String()),
		)
		return fmt.Errorf("create review: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("review by %s for package %s: %w", review.UserID, review.PackageID, ErrDuplicate)
	}

	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	review, err := scanReview(r.db.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by ID", zap.Error(err), zap.String("review_id", id.String()))
		return nil, fmt.Errorf("find review by ID %s: %w", id, err)
	}
	return review, nil
}

func (r *reviewRepository) FindByUserAndPackage(ctx context.Context, userID, packageID uuid.UUID) (*entity.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1 AND package_id = $2`

	review, err := scanReview(r.db.QueryRow(ctx, query, userID, packageID))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by user and package", zap.Error(err))
		return nil, fmt.Errorf("find review by user %s and package %s: %w", userID, packageID, err)
	}
	return review, nil
}

// FindByPackageID lists reviews of a package newest first. An empty approval lists all.
func (r *reviewRepository) FindByPackageID(ctx context.Context, packageID uuid.UUID, approval entity.ReviewApproval, limit, offset int) ([]*entity.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE package_id = $1 AND ($2::text = '' OR approval = $2::text)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	reviews, err := r.collect(r.db.Query(ctx, query, packageID, string(approval), limit, offset))
	if err != nil {
		r.log.Error("Failed to find reviews by package ID",
			zap.Error(err),
			zap.String("package_id", packageID.String()),
		)
		return nil, fmt.Errorf("find reviews by package ID %s: %w", packageID, err)
	}
	return reviews, nil
}

func (r *reviewRepository) CountByPackageID(ctx context.Context, packageID uuid.UUID, approval entity.ReviewApproval) (int64, error) {
	query := `SELECT COUNT(*) FROM reviews WHERE package_id = $1 AND ($2::text = '' OR approval = $2::text)`

	var count int64
	if err := r.db.QueryRow(ctx, query, packageID, string(approval)).Scan(&count); err != nil {
		r.log.Error("Failed to count reviews by package ID", zap.Error(err))
		return 0, fmt.Errorf("count reviews by package ID %s: %w", packageID, err)
	}
	return count, nil
}

func (r *reviewRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1 ORDER BY created_at DESC`

	reviews, err := r.collect(r.db.Query(ctx, query, userID))
	if err != nil {
		r.log.Error("Failed to find reviews by user ID", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find reviews by user ID %s: %w", userID, err)
	}
	return reviews, nil
}

func (r *reviewRepository) FindByApproval(ctx context.Context, approval entity.ReviewApproval, limit, offset int) ([]*entity.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE approval = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	reviews, err := r.collect(r.db.Query(ctx, query, approval, limit, offset))
	if err != nil {
		r.log.Error("Failed to find reviews by approval", zap.Error(err), zap.String("approval", string(approval)))
		return nil, fmt.Errorf("find %s reviews: %w", approval, err)
	}
	return reviews, nil
}

func (r *reviewRepository) CountByApproval(ctx context.Context, approval entity.ReviewApproval) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE approval = $1`, approval).Scan(&count); err != nil {
		r.log.Error("Failed to count reviews by approval", zap.Error(err))
		return 0, fmt.Errorf("count %s reviews: %w", approval, err)
	}
	return count, nil
}

// Update rewrites rating and comment. Edited reviews go back to moderation.
func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, comment = $3, approval = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, review.ID, review.Rating, review.Comment, review.Approval, review.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to update review", zap.Error(err), zap.String("review_id", review.ID.String()))
		return fmt.Errorf("update review %s: %w", review.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("review %s: %w", review.ID, ErrNotFound)
	}
	return nil
}

func (r *reviewRepository) SetApproval(ctx context.Context, id uuid.UUID, approval entity.ReviewApproval) error {
	result, err := r.db.Exec(ctx, `UPDATE reviews SET approval = $2, updated_at = NOW() WHERE id = $1`, id, approval)
	if err != nil {
		r.log.Error("Failed to set review approval",
			zap.Error(err),
			zap.String("review_id", id.String()),
			zap.String("approval", string(approval)),
		)
		return fmt.Errorf("set approval of review %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("review %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete review", zap.Error(err), zap.String("review_id", id.String()))
		return fmt.Errorf("delete review %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("review %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *reviewRepository) Stats(ctx context.Context) (*entity.ReviewStats, error) {
	query := `SELECT rating, approval, COUNT(*) FROM reviews GROUP BY rating, approval`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to compute review stats", zap.Error(err))
		return nil, fmt.Errorf("review stats: %w", err)
	}
	defer rows.Close()

	stats := &entity.ReviewStats{
		RatingCounts: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		ApprovalCounts: map[entity.ReviewApproval]int64{
			entity.ReviewPending:  0,
			entity.ReviewApproved: 0,
			entity.ReviewRejected: 0,
		},
	}

	var ratingSum int64
	for rows.Next() {
		var (
			rating   int
			approval entity.ReviewApproval
			count    int64
		)
		if err := rows.Scan(&rating, &approval, &count); err != nil {
			return nil, fmt.Errorf("scan review stats: %w", err)
		}
		stats.RatingCounts[rating] += count
		stats.ApprovalCounts[approval] += count
		stats.Total += count
		ratingSum += int64(rating) * count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		stats.Average = float64(ratingSum) / float64(stats.Total)
	}
	return stats, nil
}
