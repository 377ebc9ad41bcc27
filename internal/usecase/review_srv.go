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
	"go.uber.org/zap"
)

type ReviewService interface {
	// Public endpoints
	GetPackageReviews(ctx context.Context, packageID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)

	// Protected endpoints
	CreateReview(ctx context.Context, actor Actor, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	GetMyReviews(ctx context.Context, actor Actor) ([]response.ReviewResponse, error)
	UpdateReview(ctx context.Context, actor Actor, reviewID uuid.UUID, req *request.UpdateReviewRequest) (*response.ReviewResponse, error)
	DeleteReview(ctx context.Context, actor Actor, reviewID uuid.UUID) error

	// Admin endpoints
	ListPendingReviews(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	ApproveReview(ctx context.Context, reviewID uuid.UUID) (*response.ReviewResponse, error)
	RejectReview(ctx context.Context, reviewID uuid.UUID) (*response.ReviewResponse, error)
	GetStats(ctx context.Context) (*response.ReviewStatsResponse, error)
}

type reviewService struct {
	repo  *repository.Repository
	clock clock
	log   *zap.Logger
}

func NewReviewService(repo *repository.Repository, clock clock, log *zap.Logger) ReviewService {
	return &reviewService{
		repo:  repo,
		clock: clock,
		log:   log.With(zap.String("service", "review")),
	}
}

// CreateReview accepts a review from a customer who has completed a confirmed
// trip on the package. Admins skip the travel check.
func (s *reviewService) CreateReview(ctx context.Context, actor Actor, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	packageID := uuid.MustParse(req.PackageID)

	pkg, err := s.repo.Package.FindByID(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("find package: %w", err)
	}
	if pkg == nil {
		return nil, fmt.Errorf("package %s: %w", packageID, ErrNotFound)
	}

	if !actor.IsAdmin() {
		traveled, err := s.repo.Booking.HasTraveled(ctx, actor.UserID, packageID, utils.Today(s.clock()))
		if err != nil {
			return nil, fmt.Errorf("check travel history: %w", err)
		}
		if !traveled {
			return nil, fmt.Errorf("review package %s without a completed trip: %w", packageID, ErrUnauthorized)
		}
	}

	review := &entity.Review{
		Base:      entity.NewBase(s.clock()),
		UserID:    actor.UserID,
		PackageID: packageID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		Approval:  entity.ReviewPending,
	}

	if err := s.repo.Review.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("review of package %s: %w", packageID, ErrConflict)
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("user_id", actor.UserID.String()),
		zap.String("package_id", packageID.String()),
		zap.Int("rating", review.Rating),
	)

	resp := response.ReviewToResponse(review)
	return &resp, nil
}

func (s *reviewService) GetPackageReviews(ctx context.Context, packageID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	reviews, err := s.repo.Review.FindByPackageID(ctx, packageID, entity.ReviewApproved, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list package reviews: %w", err)
	}

	total, err := s.repo.Review.CountByPackageID(ctx, packageID, entity.ReviewApproved)
	if err != nil {
		return nil, fmt.Errorf("count package reviews: %w", err)
	}

	return response.NewPaginatedResponse(response.ReviewsToResponse(reviews), req.Page, req.Limit(), total), nil
}

func (s *reviewService) GetMyReviews(ctx context.Context, actor Actor) ([]response.ReviewResponse, error) {
	reviews, err := s.repo.Review.FindByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}
	return response.ReviewsToResponse(reviews), nil
}

// UpdateReview edits the caller's own review. The edit goes back to moderation.
func (s *reviewService) UpdateReview(ctx context.Context, actor Actor, reviewID uuid.UUID, req *request.UpdateReviewRequest) (*response.ReviewResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	review, err := s.ownReview(ctx, actor, reviewID)
	if err != nil {
		return nil, err
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = strings.TrimSpace(*req.Comment)
	}
	review.Approval = entity.ReviewPending
	review.UpdatedAt = s.clock()

	if err := s.repo.Review.Update(ctx, review); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("review %s: %w", reviewID, ErrNotFound)
		}
		return nil, fmt.Errorf("update review: %w", err)
	}

	resp := response.ReviewToResponse(review)
	return &resp, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, actor Actor, reviewID uuid.UUID) error {
	if _, err := s.ownReview(ctx, actor, reviewID); err != nil {
		return err
	}

	if err := s.repo.Review.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("review %s: %w", reviewID, ErrNotFound)
		}
		return fmt.Errorf("delete review: %w", err)
	}

	s.log.Info("Review deleted",
		zap.String("review_id", reviewID.String()),
		zap.String("by", actor.UserID.String()),
	)
	return nil
}

// ==================== MODERATION ====================

func (s *reviewService) ListPendingReviews(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	reviews, err := s.repo.Review.FindByApproval(ctx, entity.ReviewPending, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list pending reviews: %w", err)
	}

	total, err := s.repo.Review.CountByApproval(ctx, entity.ReviewPending)
	if err != nil {
		return nil, fmt.Errorf("count pending reviews: %w", err)
	}

	return response.NewPaginatedResponse(response.ReviewsToResponse(reviews), req.Page, req.Limit(), total), nil
}

func (s *reviewService) ApproveReview(ctx context.Context, reviewID uuid.UUID) (*response.ReviewResponse, error) {
	return s.moderate(ctx, reviewID, entity.ReviewApproved)
}

func (s *reviewService) RejectReview(ctx context.Context, reviewID uuid.UUID) (*response.ReviewResponse, error) {
	return s.moderate(ctx, reviewID, entity.ReviewRejected)
}

func (s *reviewService) GetStats(ctx context.Context) (*response.ReviewStatsResponse, error) {
	stats, err := s.repo.Review.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("review stats: %w", err)
	}

	resp := response.ReviewStatsToResponse(stats)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

func (s *reviewService) ownReview(ctx context.Context, actor Actor, reviewID uuid.UUID) (*entity.Review, error) {
	review, err := s.repo.Review.FindByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}
	if review == nil {
		return nil, fmt.Errorf("review %s: %w", reviewID, ErrNotFound)
	}
	if review.UserID != actor.UserID {
		return nil, fmt.Errorf("review %s: %w", reviewID, ErrUnauthorized)
	}
	return review, nil
}

func (s *reviewService) moderate(ctx context.Context, reviewID uuid.UUID, approval entity.ReviewApproval) (*response.ReviewResponse, error) {
	if err := s.repo.Review.SetApproval(ctx, reviewID, approval); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("review %s: %w", reviewID, ErrNotFound)
		}
		return nil, fmt.Errorf("moderate review: %w", err)
	}

	review, err := s.repo.Review.FindByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}
	if review == nil {
		return nil, fmt.Errorf("review %s: %w", reviewID, ErrNotFound)
	}

	s.log.Info("Review moderated",
		zap.String("review_id", reviewID.String()),
		zap.String("approval", string(approval)),
	)

	resp := response.ReviewToResponse(review)
	return &resp, nil
}
