package response

import (
	"time"

	"travel-agency/internal/data/entity"
)

type ReviewResponse struct {
	ID        string                `json:"id"`
	UserID    string                `json:"user_id"`
	PackageID string                `json:"package_id"`
	Rating    int                   `json:"rating"`
	Comment   string                `json:"comment"`
	Approval  entity.ReviewApproval `json:"approval"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type ReviewStatsResponse struct {
	Total          int64            `json:"total"`
	AverageRating  float64          `json:"average_rating"`
	RatingCounts   map[int]int64    `json:"rating_counts"`
	ApprovalCounts map[string]int64 `json:"approval_counts"`
}

// Helper converters
func ReviewToResponse(review *entity.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID.String(),
		UserID:    review.UserID.String(),
		PackageID: review.PackageID.String(),
		Rating:    review.Rating,
		Comment:   review.Comment,
		Approval:  review.Approval,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
}

func ReviewsToResponse(reviews []*entity.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, ReviewToResponse(r))
	}
	return out
}

func ReviewStatsToResponse(stats *entity.ReviewStats) ReviewStatsResponse {
	approvals := make(map[string]int64, len(stats.ApprovalCounts))
	for approval, n := range stats.ApprovalCounts {
		approvals[string(approval)] = n
	}

	return ReviewStatsResponse{
		Total:          stats.Total,
		AverageRating:  stats.Average,
		RatingCounts:   stats.RatingCounts,
		ApprovalCounts: approvals,
	}
}
