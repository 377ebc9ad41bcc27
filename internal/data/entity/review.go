package entity

import "github.com/google/uuid"

type ReviewApproval string

const (
	ReviewPending  ReviewApproval = "pending"
	ReviewApproved ReviewApproval = "approved"
	ReviewRejected ReviewApproval = "rejected"
)

type Review struct {
	Base
	UserID    uuid.UUID      `db:"user_id"`
	PackageID uuid.UUID      `db:"package_id"`
	Rating    int            `db:"rating"` // 1-5
	Comment   string         `db:"comment"`
	Approval  ReviewApproval `db:"approval"`
}

type ReviewStats struct {
	Total          int64
	Average        float64
	RatingCounts   map[int]int64
	ApprovalCounts map[ReviewApproval]int64
}
