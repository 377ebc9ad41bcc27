package response

import (
	"time"

	"travel-agency/internal/data/entity"

	"github.com/shopspring/decimal"
)

type PackageResponse struct {
	ID               string          `json:"id"`
	Destination      string          `json:"destination"`
	Description      *string         `json:"description,omitempty"`
	Price            decimal.Decimal `json:"price"`
	Duration         int             `json:"duration"`
	IncludedServices *string         `json:"included_services,omitempty"`
	Images           []string        `json:"images"`
	Availability     bool            `json:"availability"`
	MaxTravelers     int             `json:"max_travelers"`
	DifficultyLevel  *string         `json:"difficulty_level,omitempty"`
	Season           *string         `json:"season,omitempty"`
	Rating           *RatingResponse `json:"rating,omitempty"`
	BookingCount     *int64          `json:"booking_count,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type RatingResponse struct {
	Average     decimal.Decimal `json:"average"`
	ReviewCount int64           `json:"review_count"`
}

type AvailabilityResponse struct {
	PackageID         string `json:"package_id"`
	Date              string `json:"date"`
	Available         bool   `json:"available"`
	BookedTravelers   int    `json:"booked_travelers"`
	RemainingCapacity int    `json:"remaining_capacity"`
}

type AvailableDatesResponse struct {
	PackageID string   `json:"package_id"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Dates     []string `json:"dates"`
}

func PackageToResponse(pkg *entity.Package, rating *entity.PackageRating) PackageResponse {
	images := pkg.Images
	if images == nil {
		images = []string{}
	}

	resp := PackageResponse{
		ID:               pkg.ID.String(),
		Destination:      pkg.Destination,
		Description:      pkg.Description,
		Price:            pkg.Price,
		Duration:         pkg.Duration,
		IncludedServices: pkg.IncludedServices,
		Images:           images,
		Availability:     pkg.Availability,
		MaxTravelers:     pkg.MaxTravelers,
		DifficultyLevel:  pkg.DifficultyLevel,
		Season:           pkg.Season,
		CreatedAt:        pkg.CreatedAt,
		UpdatedAt:        pkg.UpdatedAt,
	}

	if rating != nil {
		resp.Rating = &RatingResponse{Average: rating.Average, ReviewCount: rating.Count}
	}

	return resp
}

func RankedPackagesToResponse(ranked []*entity.RankedPackage) []PackageResponse {
	out := make([]PackageResponse, 0, len(ranked))
	for _, item := range ranked {
		rating := item.Rating
		resp := PackageToResponse(item.Package, &rating)
		bookings := item.Bookings
		resp.BookingCount = &bookings
		out = append(out, resp)
	}
	return out
}
