package response

import (
	"time"

	"travel-agency/internal/data/entity"

	"github.com/shopspring/decimal"
)

type BookingResponse struct {
	ID                string               `json:"id"`
	BookingNumber     string               `json:"booking_number"`
	UserID            string               `json:"user_id"`
	PackageID         string               `json:"package_id"`
	Destination       string               `json:"destination,omitempty"`
	TravelDate        string               `json:"travel_date"`
	NumberOfTravelers int                  `json:"number_of_travelers"`
	TotalPrice        decimal.Decimal      `json:"total_price"`
	Status            entity.BookingStatus `json:"status"`
	SpecialRequests   *string              `json:"special_requests,omitempty"`
	Priority          bool                 `json:"priority"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

type BookingDetailResponse struct {
	BookingResponse
	Package       *PackageResponse       `json:"package,omitempty"`
	PaymentStatus *PaymentStatusResponse `json:"payment_status,omitempty"`
	Payments      []PaymentResponse      `json:"payments"`
}

type BookingStatsResponse struct {
	TotalBookings int64            `json:"total_bookings"`
	TotalRevenue  decimal.Decimal  `json:"total_revenue"`
	StatusCounts  map[string]int64 `json:"status_counts"`
}

type ActiveUserResponse struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	BookingCount int64  `json:"booking_count"`
}

// Helper converters
func BookingToResponse(booking *entity.Booking, destination string) BookingResponse {
	return BookingResponse{
		ID:                booking.ID.String(),
		BookingNumber:     booking.BookingNumber,
		UserID:            booking.UserID.String(),
		PackageID:         booking.PackageID.String(),
		Destination:       destination,
		TravelDate:        booking.TravelDate.Format("2006-01-02"),
		NumberOfTravelers: booking.NumberOfTravelers,
		TotalPrice:        booking.TotalPrice,
		Status:            booking.Status,
		SpecialRequests:   booking.SpecialRequests,
		Priority:          booking.Priority,
		CreatedAt:         booking.CreatedAt,
		UpdatedAt:         booking.UpdatedAt,
	}
}

func BookingStatsToResponse(stats *entity.BookingStats) BookingStatsResponse {
	counts := make(map[string]int64, len(entity.BookingStatuses))
	for _, status := range entity.BookingStatuses {
		counts[string(status)] = stats.StatusCounts[status]
	}

	return BookingStatsResponse{
		TotalBookings: stats.TotalBookings,
		TotalRevenue:  stats.TotalRevenue,
		StatusCounts:  counts,
	}
}

func ActiveUsersToResponse(users []*entity.ActiveUser) []ActiveUserResponse {
	out := make([]ActiveUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ActiveUserResponse{
			UserID:       u.UserID.String(),
			Name:         u.Name,
			Email:        u.Email,
			Role:         string(u.Role),
			BookingCount: u.Bookings,
		})
	}
	return out
}
