package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BookingStatuses lists every status in display order.
var BookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCancelled,
}

// HoldsCapacity reports whether a booking in this status counts against
// the package capacity for its travel date.
func (s BookingStatus) HoldsCapacity() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

type Booking struct {
	Base
	BookingNumber     string          `db:"booking_number"`
	UserID            uuid.UUID       `db:"user_id"`
	PackageID         uuid.UUID       `db:"package_id"`
	TravelDate        time.Time       `db:"travel_date"`
	NumberOfTravelers int             `db:"number_of_travelers"`
	TotalPrice        decimal.Decimal `db:"total_price"`
	Status            BookingStatus   `db:"status"`
	SpecialRequests   *string         `db:"special_requests"`
	Priority          bool            `db:"priority"`
}

// ActiveUser is a customer ranked by how many bookings they have made.
type ActiveUser struct {
	UserID   uuid.UUID
	Name     string
	Email    string
	Role     UserRole
	Bookings int64
}

type BookingStats struct {
	TotalBookings int64
	TotalRevenue  decimal.Decimal
	StatusCounts  map[BookingStatus]int64
}
