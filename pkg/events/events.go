package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Header is carried by every ledger event.
type Header struct {
	ID          string    `json:"id"`
	PublishedAt time.Time `json:"published_at"`
}

func NewHeader() Header {
	return Header{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

type BookingCreated struct {
	Header Header `json:"header"`

	BookingID         uuid.UUID       `json:"booking_id"`
	BookingNumber     string          `json:"booking_number"`
	UserID            uuid.UUID       `json:"user_id"`
	PackageID         uuid.UUID       `json:"package_id"`
	TravelDate        string          `json:"travel_date"`
	NumberOfTravelers int             `json:"number_of_travelers"`
	TotalPrice        decimal.Decimal `json:"total_price"`
}

// BookingStatusChanged is emitted by reconciliation and by cancellation.
type BookingStatusChanged struct {
	Header Header `json:"header"`

	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Cause         string    `json:"cause"`
}

type PaymentRecorded struct {
	Header Header `json:"header"`

	PaymentID       uuid.UUID       `json:"payment_id"`
	BookingID       uuid.UUID       `json:"booking_id"`
	UserID          uuid.UUID       `json:"user_id"`
	Amount          decimal.Decimal `json:"amount"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	PaymentMethod   string          `json:"payment_method"`
	TransactionID   string          `json:"transaction_id"`
	Status          string          `json:"status"`
}

type PaymentRefunded struct {
	Header Header `json:"header"`

	PaymentID     uuid.UUID       `json:"payment_id"`
	BookingID     uuid.UUID       `json:"booking_id"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
}
