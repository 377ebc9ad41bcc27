package response

import (
	"time"

	"travel-agency/internal/data/entity"

	"github.com/shopspring/decimal"
)

type PaymentResponse struct {
	ID              string               `json:"id"`
	BookingID       string               `json:"booking_id"`
	UserID          string               `json:"user_id"`
	Amount          decimal.Decimal      `json:"amount"`
	DiscountApplied decimal.Decimal      `json:"discount_applied"`
	PaymentMethod   entity.PaymentMethod `json:"payment_method"`
	TransactionID   string               `json:"transaction_id"`
	Status          entity.PaymentStatus `json:"status"`
	CardLastDigits  *string              `json:"card_last_digits,omitempty"`
	BillingAddress  *string              `json:"billing_address,omitempty"`
	PaymentDate     time.Time            `json:"payment_date"`
	RefundedAt      *time.Time           `json:"refunded_at,omitempty"`
}

type PaymentStatusResponse struct {
	BookingID         string               `json:"booking_id"`
	BookingStatus     entity.BookingStatus `json:"booking_status"`
	TotalPrice        decimal.Decimal      `json:"total_price"`
	TotalPaid         decimal.Decimal      `json:"total_paid"`
	DiscountApplied   decimal.Decimal      `json:"discount_applied"`
	PendingAmount     decimal.Decimal      `json:"pending_amount"`
	IsFullyPaid       bool                 `json:"is_fully_paid"`
	PaymentPercentage decimal.Decimal      `json:"payment_percentage"`
}

// PaymentResultResponse is returned after a payment is recorded.
type PaymentResultResponse struct {
	Payment       PaymentResponse       `json:"payment"`
	PaymentStatus PaymentStatusResponse `json:"payment_status"`
}

type ReceiptResponse struct {
	ReceiptNumber string                `json:"receipt_number"`
	Currency      string                `json:"currency"`
	Customer      ReceiptCustomer       `json:"customer"`
	Booking       BookingResponse       `json:"booking"`
	Payment       PaymentResponse       `json:"payment"`
	PaymentStatus PaymentStatusResponse `json:"payment_status"`
}

type ReceiptCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PaymentMethodStatsResponse struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type PaymentStatsResponse struct {
	TotalPayments int64                                 `json:"total_payments"`
	TotalAmount   decimal.Decimal                       `json:"total_amount"`
	ByMethod      map[string]PaymentMethodStatsResponse `json:"by_method"`
}

// Helper converters
func PaymentToResponse(payment *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              payment.ID.String(),
		BookingID:       payment.BookingID.String(),
		UserID:          payment.UserID.String(),
		Amount:          payment.Amount,
		DiscountApplied: payment.DiscountApplied,
		PaymentMethod:   payment.PaymentMethod,
		TransactionID:   payment.TransactionID,
		Status:          payment.Status,
		CardLastDigits:  payment.CardLastDigits,
		BillingAddress:  payment.BillingAddress,
		PaymentDate:     payment.PaymentDate,
		RefundedAt:      payment.RefundedAt,
	}
}

func PaymentsToResponse(payments []*entity.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, PaymentToResponse(p))
	}
	return out
}

func PaymentStatusToResponse(booking *entity.Booking, summary entity.PaymentSummary) PaymentStatusResponse {
	return PaymentStatusResponse{
		BookingID:         booking.ID.String(),
		BookingStatus:     booking.Status,
		TotalPrice:        summary.TotalPrice,
		TotalPaid:         summary.TotalPaid,
		DiscountApplied:   summary.DiscountApplied,
		PendingAmount:     summary.PendingAmount,
		IsFullyPaid:       summary.IsFullyPaid,
		PaymentPercentage: summary.PaymentPercentage,
	}
}

func PaymentStatsToResponse(stats *entity.PaymentStats) PaymentStatsResponse {
	byMethod := make(map[string]PaymentMethodStatsResponse, len(stats.ByMethod))
	for method, s := range stats.ByMethod {
		byMethod[string(method)] = PaymentMethodStatsResponse{Count: s.Count, Amount: s.Amount}
	}

	return PaymentStatsResponse{
		TotalPayments: stats.TotalPayments,
		TotalAmount:   stats.TotalAmount,
		ByMethod:      byMethod,
	}
}
