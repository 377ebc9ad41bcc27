package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodPayPal       PaymentMethod = "paypal"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// Payment is never deleted; refunds flip Status and keep the row for audit.
type Payment struct {
	Base
	BookingID       uuid.UUID       `db:"booking_id"`
	UserID          uuid.UUID       `db:"user_id"`
	Amount          decimal.Decimal `db:"amount"`
	DiscountApplied decimal.Decimal `db:"discount_applied"`
	PaymentMethod   PaymentMethod   `db:"payment_method"`
	TransactionID   string          `db:"transaction_id"`
	Status          PaymentStatus   `db:"status"`
	CardLastDigits  *string         `db:"card_last_digits"`
	BillingAddress  *string         `db:"billing_address"`
	PaymentDate     time.Time       `db:"payment_date"`
	RefundedAt      *time.Time      `db:"refunded_at"`
}

// Settles is the part of the booking price this payment covers: the amount
// charged plus any discount granted on top of it.
func (p *Payment) Settles() decimal.Decimal {
	return p.Amount.Add(p.DiscountApplied)
}

type PaymentMethodStats struct {
	Count  int64
	Amount decimal.Decimal
}

type PaymentStats struct {
	TotalPayments int64
	TotalAmount   decimal.Decimal
	ByMethod      map[PaymentMethod]PaymentMethodStats
}

// PaymentSummary is the payment position of one booking, derived from its
// completed payments.
type PaymentSummary struct {
	TotalPrice        decimal.Decimal
	TotalPaid         decimal.Decimal
	DiscountApplied   decimal.Decimal
	PendingAmount     decimal.Decimal
	IsFullyPaid       bool
	PaymentPercentage decimal.Decimal
}
