package usecase

import (
	"fmt"

	"travel-agency/internal/data/entity"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func completedPayments(payments []*entity.Payment) []*entity.Payment {
	return lo.Filter(payments, func(p *entity.Payment, _ int) bool {
		return p.Status == entity.PaymentStatusCompleted
	})
}

func sumPayments(payments []*entity.Payment, value func(*entity.Payment) decimal.Decimal) decimal.Decimal {
	return lo.Reduce(completedPayments(payments), func(acc decimal.Decimal, p *entity.Payment, _ int) decimal.Decimal {
		return acc.Add(value(p))
	}, decimal.Zero)
}

// PaidTotal is the sum charged by completed payments. Refunded, failed and
// pending payments do not count.
func PaidTotal(payments []*entity.Payment) decimal.Decimal {
	return sumPayments(payments, func(p *entity.Payment) decimal.Decimal { return p.Amount })
}

// SettledTotal is PaidTotal plus the discounts granted on those payments.
func SettledTotal(payments []*entity.Payment) decimal.Decimal {
	return sumPayments(payments, (*entity.Payment).Settles)
}

// ReconcileStatus derives the status of a booking from its payment set.
// Cancelled bookings never change; otherwise the booking is confirmed exactly
// when its completed payments settle the total price.
func ReconcileStatus(current entity.BookingStatus, totalPrice decimal.Decimal, payments []*entity.Payment) entity.BookingStatus {
	if current == entity.BookingStatusCancelled {
		return current
	}
	if SettledTotal(payments).GreaterThanOrEqual(totalPrice) {
		return entity.BookingStatusConfirmed
	}
	return entity.BookingStatusPending
}

// SummarizePayments computes the payment position of a booking. The
// percentage is taken over the amount actually charged and is 0 when the
// total price is 0.
func SummarizePayments(totalPrice decimal.Decimal, payments []*entity.Payment) entity.PaymentSummary {
	paid := PaidTotal(payments)
	discount := sumPayments(payments, func(p *entity.Payment) decimal.Decimal { return p.DiscountApplied })
	settled := paid.Add(discount)

	pending := totalPrice.Sub(settled)
	if pending.IsNegative() {
		pending = decimal.Zero
	}

	percentage := decimal.Zero
	if totalPrice.IsPositive() {
		percentage = paid.Mul(hundred).Div(totalPrice).Round(2)
	}

	return entity.PaymentSummary{
		TotalPrice:        totalPrice,
		TotalPaid:         paid,
		DiscountApplied:   discount,
		PendingAmount:     pending,
		IsFullyPaid:       settled.GreaterThanOrEqual(totalPrice),
		PaymentPercentage: percentage,
	}
}

// QuotePayment decides what is charged and what is discounted for a payment
// against an outstanding balance. A nil requested amount charges the whole
// balance. VIP payers get discountPct percent off: an explicit amount covers
// amount/(1-pct) of the balance and may not exceed the discounted balance,
// so a VIP is never charged more than the discounted price.
func QuotePayment(outstanding decimal.Decimal, requested *decimal.Decimal, discountPct decimal.Decimal, vip bool) (amount, discount decimal.Decimal, err error) {
	if !outstanding.IsPositive() {
		return decimal.Zero, decimal.Zero, ErrAlreadyPaid
	}

	applyDiscount := vip && discountPct.IsPositive() && discountPct.LessThan(hundred)

	if requested == nil {
		if !applyDiscount {
			return outstanding, decimal.Zero, nil
		}
		discount = outstanding.Mul(discountPct).Div(hundred).Round(2)
		return outstanding.Sub(discount), discount, nil
	}

	amount = *requested
	if !amount.IsPositive() {
		return decimal.Zero, decimal.Zero, invalid("amount", "must be greater than zero")
	}
	if amount.GreaterThan(outstanding) {
		return decimal.Zero, decimal.Zero, invalid("amount", fmt.Sprintf("exceeds the outstanding balance of %s", outstanding.StringFixed(2)))
	}
	if !applyDiscount {
		return amount, decimal.Zero, nil
	}

	due := outstanding.Sub(outstanding.Mul(discountPct).Div(hundred).Round(2))
	if amount.GreaterThan(due) {
		return decimal.Zero, decimal.Zero, invalid("amount", fmt.Sprintf("exceeds the discounted balance of %s", due.StringFixed(2)))
	}
	if amount.Equal(due) {
		return amount, outstanding.Sub(due), nil
	}

	// rounding must never push a partial payment past the balance
	discount = amount.Mul(discountPct).Div(hundred.Sub(discountPct)).Round(2)
	if limit := outstanding.Sub(amount); discount.GreaterThan(limit) {
		discount = limit
	}
	return amount, discount, nil
}
