package usecase

import (
	"testing"

	"travel-agency/internal/data/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func payment(amount, discount string, status entity.PaymentStatus) *entity.Payment {
	return &entity.Payment{Amount: dec(amount), DiscountApplied: dec(discount), Status: status}
}

func TestReconcileStatus(t *testing.T) {
	tests := []struct {
		name     string
		current  entity.BookingStatus
		total    string
		payments []*entity.Payment
		want     entity.BookingStatus
	}{
		{
			name:    "no payments stays pending",
			current: entity.BookingStatusPending,
			total:   "1000",
			want:    entity.BookingStatusPending,
		},
		{
			name:     "partial payment stays pending",
			current:  entity.BookingStatusPending,
			total:    "1000",
			payments: []*entity.Payment{payment("400", "0", entity.PaymentStatusCompleted)},
			want:     entity.BookingStatusPending,
		},
		{
			name:    "settled confirms",
			current: entity.BookingStatusPending,
			total:   "1000",
			payments: []*entity.Payment{
				payment("400", "0", entity.PaymentStatusCompleted),
				payment("600", "0", entity.PaymentStatusCompleted),
			},
			want: entity.BookingStatusConfirmed,
		},
		{
			name:     "discount counts toward settlement",
			current:  entity.BookingStatusPending,
			total:    "1000",
			payments: []*entity.Payment{payment("900", "100", entity.PaymentStatusCompleted)},
			want:     entity.BookingStatusConfirmed,
		},
		{
			name:     "refund reverts confirmed to pending",
			current:  entity.BookingStatusConfirmed,
			total:    "1000",
			payments: []*entity.Payment{payment("1000", "0", entity.PaymentStatusRefunded)},
			want:     entity.BookingStatusPending,
		},
		{
			name:    "failed and pending payments are ignored",
			current: entity.BookingStatusPending,
			total:   "1000",
			payments: []*entity.Payment{
				payment("1000", "0", entity.PaymentStatusFailed),
				payment("1000", "0", entity.PaymentStatusPending),
			},
			want: entity.BookingStatusPending,
		},
		{
			name:     "cancelled never changes",
			current:  entity.BookingStatusCancelled,
			total:    "1000",
			payments: []*entity.Payment{payment("1000", "0", entity.PaymentStatusCompleted)},
			want:     entity.BookingStatusCancelled,
		},
		{
			name:    "free booking is confirmed",
			current: entity.BookingStatusPending,
			total:   "0",
			want:    entity.BookingStatusConfirmed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReconcileStatus(tt.current, dec(tt.total), tt.payments)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummarizePayments(t *testing.T) {
	t.Run("two payments of 500 settle 1000", func(t *testing.T) {
		s := SummarizePayments(dec("1000"), []*entity.Payment{
			payment("500", "0", entity.PaymentStatusCompleted),
			payment("500", "0", entity.PaymentStatusCompleted),
		})

		assert.True(t, s.TotalPaid.Equal(dec("1000")))
		assert.True(t, s.PendingAmount.IsZero())
		assert.True(t, s.IsFullyPaid)
		assert.True(t, s.PaymentPercentage.Equal(dec("100")))
	})

	t.Run("refunded payment drops out", func(t *testing.T) {
		s := SummarizePayments(dec("1000"), []*entity.Payment{
			payment("500", "0", entity.PaymentStatusCompleted),
			payment("500", "0", entity.PaymentStatusRefunded),
		})

		assert.True(t, s.TotalPaid.Equal(dec("500")))
		assert.True(t, s.PendingAmount.Equal(dec("500")))
		assert.False(t, s.IsFullyPaid)
		assert.True(t, s.PaymentPercentage.Equal(dec("50")))
	})

	t.Run("vip discount settles without full charge", func(t *testing.T) {
		s := SummarizePayments(dec("1000"), []*entity.Payment{
			payment("900", "100", entity.PaymentStatusCompleted),
		})

		assert.True(t, s.TotalPaid.Equal(dec("900")))
		assert.True(t, s.DiscountApplied.Equal(dec("100")))
		assert.True(t, s.PendingAmount.IsZero())
		assert.True(t, s.IsFullyPaid)
		assert.True(t, s.PaymentPercentage.Equal(dec("90")))
	})

	t.Run("zero price has zero percentage", func(t *testing.T) {
		s := SummarizePayments(decimal.Zero, nil)

		assert.True(t, s.PaymentPercentage.IsZero())
		assert.True(t, s.IsFullyPaid)
		assert.True(t, s.PendingAmount.IsZero())
	})

	t.Run("percentage is rounded to two places", func(t *testing.T) {
		s := SummarizePayments(dec("300"), []*entity.Payment{
			payment("100", "0", entity.PaymentStatusCompleted),
		})
		assert.Equal(t, "33.33", s.PaymentPercentage.StringFixed(2))
	})
}

func TestQuotePayment(t *testing.T) {
	ten := dec("10")

	tests := []struct {
		name         string
		outstanding  string
		requested    *decimal.Decimal
		vip          bool
		wantAmount   string
		wantDiscount string
		wantErr      error
	}{
		{name: "regular full balance", outstanding: "1000", wantAmount: "1000", wantDiscount: "0"},
		{name: "regular partial", outstanding: "1000", requested: decPtr("400"), wantAmount: "400", wantDiscount: "0"},
		{name: "vip omitted amount", outstanding: "1000", vip: true, wantAmount: "900", wantDiscount: "100"},
		{name: "vip explicit 900 settles 1000", outstanding: "1000", requested: decPtr("900"), vip: true, wantAmount: "900", wantDiscount: "100"},
		{name: "vip partial", outstanding: "1000", requested: decPtr("450"), vip: true, wantAmount: "450", wantDiscount: "50"},
		{name: "vip amount above discounted balance", outstanding: "1000", requested: decPtr("950"), vip: true, wantErr: ErrValidation},
		{name: "vip full undiscounted balance", outstanding: "1000", requested: decPtr("1000"), vip: true, wantErr: ErrValidation},
		{name: "vip settles odd balance exactly", outstanding: "333.33", requested: decPtr("300.00"), vip: true, wantAmount: "300.00", wantDiscount: "33.33"},
		{name: "already paid", outstanding: "0", wantErr: ErrAlreadyPaid},
		{name: "overpaid", outstanding: "-5", requested: decPtr("10"), wantErr: ErrAlreadyPaid},
		{name: "exceeds balance", outstanding: "100", requested: decPtr("100.01"), wantErr: ErrValidation},
		{name: "zero amount", outstanding: "100", requested: decPtr("0"), wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, discount, err := QuotePayment(dec(tt.outstanding), tt.requested, ten, tt.vip)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, dec(tt.wantAmount).StringFixed(2), amount.StringFixed(2))
			assert.Equal(t, dec(tt.wantDiscount).StringFixed(2), discount.StringFixed(2))
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"b": "two", "a": "one"}}

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: a: one; b: two", err.Error())
}
