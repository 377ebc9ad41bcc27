package request

type RecordPaymentRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
	// Amount is optional; when omitted the remaining balance is charged.
	Amount         *string `json:"amount,omitempty" validate:"omitempty,money"`
	PaymentMethod  string  `json:"payment_method" validate:"required,oneof=credit_card debit_card paypal bank_transfer"`
	CardLastDigits *string `json:"card_last_digits,omitempty" validate:"omitempty,len=4,numeric"`
	BillingAddress *string `json:"billing_address,omitempty" validate:"omitempty,max=500"`
}
