package usecase

import (
	"context"

	"travel-agency/internal/data/entity"
	"travel-agency/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ChargeRequest struct {
	BookingID      uuid.UUID
	UserID         uuid.UUID
	Amount         decimal.Decimal
	Currency       string
	Method         entity.PaymentMethod
	CardLastDigits *string
}

type ChargeResult struct {
	TransactionID string
	Status        entity.PaymentStatus
}

// PaymentGateway charges the payer. Reconciliation only sees the resulting
// payment record, so a real processor can replace the stub without touching it.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// StubGateway accepts every charge immediately.
type StubGateway struct{}

func (StubGateway) Charge(_ context.Context, _ ChargeRequest) (*ChargeResult, error) {
	return &ChargeResult{
		TransactionID: utils.GenerateTransactionID(),
		Status:        entity.PaymentStatusCompleted,
	}, nil
}
