package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrLeadNotFound = errors.New("lead not found")

// Lead status lifecycle. Leads are never hard-deleted.
const (
	LeadStatusLead          = "lead"
	LeadStatusPaid          = "paid"
	LeadStatusPaymentFailed = "payment_failed"
	LeadStatusConverted     = "converted"
)

type Lead struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"` // idempotency key (unique)
	Phone            string     `json:"phone,omitempty"`
	Location         string     `json:"location,omitempty"`
	Status           string     `json:"status"`
	PaymentReference string     `json:"payment_reference,omitempty"`
	AmountPaid       int64      `json:"amount_paid,omitempty"` // minor units
	CreatedAt        time.Time  `json:"created_at"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	ConvertedAt      *time.Time `json:"converted_at,omitempty"`
}

func NewLead(name, email, phone, location string) *Lead {
	return &Lead{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Location:  location,
		Status:    LeadStatusLead,
		CreatedAt: time.Now(),
	}
}

type LeadRepositoryInterface interface {
	// Upsert inserts or updates by email (the idempotency key).
	Upsert(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	MarkPaid(ctx context.Context, id, paymentReference string, amountPaid int64) error
	MarkPaymentFailed(ctx context.Context, id string) error
	MarkConvertedByEmail(ctx context.Context, email string) error
}
