package entity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicateSession sinaliza redelivery de um evento já processado
// (violação de unicidade em session_reference). Tratado como sucesso.
var ErrDuplicateSession = errors.New("session reference já processada")

type Client struct {
	ID               string          `json:"id"`
	SessionReference string          `json:"session_reference"` // checkout session ou invoice id (unique)
	UserID           string          `json:"user_id,omitempty"`
	Email            string          `json:"email,omitempty"`
	Name             string          `json:"name,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	Location         string          `json:"location,omitempty"`
	TierName         string          `json:"tier_name"`
	AmountTotal      int64           `json:"amount_total"` // em centavos
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	RawPayload       json.RawMessage `json:"raw_payload,omitempty"` // cópia de auditoria do evento
	CreatedAt        time.Time       `json:"created_at"`
}

func NewClient(sessionReference string) *Client {
	return &Client{
		ID:               uuid.New().String(),
		SessionReference: sessionReference,
		TierName:         "Unknown",
		Currency:         "USD",
		Status:           "active",
		CreatedAt:        time.Now(),
	}
}

type ClientRepositoryInterface interface {
	// Create retorna ErrDuplicateSession quando session_reference já existe.
	Create(ctx context.Context, client *Client) error
}
