package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xavierca1/praxis-payments/internal/entity"
	"github.com/xavierca1/praxis-payments/internal/infra/integration/payvault"
)

const originWebhook = "WEBHOOK_PAYVAULT"

// HandleEventUseCase roteia um evento já verificado para o fluxo de
// reconciliação + notificação do seu tipo. Todos os handlers precisam
// ser idempotentes: o Payvault entrega at-least-once e reenvia eventos
// já ackados.
type HandleEventUseCase struct {
	LeadRepo   entity.LeadRepositoryInterface
	ClientRepo entity.ClientRepositoryInterface
	Notifier   *Notifier
	AdminEmail string
	Logger     zerolog.Logger
}

func NewHandleEventUseCase(
	leadRepo entity.LeadRepositoryInterface,
	clientRepo entity.ClientRepositoryInterface,
	notifier *Notifier,
	adminEmail string,
	logger zerolog.Logger,
) *HandleEventUseCase {
	return &HandleEventUseCase{
		LeadRepo:   leadRepo,
		ClientRepo: clientRepo,
		Notifier:   notifier,
		AdminEmail: adminEmail,
		Logger:     logger,
	}
}

// Execute devolve erro apenas para falha inesperada de topo (500).
// Falhas parciais de reconciliação/notificação são absorvidas e
// logadas, sem alterar o ack do webhook.
func (uc *HandleEventUseCase) Execute(ctx context.Context, event *payvault.Event) error {
	switch event.Type {
	case payvault.EventPaymentSucceeded:
		return uc.handlePaymentSucceeded(ctx, event)
	case payvault.EventPaymentFailed:
		return uc.handlePaymentFailed(ctx, event)
	case payvault.EventCheckoutCompleted, payvault.EventInvoicePaid:
		return uc.handlePurchaseCompleted(ctx, event)
	default:
		// Tipo desconhecido: no-op ackado.
		uc.Logger.Info().Str("event_id", event.ID).Str("type", event.Type).
			Msg("unhandled event type, acknowledging")
		return nil
	}
}
