package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/praxis-payments/internal/entity"
	"github.com/xavierca1/praxis-payments/internal/infra/integration/payvault"
)

// metadataLeadKey é o id de correlação que o checkout grava no
// payment intent.
const metadataLeadKey = "lead_id"

func (uc *HandleEventUseCase) handlePaymentSucceeded(ctx context.Context, event *payvault.Event) error {
	obj := event.Data.Object

	lead := uc.reconcileLead(ctx, event, func(leadID string) error {
		return uc.LeadRepo.MarkPaid(ctx, leadID, obj.ID, obj.Amount)
	})

	jobs := buildPaymentSucceededJobs(lead, obj.Amount, obj.Currency, uc.AdminEmail)
	uc.Notifier.EnqueueJobs(ctx, originWebhook, event.ID, jobs)
	return nil
}

func (uc *HandleEventUseCase) handlePaymentFailed(ctx context.Context, event *payvault.Event) error {
	lead := uc.reconcileLead(ctx, event, func(leadID string) error {
		return uc.LeadRepo.MarkPaymentFailed(ctx, leadID)
	})

	jobs := buildPaymentFailedJobs(lead, uc.AdminEmail)
	uc.Notifier.EnqueueJobs(ctx, originWebhook, event.ID, jobs)
	return nil
}

// reconcileLead localiza o lead pelo id de correlação do metadata e
// aplica a atualização. Metadata ausente ou lead inexistente nunca
// derruba a requisição: pula a reconciliação, loga e segue.
func (uc *HandleEventUseCase) reconcileLead(ctx context.Context, event *payvault.Event, update func(leadID string) error) *entity.Lead {
	leadID := event.Data.Object.Metadata[metadataLeadKey]
	if leadID == "" {
		uc.Logger.Warn().Str("event_id", event.ID).Str("type", event.Type).
			Msg("event carries no lead_id metadata, skipping reconciliation")
		return nil
	}

	if err := update(leadID); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			uc.Logger.Warn().Str("event_id", event.ID).Str("lead_id", leadID).
				Msg("lead not found for payment event, no-op")
		} else {
			uc.Logger.Error().Err(err).Str("event_id", event.ID).Str("lead_id", leadID).
				Msg("lead reconciliation failed")
		}
		return nil
	}

	lead, err := uc.LeadRepo.FindByID(ctx, leadID)
	if err != nil {
		uc.Logger.Warn().Err(err).Str("lead_id", leadID).Msg("lead lookup after update failed")
		return nil
	}
	return lead
}
