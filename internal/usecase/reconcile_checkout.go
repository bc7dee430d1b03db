package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/praxis-payments/internal/entity"
	"github.com/xavierca1/praxis-payments/internal/infra/integration/payvault"
	"github.com/xavierca1/praxis-payments/internal/notifier"
)

// handlePurchaseCompleted cobre checkout.session.completed e
// invoice.paid: ambos materializam um Client a partir do evento.
func (uc *HandleEventUseCase) handlePurchaseCompleted(ctx context.Context, event *payvault.Event) error {
	client := buildClientFromEvent(event)

	if err := uc.ClientRepo.Create(ctx, client); err != nil {
		if errors.Is(err, entity.ErrDuplicateSession) {
			// Redelivery de um evento já processado: sucesso, e sem
			// repetir as notificações.
			uc.Logger.Info().Str("event_id", event.ID).
				Str("session_reference", client.SessionReference).
				Msg("duplicate session reference, event already processed")
			return nil
		}
		// Qualquer outro erro de insert é logado como falha mas não
		// aborta o handler.
		uc.Logger.Error().Err(err).Str("event_id", event.ID).
			Str("session_reference", client.SessionReference).
			Msg("client insert failed")
	} else if client.Email != "" {
		// Best-effort: marca o lead correspondente como convertido.
		if err := uc.LeadRepo.MarkConvertedByEmail(ctx, client.Email); err != nil {
			uc.Logger.Warn().Err(err).Str("email", client.Email).
				Msg("lead conversion update failed")
		}
	}

	jobs := buildPurchaseJobs(client, uc.AdminEmail)
	uc.Notifier.EnqueueJobs(ctx, originWebhook, event.ID, jobs)
	return nil
}

func buildClientFromEvent(event *payvault.Event) *entity.Client {
	obj := event.Data.Object

	client := entity.NewClient(obj.ID)
	client.UserID = obj.Metadata["user_id"]
	client.TierName = resolveTierName(obj.LineItemData())
	client.Currency = notifier.NormalizeCurrency(obj.Currency)
	client.RawPayload = event.Raw

	// checkout sessions carregam amount_total; invoices, amount_paid.
	client.AmountTotal = obj.AmountTotal
	if client.AmountTotal == 0 {
		client.AmountTotal = obj.AmountPaid
	}

	if details := obj.CustomerDetails; details != nil {
		client.Email = notifier.NormalizeEmail(details.Email)
		client.Name = details.Name
		client.Phone = details.Phone
		client.Location = details.Address.DisplayString()
	}
	if client.Email == "" {
		client.Email = notifier.NormalizeEmail(obj.CustomerEmail)
	}
	if client.Name == "" {
		client.Name = obj.CustomerName
	}

	return client
}

// resolveTierName usa o produto do primeiro line item. Produto deletado
// ou não resolvido vira "Unknown".
func resolveTierName(items []payvault.LineItem) string {
	if len(items) == 0 {
		return "Unknown"
	}
	product := items[0].Product
	if product == nil || product.Deleted || product.Name == "" {
		return "Unknown"
	}
	return product.Name
}
