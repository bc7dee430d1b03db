package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/xavierca1/praxis-payments/internal/entity"
	"github.com/xavierca1/praxis-payments/internal/notifier"
)

const originLeadCapture = "LEAD_CAPTURE"

type CaptureLeadUseCase struct {
	LeadRepo   entity.LeadRepositoryInterface
	Notifier   *Notifier
	AdminEmail string
	Logger     zerolog.Logger
}

func NewCaptureLeadUseCase(
	leadRepo entity.LeadRepositoryInterface,
	notif *Notifier,
	adminEmail string,
	logger zerolog.Logger,
) *CaptureLeadUseCase {
	return &CaptureLeadUseCase{
		LeadRepo:   leadRepo,
		Notifier:   notif,
		AdminEmail: adminEmail,
		Logger:     logger,
	}
}

// Execute faz o upsert pelo email normalizado e dispara as
// notificações pelo mesmo caminho do webhook. O resultado do envio é
// invisível para o usuário final.
func (uc *CaptureLeadUseCase) Execute(ctx context.Context, input CaptureLeadInput) (*CaptureLeadOutput, error) {
	lead := entity.NewLead(
		strings.TrimSpace(input.Name),
		notifier.NormalizeEmail(input.Email),
		strings.TrimSpace(input.Phone),
		strings.TrimSpace(input.Location),
	)

	if err := uc.LeadRepo.Upsert(ctx, lead); err != nil {
		uc.Logger.Error().Err(err).Str("email", lead.Email).Msg("lead upsert failed")
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "failed to persist lead",
		}
	}

	uc.Notifier.EnqueueJobs(ctx, originLeadCapture, lead.ID, buildLeadJobs(lead, uc.AdminEmail))

	return &CaptureLeadOutput{
		Success: true,
		LeadID:  lead.ID,
	}, nil
}
