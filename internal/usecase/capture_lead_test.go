package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/praxis-payments/internal/entity"
)

func newTestCaptureLeadUC(leadRepo *MockLeadRepository, producer *fakeProducer) *CaptureLeadUseCase {
	notif := NewNotifier(producer, nil, zerolog.Nop())
	return NewCaptureLeadUseCase(leadRepo, notif, "admin@praxiscoaching.io", zerolog.Nop())
}

func TestCaptureLeadNormalizesInput(t *testing.T) {
	leadRepo := new(MockLeadRepository)
	producer := &fakeProducer{}
	uc := newTestCaptureLeadUC(leadRepo, producer)

	var upserted *entity.Lead
	leadRepo.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		upserted = args.Get(1).(*entity.Lead)
	}).Return(nil)

	out, err := uc.Execute(context.Background(), CaptureLeadInput{
		Name:     "  Ana Souza ",
		Email:    " Ana.Souza@Example.COM ",
		Phone:    " +55 11 99999-0000 ",
		Location: " São Paulo ",
	})

	assert.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, upserted.ID, out.LeadID)

	assert.Equal(t, "Ana Souza", upserted.Name)
	assert.Equal(t, "ana.souza@example.com", upserted.Email)
	assert.Equal(t, "+55 11 99999-0000", upserted.Phone)
	assert.Equal(t, "São Paulo", upserted.Location)
	assert.Equal(t, entity.LeadStatusLead, upserted.Status)
}

func TestCaptureLeadEnqueuesAdminAndConfirmation(t *testing.T) {
	leadRepo := new(MockLeadRepository)
	producer := &fakeProducer{}
	uc := newTestCaptureLeadUC(leadRepo, producer)

	leadRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	_, err := uc.Execute(context.Background(), CaptureLeadInput{
		Name:  "Ana",
		Email: "ana@example.com",
	})
	assert.NoError(t, err)

	msgs := producer.published()
	assert.Len(t, msgs, 1)
	assert.Equal(t, "LEAD_CAPTURE", msgs[0].Origin)
	assert.Len(t, msgs[0].Jobs, 2)
	assert.Equal(t, entity.KindAdminNotification, msgs[0].Jobs[0].Kind)
	assert.Equal(t, "admin@praxiscoaching.io", msgs[0].Jobs[0].Recipient)
	assert.Equal(t, entity.KindUserConfirmation, msgs[0].Jobs[1].Kind)
	assert.Equal(t, "ana@example.com", msgs[0].Jobs[1].Recipient)
}

func TestCaptureLeadUpsertFailureIsTechnicalError(t *testing.T) {
	leadRepo := new(MockLeadRepository)
	producer := &fakeProducer{}
	uc := newTestCaptureLeadUC(leadRepo, producer)

	leadRepo.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	out, err := uc.Execute(context.Background(), CaptureLeadInput{
		Name:  "Ana",
		Email: "ana@example.com",
	})

	assert.Nil(t, out)
	var techErr *TechnicalError
	assert.ErrorAs(t, err, &techErr)
	assert.Equal(t, "DATABASE_ERROR", techErr.Code)

	// Nada entra na fila quando o lead não persistiu.
	assert.Empty(t, producer.published())
}
