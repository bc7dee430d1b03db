package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/praxis-payments/internal/infra/integration/payvault"
)

type fakeProcessor struct {
	mu     sync.Mutex
	events []*payvault.Event
	err    error
}

func (p *fakeProcessor) Execute(ctx context.Context, event *payvault.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakeProcessor) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

const webhookSecret = "whsec_test_0123456789"

func signedWebhookRequest(body []byte, secret string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(payvault.SignatureHeader, payvault.ComputeSignature(body, secret))
	return req
}

func TestWebhookValidSignatureProcessesEvent(t *testing.T) {
	processor := &fakeProcessor{}
	h := NewWebhookHandler(webhookSecret, processor, zerolog.Nop())

	body := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)
	rec := httptest.NewRecorder()
	h.Handle(rec, signedWebhookRequest(body, webhookSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	assert.Equal(t, 1, processor.callCount())
	assert.Equal(t, "evt_1", processor.events[0].ID)
}

func TestWebhookTamperedBodyIsRejectedWithoutSideEffects(t *testing.T) {
	processor := &fakeProcessor{}
	h := NewWebhookHandler(webhookSecret, processor, zerolog.Nop())

	body := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	req := signedWebhookRequest(body, webhookSecret)
	// Assinatura foi calculada sobre o corpo original; troca o corpo.
	tampered := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"amount_total":1}}}`)
	req.Body = httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(tampered)).Body

	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_signature")
	assert.Equal(t, 0, processor.callCount(), "rejected webhook must never reach the processor")
}

func TestWebhookMissingSignatureIsRejected(t *testing.T) {
	processor := &fakeProcessor{}
	h := NewWebhookHandler(webhookSecret, processor, zerolog.Nop())

	body := []byte(`{"id":"evt_1","type":"invoice.paid"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))

	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, processor.callCount())
}

func TestWebhookMalformedJSONAfterValidSignature(t *testing.T) {
	processor := &fakeProcessor{}
	h := NewWebhookHandler(webhookSecret, processor, zerolog.Nop())

	body := []byte(`{not-json`)
	rec := httptest.NewRecorder()
	h.Handle(rec, signedWebhookRequest(body, webhookSecret))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_payload")
	assert.Equal(t, 0, processor.callCount())
}

func TestWebhookProcessorErrorReturns500(t *testing.T) {
	processor := &fakeProcessor{err: errors.New("database unavailable")}
	h := NewWebhookHandler(webhookSecret, processor, zerolog.Nop())

	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`)
	rec := httptest.NewRecorder()
	h.Handle(rec, signedWebhookRequest(body, webhookSecret))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}
