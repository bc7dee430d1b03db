package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/xavierca1/praxis-payments/internal/infra/http/middleware"
	"github.com/xavierca1/praxis-payments/internal/infra/integration/payvault"
)

const maxWebhookBodySize = 1 << 20 // 1 MiB

// EventProcessor é o roteador de eventos por trás do webhook.
type EventProcessor interface {
	Execute(ctx context.Context, event *payvault.Event) error
}

type WebhookHandler struct {
	Secret    string
	Processor EventProcessor
	Logger    zerolog.Logger
}

func NewWebhookHandler(secret string, processor EventProcessor, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		Secret:    secret,
		Processor: processor,
		Logger:    logger,
	}
}

// Handle verifica a assinatura sobre os bytes brutos ANTES de qualquer
// parse e responde assim que a reconciliação termina — o envio de
// notificações acontece fora do caminho de resposta.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable_body"})
		return
	}

	signature := r.Header.Get(payvault.SignatureHeader)
	if !payvault.VerifySignature(body, signature, h.Secret) {
		// Rejeita sem nenhum efeito colateral: nada foi parseado nem
		// persistido até aqui.
		h.Logger.Warn().Str("remote", r.RemoteAddr).Msg("webhook signature verification failed")
		middleware.RecordWebhookEvent("unknown", "rejected")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_signature"})
		return
	}

	event, err := payvault.ParseEvent(body)
	if err != nil {
		h.Logger.Warn().Err(err).Msg("webhook payload is not valid JSON")
		middleware.RecordWebhookEvent("unknown", "malformed")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_payload"})
		return
	}

	if err := h.Processor.Execute(r.Context(), event); err != nil {
		h.Logger.Error().Err(err).Str("event_id", event.ID).Str("type", event.Type).
			Msg("webhook processing failed")
		middleware.RecordWebhookEvent(event.Type, "error")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}

	middleware.RecordWebhookEvent(event.Type, "processed")
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
