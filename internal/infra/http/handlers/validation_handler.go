package handlers

import (
	"net/http"

	"github.com/xavierca1/praxis-payments/internal/config"
)

// ValidationHandler expõe o resultado do validador de configuração.
// ?probe=true inclui o probe de rede no canal de entrega;
// ?refresh=true ignora o cache de TTL.
type ValidationHandler struct {
	Validator *config.Validator
}

func NewValidationHandler(v *config.Validator) *ValidationHandler {
	return &ValidationHandler{Validator: v}
}

func (h *ValidationHandler) Handle(w http.ResponseWriter, r *http.Request) {
	probe := r.URL.Query().Get("probe") == "true"
	refresh := r.URL.Query().Get("refresh") == "true"

	var result config.Result
	switch {
	case refresh:
		result = h.Validator.ForceRefresh(r.Context(), probe)
	case probe:
		result = h.Validator.ValidateWithProbe(r.Context())
	default:
		result = h.Validator.Validate()
	}

	writeJSON(w, http.StatusOK, result)
}
