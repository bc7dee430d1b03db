package config

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultCacheTTL = 5 * time.Minute

	payvaultKeyPrefix = "pv_"
	payvaultKeyMinLen = 20

	sendgridKeyPrefix = "SG."
	sendgridKeyMinLen = 32
	genericKeyMinLen  = 8
)

// Domínios de envio de teste que não devem ir para produção.
var placeholderDomains = []string{"example.com", "example.org", "mailtrap.io", "test.local"}

// Result nunca carrega um erro Go: toda falha vira item em Errors/Warnings.
type Result struct {
	Valid     bool      `json:"valid"`
	Errors    []string  `json:"errors"`
	Warnings  []string  `json:"warnings"`
	Probed    bool      `json:"probed"`
	CheckedAt time.Time `json:"checked_at"`
}

// DeliveryProbe confirma autorização no canal de entrega com uma
// chamada trivial (dial SMTP), sem enviar nada.
type DeliveryProbe interface {
	Probe(ctx context.Context) error
}

type Validator struct {
	cfg    *Config
	probe  DeliveryProbe
	logger zerolog.Logger
	ttl    time.Duration

	mu       sync.Mutex
	cached   *Result
	cachedAt time.Time

	now func() time.Time
}

func NewValidator(cfg *Config, probe DeliveryProbe, logger zerolog.Logger) *Validator {
	return &Validator{
		cfg:    cfg,
		probe:  probe,
		logger: logger,
		ttl:    defaultCacheTTL,
		now:    time.Now,
	}
}

// Validate é o caminho síncrono, sem chamadas de rede. Usa o cache
// dentro da janela de TTL.
func (v *Validator) Validate() Result {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cached != nil && v.now().Sub(v.cachedAt) < v.ttl {
		return *v.cached
	}
	result := v.run(context.Background(), false)
	v.store(result)
	return result
}

// ValidateWithProbe inclui o probe de rede no canal de entrega.
// Um resultado em cache só é reaproveitado se também foi probed.
func (v *Validator) ValidateWithProbe(ctx context.Context) Result {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cached != nil && v.cached.Probed && v.now().Sub(v.cachedAt) < v.ttl {
		return *v.cached
	}
	result := v.run(ctx, true)
	v.store(result)
	return result
}

// ForceRefresh ignora o cache e revalida.
func (v *Validator) ForceRefresh(ctx context.Context, withProbe bool) Result {
	v.mu.Lock()
	defer v.mu.Unlock()

	result := v.run(ctx, withProbe)
	v.store(result)
	return result
}

func (v *Validator) ClearCache() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cached = nil
}

func (v *Validator) store(r Result) {
	v.cached = &r
	v.cachedAt = v.now()
}

func (v *Validator) run(ctx context.Context, withProbe bool) Result {
	result := Result{
		Errors:    []string{},
		Warnings:  []string{},
		Probed:    withProbe,
		CheckedAt: v.now(),
	}

	v.checkSecrets(&result)
	v.checkDeliveryKey(&result)
	v.checkSenderSettings(&result)

	if withProbe {
		v.runProbe(ctx, &result)
	}

	result.Valid = len(result.Errors) == 0
	if !result.Valid {
		v.logger.Warn().Strs("errors", result.Errors).Msg("config validation failed")
	}
	return result
}

func (v *Validator) checkSecrets(result *Result) {
	if v.cfg.PayvaultAPIKey == "" {
		result.Errors = append(result.Errors, "PAYVAULT_API_KEY is not set")
	} else if !strings.HasPrefix(v.cfg.PayvaultAPIKey, payvaultKeyPrefix) {
		result.Errors = append(result.Errors, fmt.Sprintf("PAYVAULT_API_KEY must start with %q", payvaultKeyPrefix))
	} else if len(v.cfg.PayvaultAPIKey) < payvaultKeyMinLen {
		result.Errors = append(result.Errors, fmt.Sprintf("PAYVAULT_API_KEY is shorter than %d characters", payvaultKeyMinLen))
	}

	if v.cfg.PayvaultWebhookSecret == "" {
		result.Errors = append(result.Errors, "PAYVAULT_WEBHOOK_SECRET is not set")
	}
	if v.cfg.DatabaseURL == "" {
		result.Errors = append(result.Errors, "DATABASE_URL is not set")
	}

	// Recomendados, não obrigatórios.
	if v.cfg.AdminEmail == "" {
		result.Warnings = append(result.Warnings, "ADMIN_EMAIL is not set; admin notifications will be skipped")
	}
	if v.cfg.RabbitMQURL == "" {
		result.Warnings = append(result.Warnings, "RABBITMQ_URL is not set; notifications dispatch in-process")
	}
}

// checkDeliveryKey valida só o formato da credencial, sem rede.
func (v *Validator) checkDeliveryKey(result *Result) {
	if v.cfg.MailPass == "" {
		result.Errors = append(result.Errors, "MAIL_PASS (delivery channel key) is not set")
		return
	}
	if v.cfg.MailHost == "" {
		result.Errors = append(result.Errors, "MAIL_HOST is not set")
	}

	if strings.Contains(v.cfg.MailHost, "sendgrid") {
		if !strings.HasPrefix(v.cfg.MailPass, sendgridKeyPrefix) {
			result.Errors = append(result.Errors, fmt.Sprintf("MAIL_PASS must start with %q for SendGrid relays", sendgridKeyPrefix))
		} else if len(v.cfg.MailPass) < sendgridKeyMinLen {
			result.Errors = append(result.Errors, fmt.Sprintf("MAIL_PASS is shorter than %d characters", sendgridKeyMinLen))
		}
		return
	}
	if len(v.cfg.MailPass) < genericKeyMinLen {
		result.Warnings = append(result.Warnings, fmt.Sprintf("MAIL_PASS is shorter than %d characters", genericKeyMinLen))
	}
}

func (v *Validator) checkSenderSettings(result *Result) {
	if v.cfg.MailFrom == "" {
		result.Errors = append(result.Errors, "MAIL_FROM is not set")
	} else if _, err := mail.ParseAddress(v.cfg.MailFrom); err != nil {
		result.Errors = append(result.Errors, "MAIL_FROM is not a valid email address")
	} else {
		for _, domain := range placeholderDomains {
			if strings.HasSuffix(strings.ToLower(v.cfg.MailFrom), "@"+domain) {
				result.Warnings = append(result.Warnings, fmt.Sprintf("MAIL_FROM uses placeholder sending domain %q", domain))
				break
			}
		}
	}

	if strings.TrimSpace(v.cfg.MailFromName) == "" {
		result.Errors = append(result.Errors, "MAIL_FROM_NAME is empty")
	}
}

func (v *Validator) runProbe(ctx context.Context, result *Result) {
	if v.probe == nil {
		result.Warnings = append(result.Warnings, "delivery probe unavailable")
		return
	}
	if err := v.probe.Probe(ctx); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("delivery channel probe failed (%s): %v", categorizeProbeError(err), err))
	}
}

// categorizeProbeError é best-effort: o canal só devolve texto livre.
func categorizeProbeError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "535") ||
		strings.Contains(msg, "auth") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "credential"):
		return "unauthorized"
	case strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline") ||
		strings.Contains(msg, "connection") ||
		strings.Contains(msg, "dial") ||
		strings.Contains(msg, "no such host"):
		return "network"
	default:
		return "unknown"
	}
}
