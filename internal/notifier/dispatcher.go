package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/praxis-payments/internal/entity"
)

// deliveryTimeout envolve toda chamada ao canal; estourar o prazo é
// uma falha por si só (NETWORK_ERROR).
const deliveryTimeout = 30 * time.Second

// DeliveryChannel é o contrato do canal externo de envio.
// Erros chegam como texto livre; ver Classify.
type DeliveryChannel interface {
	Send(ctx context.Context, from, to, subject, body string) (messageID string, err error)
}

// JobDispatcher é o que o worker da fila e os usecases enxergam.
type JobDispatcher interface {
	Dispatch(ctx context.Context, jobs []entity.NotificationJob) []JobResult
}

type JobResult struct {
	Job       entity.NotificationJob
	Success   bool
	Skipped   bool
	MessageID string
	ErrorKind ErrorKind
	Err       error
}

type Dispatcher struct {
	channel DeliveryChannel
	monitor *Monitor
	from    string
	logger  zerolog.Logger
	timeout time.Duration
}

func NewDispatcher(channel DeliveryChannel, monitor *Monitor, from string, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		channel: channel,
		monitor: monitor,
		from:    from,
		logger:  logger,
		timeout: deliveryTimeout,
	}
}

// Dispatch envia todos os jobs concorrentemente com join all-settled:
// cada resultado é capturado por índice e a falha de um job nunca
// cancela nem bloqueia os irmãos. Nenhum erro é propagado.
func (d *Dispatcher) Dispatch(ctx context.Context, jobs []entity.NotificationJob) []JobResult {
	results := make([]JobResult, len(jobs))

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job entity.NotificationJob) {
			defer wg.Done()
			results[i] = d.send(ctx, job)
		}(i, job)
	}
	wg.Wait()

	return results
}

func (d *Dispatcher) send(ctx context.Context, job entity.NotificationJob) JobResult {
	result := JobResult{Job: job}

	job.Recipient = NormalizeEmail(job.Recipient)
	if err := validateJob(job); err != nil {
		// Campos faltando/inválidos: pula em silêncio, só loga.
		d.logger.Warn().Err(err).Str("kind", string(job.Kind)).Msg("notification job skipped")
		result.Skipped = true
		result.ErrorKind = ErrorKindTemplate
		result.Err = err
		d.monitor.LogAttempt(Attempt{
			Type:      job.Kind,
			Recipient: job.Recipient,
			Subject:   job.Subject,
			Success:   false,
			Error:     err.Error(),
			ErrorKind: ErrorKindTemplate,
		})
		return result
	}

	// Limite de volume é verificado ANTES de tocar o canal; negado é
	// erro de configuração, não de envio.
	if decision := d.monitor.CanSend(); !decision.Allowed {
		err := fmt.Errorf("send denied: %s", decision.Reason)
		d.logger.Error().Str("reason", decision.Reason).Str("kind", string(job.Kind)).
			Msg("volume limit denied send")
		result.ErrorKind = ErrorKindConfiguration
		result.Err = err
		d.monitor.LogAttempt(Attempt{
			Type:      job.Kind,
			Recipient: job.Recipient,
			Subject:   job.Subject,
			Success:   false,
			Error:     err.Error(),
			ErrorKind: ErrorKindConfiguration,
			Denied:    true,
		})
		return result
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	messageID, err := d.channel.Send(sendCtx, d.from, job.Recipient, job.Subject, job.Body)
	if err != nil {
		kind := Classify(err)
		d.logger.Error().Err(err).
			Str("kind", string(job.Kind)).
			Str("recipient", job.Recipient).
			Str("error_kind", string(kind)).
			Msg("notification send failed")
		result.ErrorKind = kind
		result.Err = err
		d.monitor.LogAttempt(Attempt{
			Type:      job.Kind,
			Recipient: job.Recipient,
			Subject:   job.Subject,
			Success:   false,
			Error:     err.Error(),
			ErrorKind: kind,
		})
		return result
	}

	d.logger.Info().
		Str("kind", string(job.Kind)).
		Str("recipient", job.Recipient).
		Str("message_id", messageID).
		Msg("notification sent")
	result.Success = true
	result.MessageID = messageID
	d.monitor.LogAttempt(Attempt{
		Type:              job.Kind,
		Recipient:         job.Recipient,
		Subject:           job.Subject,
		Success:           true,
		ProviderMessageID: messageID,
	})
	return result
}

func validateJob(job entity.NotificationJob) error {
	if job.Recipient == "" {
		return fmt.Errorf("recipient is empty")
	}
	if !IsValidEmail(job.Recipient) {
		return fmt.Errorf("recipient %q is not a valid email", job.Recipient)
	}
	if job.Subject == "" {
		return fmt.Errorf("subject is empty")
	}
	if job.Body == "" {
		return fmt.Errorf("body is empty")
	}
	return nil
}
