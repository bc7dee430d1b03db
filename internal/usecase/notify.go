package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xavierca1/praxis-payments/internal/entity"
	"github.com/xavierca1/praxis-payments/internal/infra/queue"
	"github.com/xavierca1/praxis-payments/internal/notifier"
)

// Notifier enfileira jobs para o worker drenar. O caminho crítico da
// requisição termina aqui: tudo depois (limite, envio, log) acontece
// fora do ciclo de vida do handler. Falhas são engolidas e logadas —
// "ack significa recebido", não "processado até o fim".
type Notifier struct {
	Producer   queue.DispatchProducerInterface
	Dispatcher notifier.JobDispatcher
	Logger     zerolog.Logger
}

func NewNotifier(producer queue.DispatchProducerInterface, dispatcher notifier.JobDispatcher, logger zerolog.Logger) *Notifier {
	return &Notifier{
		Producer:   producer,
		Dispatcher: dispatcher,
		Logger:     logger,
	}
}

// EnqueueJobs nunca retorna erro. Sem broker (ou com broker fora do
// ar) degrada para dispatch em goroutine destacada — ainda fora do
// caminho de resposta do webhook.
func (n *Notifier) EnqueueJobs(ctx context.Context, origin, eventID string, jobs []entity.NotificationJob) {
	if len(jobs) == 0 {
		return
	}

	if n.Producer != nil {
		msg := queue.DispatchMessage{Origin: origin, EventID: eventID, Jobs: jobs}
		if err := n.Producer.PublishDispatch(ctx, msg); err == nil {
			return
		} else {
			n.Logger.Warn().Err(err).Str("origin", origin).
				Msg("⚠️ queue publish failed, dispatching in-process")
		}
	}

	if n.Dispatcher == nil {
		n.Logger.Error().Str("origin", origin).Int("jobs", len(jobs)).
			Msg("no dispatcher available, notifications dropped")
		return
	}

	// context.Background() de propósito: o dispatch sobrevive ao
	// retorno do handler.
	go n.Dispatcher.Dispatch(context.Background(), jobs)
}
