package queue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/xavierca1/praxis-payments/internal/infra/http/middleware"
	"github.com/xavierca1/praxis-payments/internal/notifier"
)

// Worker drena a fila de notificações e executa o fan-out all-settled
// do dispatcher. Falha de envio é logada uma única vez e a mensagem é
// Ackada mesmo assim: não existe retry automático neste nível.
type Worker struct {
	Channel    *amqp.Channel
	Dispatcher notifier.JobDispatcher
	Logger     zerolog.Logger
}

func NewWorker(ch *amqp.Channel, dispatcher notifier.JobDispatcher, logger zerolog.Logger) *Worker {
	return &Worker{
		Channel:    ch,
		Dispatcher: dispatcher,
		Logger:     logger,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual é mais seguro)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		w.Logger.Fatal().Err(err).Msg("❌ rabbitmq consumer registration failed")
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var msg DispatchMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				w.Logger.Error().Err(err).Msg("❌ [WORKER] invalid dispatch message, sending to DLQ")
				// Payload podre. Rejeita sem requeue para não travar a fila.
				d.Nack(false, false)
				continue
			}

			w.Logger.Info().
				Str("origin", msg.Origin).
				Str("event_id", msg.EventID).
				Int("jobs", len(msg.Jobs)).
				Msg("📥 [WORKER] dispatch batch received")

			results := w.Dispatcher.Dispatch(context.Background(), msg.Jobs)
			for _, res := range results {
				status := "sent"
				if res.Skipped {
					status = "skipped"
				} else if !res.Success {
					status = "failed"
				}
				middleware.RecordEmail(string(res.Job.Kind), status)
			}

			// Ack sempre: "processado" significa "cada job teve seu
			// resultado registrado", não "todos entregues".
			d.Ack(false)
		}
	}()

	w.Logger.Info().Str("queue", queueName).Msg(" [*] notification worker running")
	<-forever
}
