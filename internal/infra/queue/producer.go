package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/praxis-payments/internal/entity"
)

// DispatchMessage é um lote de jobs de um mesmo gatilho. O handler web
// publica e responde; o worker drena e executa — o envio fica
// explicitamente desacoplado do ciclo de vida da requisição.
type DispatchMessage struct {
	Origin  string                   `json:"origin"` // WEBHOOK_PAYVAULT, LEAD_CAPTURE
	EventID string                   `json:"event_id,omitempty"`
	Jobs    []entity.NotificationJob `json:"jobs"`
}

type DispatchProducerInterface interface {
	PublishDispatch(ctx context.Context, msg DispatchMessage) error
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishDispatch(ctx context.Context, msg DispatchMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("dispatch message marshal failed: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("rabbitmq publish failed: %w", err)
	}

	return nil
}
