package events

import (
	"context"
	"encoding/json"
	"fmt"

	"agora/internal/pkg/config"
	"agora/internal/pkg/errs"
	"agora/internal/usecase/commands"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"
)

var publishedEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "agora_order_events_published_total",
	Help: "Order lifecycle events published to the broker, by event type",
}, []string{"type"})

// RabbitPublisher fans order lifecycle events out over a durable topic
// exchange. Routing key is the event type, so consumers can bind to
// order.created, order.#, and so on.
type RabbitPublisher struct {
	channel  *amqp.Channel
	exchange string
}

func NewRabbitPublisher(cfg config.RabbitMQConfig) (*RabbitPublisher, func(), error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	cleanup := func() {
		_ = ch.Close()
		_ = conn.Close()
	}
	return &RabbitPublisher{channel: ch, exchange: cfg.Exchange}, cleanup, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, evt commands.OrderEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return errs.Wrap(err, "failed to encode order event")
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		evt.Type, // routing key
		false,    // mandatory
		false,    // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
	if err != nil {
		return errs.Wrap(err, "failed to publish order event")
	}
	publishedEventsTotal.WithLabelValues(evt.Type).Inc()
	return nil
}
