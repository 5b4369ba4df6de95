package bootstrap

import (
	"context"

	"agora/internal/infra/events"
	"agora/internal/pkg/config"
	"agora/internal/usecase/commands"

	"go.uber.org/fx"
)

var RabbitMQModule = fx.Module("rabbitmq",
	fx.Provide(
		fx.Annotate(
			NewEventPublisher,
			fx.As(new(commands.EventPublisher)),
		),
	),
)

func NewEventPublisher(lc fx.Lifecycle, cfg config.Config) (*events.RabbitPublisher, error) {
	publisher, cleanup, err := events.NewRabbitPublisher(cfg.RabbitMQ)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return publisher, nil
}
