package bootstrap

import (
	"log/slog"

	"agora/internal/handler/middleware"
	"agora/internal/pkg/config"

	"go.uber.org/fx"
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		NewLogger,
	),
)

// NewLogger hands out the same slog logger the request logging
// middleware writes through, so app and access logs share one sink.
func NewLogger(cfg config.Config) *slog.Logger {
	return middleware.NewLogger(cfg.Log).GetSlogLogger()
}
