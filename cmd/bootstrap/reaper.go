package bootstrap

import (
	"context"

	"agora/internal/pkg/clock"
	"agora/internal/pkg/config"
	"agora/internal/usecase/commands"
	"agora/internal/worker"

	"go.uber.org/fx"
)

var ReaperModule = fx.Module("reaper",
	fx.Provide(
		NewReaper,
	),
	fx.Invoke(registerReaper),
)

func NewReaper(cfg config.Config, ledger commands.ProductLedger, store commands.ReservationStore, clk clock.Clock) *worker.ReservationReaper {
	return worker.NewReservationReaper(ledger, store, clk, cfg.Stock.ReaperInterval, cfg.Stock.ReservationTTL)
}

// The reaper stops before the DB pool closes; fx unwinds hooks in
// reverse registration order.
func registerReaper(lc fx.Lifecycle, reaper *worker.ReservationReaper) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			reaper.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			reaper.Stop()
			return nil
		},
	})
}
