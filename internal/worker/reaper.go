package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"agora/internal/pkg/clock"
	"agora/internal/usecase/commands"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reaperReleasedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_reaper_released_reservations_total",
		Help: "Reservations released back to stock by the background reaper",
	})
	reaperFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_reaper_failures_total",
		Help: "Individual reservation cleanups that failed and were skipped",
	})
)

// ReservationReaper periodically releases holds that outlived their
// TTL, reclaiming stock from crashed or abandoned checkouts. It uses
// the same ledger and store interfaces as the request path.
type ReservationReaper struct {
	ledger   commands.ProductLedger
	store    commands.ReservationStore
	clock    clock.Clock
	interval time.Duration
	ttl      time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func NewReservationReaper(
	ledger commands.ProductLedger,
	store commands.ReservationStore,
	clk clock.Clock,
	interval, ttl time.Duration,
) *ReservationReaper {
	return &ReservationReaper{
		ledger:   ledger,
		store:    store,
		clock:    clk,
		interval: interval,
		ttl:      ttl,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. It returns immediately; sweeps run
// until Stop is called.
func (r *ReservationReaper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	go func() {
		defer close(r.done)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		slog.Info("reservation reaper started", "interval", r.interval, "ttl", r.ttl)
		for {
			select {
			case <-ctx.Done():
				slog.Info("reservation reaper stopped")
				return
			case <-ticker.C:
				r.Sweep(ctx)
			}
		}
	}()
}

func (r *ReservationReaper) Stop() {
	r.once.Do(func() {
		if r.cancel != nil {
			r.cancel()
			<-r.done
		}
	})
}

// Sweep releases and deletes every reservation older than the TTL.
// Each record is fault-isolated: a failure on one is logged and
// skipped so it never blocks cleanup of the rest of the batch.
func (r *ReservationReaper) Sweep(ctx context.Context) {
	cutoff := r.clock.Now().Add(-r.ttl)

	expired, err := r.store.FindOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("reaper failed to query expired reservations", "error", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	slog.Info("reaper found expired reservations", "count", len(expired))
	for _, res := range expired {
		if err := r.ledger.Release(ctx, res.ProductID(), res.Quantity()); err != nil {
			reaperFailuresTotal.Inc()
			slog.Error("reaper failed to release reservation",
				"reservation_id", res.ID(), "product_id", res.ProductID(),
				"order_number", res.OrderNumber(), "error", err)
			continue
		}
		if err := r.store.Delete(ctx, res.ID()); err != nil {
			reaperFailuresTotal.Inc()
			slog.Error("reaper failed to delete reservation record",
				"reservation_id", res.ID(), "error", err)
			continue
		}
		reaperReleasedTotal.Inc()
		slog.Info("reaper released expired reservation",
			"reservation_id", res.ID(), "product_id", res.ProductID(),
			"quantity", res.Quantity(), "order_number", res.OrderNumber())
	}
}
