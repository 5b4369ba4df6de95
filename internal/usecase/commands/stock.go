package commands

import (
	"context"
	"log/slog"

	"agora/internal/domain/stock"
	"agora/internal/infra"
	"agora/internal/pkg/clock"
	"agora/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrStockOperationFailed = errs.New("stock operation failed")

// StockCommands is the write surface of the reservation ledger. Every
// successful Reserve leaves exactly one Reservation record behind;
// Commit and Release are the only two ways it disappears (plus the
// background reaper, which is a delayed Release).
type StockCommands interface {
	Reserve(ctx context.Context, productID uuid.UUID, quantity int32, orderNumber string) error
	Release(ctx context.Context, productID uuid.UUID, quantity int32) error
	Commit(ctx context.Context, orderNumber string) error
}

type stockCommandsImpl struct {
	ledger ProductLedger
	store  ReservationStore
	clock  clock.Clock
}

func NewStockCommands(ledger ProductLedger, store ReservationStore, clk clock.Clock) StockCommands {
	return &stockCommandsImpl{
		ledger: ledger,
		store:  store,
		clock:  clk,
	}
}

func (s *stockCommandsImpl) Reserve(ctx context.Context, productID uuid.UUID, quantity int32, orderNumber string) error {
	res, err := stock.NewReservation(productID, quantity, orderNumber, s.clock.Now())
	if err != nil {
		return err
	}

	if err := s.ledger.Reserve(ctx, productID, quantity); err != nil {
		switch {
		case infra.IsKind(err, infra.KindNotFound):
			return errs.Mark(err, stock.ErrProductNotFound)
		case infra.IsKind(err, infra.KindConflict):
			return errs.Mark(err, stock.ErrInsufficientStock)
		default:
			return errs.Mark(err, ErrStockOperationFailed)
		}
	}

	if err := s.store.Create(ctx, res); err != nil {
		// The decrement went through but the hold record didn't. Put
		// the quantity back so the ledger invariant survives.
		if relErr := s.ledger.Release(ctx, productID, quantity); relErr != nil {
			slog.Error("failed to compensate ledger after reservation record failure",
				"product_id", productID, "quantity", quantity, "error", relErr)
		}
		return errs.Mark(err, ErrStockOperationFailed)
	}

	return nil
}

func (s *stockCommandsImpl) Release(ctx context.Context, productID uuid.UUID, quantity int32) error {
	if quantity <= 0 {
		return stock.ErrInvalidReservation
	}
	if err := s.ledger.Release(ctx, productID, quantity); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, stock.ErrProductNotFound)
		}
		return errs.Mark(err, ErrStockOperationFailed)
	}
	return nil
}

// Commit finalizes every hold on the order as a permanent deduction.
// Quantity was already removed at reserve time, so the only mutation is
// deleting the reservation records before they can expire.
func (s *stockCommandsImpl) Commit(ctx context.Context, orderNumber string) error {
	deleted, err := s.store.DeleteByOrderNumber(ctx, orderNumber)
	if err != nil {
		return errs.Mark(err, ErrStockOperationFailed)
	}
	slog.Debug("committed stock reservations", "order_number", orderNumber, "count", deleted)
	return nil
}
