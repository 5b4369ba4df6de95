package commands

import (
	"context"
	"log/slog"

	"agora/internal/domain/cart"
	"agora/internal/domain/order"
	"agora/internal/domain/stock"
	"agora/internal/infra"
	"agora/internal/pkg/clock"
	"agora/internal/pkg/errs"
	"agora/internal/usecase/queries"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound    = errs.New("cart not found")
	ErrOrderNotFound   = errs.New("order not found")
	ErrUnauthorized    = errs.New("caller is not authorized for this order")
	ErrIllegalState    = errs.New("operation not permitted in current order status")
	ErrVersionConflict = errs.New("order was modified concurrently")

	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

type CheckoutParams struct {
	PaymentMethod order.PaymentMethod
	Address       order.Address
}

// OrderCommands drives the order lifecycle state machine and, through
// StockCommands, the reservation ledger behind it.
//
// Confirm and Redo return (nil, nil) when the caller is not the owner
// or the order is in the wrong status: a negative result, not an error.
type OrderCommands interface {
	Checkout(ctx context.Context, userID uuid.UUID, p CheckoutParams) (*queries.OrderView, error)
	Confirm(ctx context.Context, orderNumber string, userID uuid.UUID) (*queries.OrderView, error)
	UpdateStatus(ctx context.Context, orderNumber string, sellerID uuid.UUID, next order.Status) (*queries.OrderView, error)
	Cancel(ctx context.Context, orderNumber string, userID uuid.UUID) error
	Redo(ctx context.Context, orderNumber string, userID uuid.UUID) (*queries.OrderView, error)
}

type orderCommandsImpl struct {
	orders    OrderRepository
	stock     StockCommands
	carts     CartStore
	catalog   ProductCatalog
	publisher EventPublisher
	views     queries.OrderQueries
	clock     clock.Clock
}

func NewOrderCommands(
	orders OrderRepository,
	stock StockCommands,
	carts CartStore,
	catalog ProductCatalog,
	publisher EventPublisher,
	views queries.OrderQueries,
	clk clock.Clock,
) OrderCommands {
	return &orderCommandsImpl{
		orders:    orders,
		stock:     stock,
		carts:     carts,
		catalog:   catalog,
		publisher: publisher,
		views:     views,
		clock:     clk,
	}
}

func (c *orderCommandsImpl) Checkout(ctx context.Context, userID uuid.UUID, p CheckoutParams) (*queries.OrderView, error) {
	userCart, err := c.carts.Get(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrCartNotFound)
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if userCart.IsEmpty() {
		return nil, cart.ErrEmptyCart
	}

	items, err := c.snapshotItems(ctx, userCart.Items)
	if err != nil {
		return nil, err
	}

	newOrder, err := order.NewOrder(c.clock, userID, items, p.PaymentMethod, p.Address)
	if err != nil {
		return nil, err
	}

	if err := c.reserveAll(ctx, newOrder); err != nil {
		return nil, err
	}

	if err := c.orders.Create(ctx, newOrder); err != nil {
		c.compensateReservations(ctx, newOrder, len(newOrder.Items()))
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	// Pay-on-delivery orders are born CONFIRMED: finalize the holds now
	// so the reaper never sees them.
	if newOrder.Status() == order.StatusConfirmed {
		if err := c.stock.Commit(ctx, newOrder.OrderNumber()); err != nil {
			slog.Error("failed to commit stock for auto-confirmed order",
				"order_number", newOrder.OrderNumber(), "error", err)
		}
	}

	if err := c.carts.Clear(ctx, userID); err != nil {
		slog.Warn("failed to clear cart after checkout", "user_id", userID, "error", err)
	}

	c.publish(ctx, OrderEvent{
		Type:        EventOrderCreated,
		OrderNumber: newOrder.OrderNumber(),
		UserID:      userID,
		Status:      newOrder.Status().String(),
		TotalCents:  newOrder.Total().Cents(),
		OccurredAt:  c.clock.Now(),
	})

	slog.Info("order created",
		"order_number", newOrder.OrderNumber(), "user_id", userID,
		"status", newOrder.Status().String(), "items", len(newOrder.Items()))

	return c.views.GetByNumberSystem(ctx, newOrder.OrderNumber())
}

func (c *orderCommandsImpl) Confirm(ctx context.Context, orderNumber string, userID uuid.UUID) (*queries.OrderView, error) {
	o, err := c.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !o.IsOwnedBy(userID) || o.Status() != order.StatusPending {
		return nil, nil
	}

	now := c.clock.Now()
	expected := o.Version()
	if err := o.Confirm(now); err != nil {
		return nil, nil
	}
	if err := c.orders.UpdateStatus(ctx, orderNumber, o.Status(), expected, now); err != nil {
		return nil, c.mapUpdateErr(err)
	}

	if err := c.stock.Commit(ctx, orderNumber); err != nil {
		slog.Error("failed to commit stock on confirm", "order_number", orderNumber, "error", err)
	}

	c.publish(ctx, OrderEvent{
		Type:        EventOrderConfirmed,
		OrderNumber: orderNumber,
		UserID:      userID,
		Status:      order.StatusConfirmed.String(),
		OccurredAt:  now,
	})

	slog.Info("buyer confirmed order", "order_number", orderNumber, "user_id", userID)
	return c.views.GetByNumberSystem(ctx, orderNumber)
}

func (c *orderCommandsImpl) UpdateStatus(ctx context.Context, orderNumber string, sellerID uuid.UUID, next order.Status) (*queries.OrderView, error) {
	o, err := c.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrOrderNotFound)
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !o.SellerOwnsAllItems(sellerID) {
		return nil, ErrUnauthorized
	}
	// Cancellation is the buyer's operation and carries stock side
	// effects (hold cleanup, quantity release); the seller path only
	// ever moves the order forward.
	if next == order.StatusCancelled {
		return nil, errs.Mark(order.ErrIllegalTransition, ErrIllegalState)
	}

	prev := o.Status()
	now := c.clock.Now()
	expected := o.Version()
	if err := o.TransitionTo(next, now); err != nil {
		return nil, errs.Mark(err, ErrIllegalState)
	}
	if err := c.orders.UpdateStatus(ctx, orderNumber, o.Status(), expected, now); err != nil {
		return nil, c.mapUpdateErr(err)
	}

	// Leaving PENDING is the one transition that finalizes the holds.
	if prev == order.StatusPending && next == order.StatusConfirmed {
		if err := c.stock.Commit(ctx, orderNumber); err != nil {
			slog.Error("failed to commit stock on seller confirm", "order_number", orderNumber, "error", err)
		}
	}

	c.publish(ctx, OrderEvent{
		Type:        EventOrderStatusChanged,
		OrderNumber: orderNumber,
		UserID:      o.UserID(),
		Status:      next.String(),
		OccurredAt:  now,
	})

	slog.Info("seller updated order status",
		"order_number", orderNumber, "seller_id", sellerID, "from", prev.String(), "to", next.String())
	return c.views.GetByNumberSystem(ctx, orderNumber)
}

func (c *orderCommandsImpl) Cancel(ctx context.Context, orderNumber string, userID uuid.UUID) error {
	o, err := c.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrOrderNotFound)
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !o.IsOwnedBy(userID) {
		return ErrUnauthorized
	}

	now := c.clock.Now()
	expected := o.Version()
	if err := o.Cancel(now); err != nil {
		return errs.Mark(err, ErrIllegalState)
	}
	if err := c.orders.UpdateStatus(ctx, orderNumber, order.StatusCancelled, expected, now); err != nil {
		return c.mapUpdateErr(err)
	}

	// Delete the hold records before crediting quantity back, so the
	// reaper cannot release the same holds a second time.
	if err := c.stock.Commit(ctx, orderNumber); err != nil {
		slog.Error("failed to delete reservations on cancel", "order_number", orderNumber, "error", err)
	}
	for _, it := range o.Items() {
		if err := c.stock.Release(ctx, it.ProductID, it.Quantity); err != nil {
			slog.Error("failed to release stock for cancelled order",
				"order_number", orderNumber, "product_id", it.ProductID, "quantity", it.Quantity, "error", err)
			continue
		}
		slog.Info("released stock for cancelled order",
			"order_number", orderNumber, "product_id", it.ProductID, "quantity", it.Quantity)
	}

	c.publish(ctx, OrderEvent{
		Type:        EventOrderCancelled,
		OrderNumber: orderNumber,
		UserID:      userID,
		Status:      order.StatusCancelled.String(),
		OccurredAt:  now,
	})

	return nil
}

func (c *orderCommandsImpl) Redo(ctx context.Context, orderNumber string, userID uuid.UUID) (*queries.OrderView, error) {
	o, err := c.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !o.IsOwnedBy(userID) || o.Status() != order.StatusCancelled {
		return nil, nil
	}

	// Stage a fresh cart from the old item list; checkout re-validates
	// every line against live catalog price and availability.
	items := make([]cart.CartItem, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, cart.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if err := c.carts.Save(ctx, cart.New(userID, items)); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	return c.Checkout(ctx, userID, CheckoutParams{
		PaymentMethod: o.PaymentMethod(),
		Address:       o.Address(),
	})
}

func (c *orderCommandsImpl) snapshotItems(ctx context.Context, cartItems []cart.CartItem) ([]order.Item, error) {
	items := make([]order.Item, 0, len(cartItems))
	for _, ci := range cartItems {
		product, err := c.catalog.FindByID(ctx, ci.ProductID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, errs.Mark(err, stock.ErrProductNotFound)
			}
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		imageURL := ""
		if len(product.Images) > 0 {
			imageURL = product.Images[0]
		}

		item, err := order.NewItem(product.ID, product.Name, product.SellerID,
			order.NewMoney(product.Price), ci.Quantity, imageURL)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// reserveAll holds stock for every line of the order. On any failure
// the already granted holds are walked back before the error surfaces,
// so a partially reserved order never leaks quantity.
func (c *orderCommandsImpl) reserveAll(ctx context.Context, o *order.Order) error {
	for i, it := range o.Items() {
		if err := c.stock.Reserve(ctx, it.ProductID, it.Quantity, o.OrderNumber()); err != nil {
			c.compensateReservations(ctx, o, i)
			return err
		}
	}
	return nil
}

func (c *orderCommandsImpl) compensateReservations(ctx context.Context, o *order.Order, reserved int) {
	if reserved == 0 {
		return
	}
	if err := c.stock.Commit(ctx, o.OrderNumber()); err != nil {
		slog.Error("failed to delete reservations during checkout compensation",
			"order_number", o.OrderNumber(), "error", err)
	}
	for _, it := range o.Items()[:reserved] {
		if err := c.stock.Release(ctx, it.ProductID, it.Quantity); err != nil {
			slog.Error("failed to release stock during checkout compensation",
				"order_number", o.OrderNumber(), "product_id", it.ProductID, "error", err)
		}
	}
}

func (c *orderCommandsImpl) mapUpdateErr(err error) error {
	switch {
	case infra.IsKind(err, infra.KindConflict):
		return errs.Mark(err, ErrVersionConflict)
	case infra.IsKind(err, infra.KindNotFound):
		return errs.Mark(err, ErrOrderNotFound)
	default:
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
}

func (c *orderCommandsImpl) publish(ctx context.Context, evt OrderEvent) {
	if err := c.publisher.Publish(ctx, evt); err != nil {
		slog.Warn("failed to publish order event", "type", evt.Type, "order_number", evt.OrderNumber, "error", err)
	}
}
