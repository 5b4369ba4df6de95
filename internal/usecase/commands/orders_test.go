//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"agora/internal/domain/cart"
	"agora/internal/domain/order"
	"agora/internal/domain/stock"
	"agora/internal/infra"
	"agora/internal/pkg/clock"
	"agora/internal/usecase/commands"
	"agora/internal/usecase/queries"
	"agora/tests/common/builder"
	commandsmock "agora/tests/mock/commands"
	queriesmock "agora/tests/mock/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type OrderCommandsTestSuite struct {
	suite.Suite
	mockCtrl      *gomock.Controller
	mockOrders    *commandsmock.MockOrderRepository
	mockStock     *commandsmock.MockStockCommands
	mockCarts     *commandsmock.MockCartStore
	mockCatalog   *commandsmock.MockProductCatalog
	mockPublisher *commandsmock.MockEventPublisher
	mockViews     *queriesmock.MockOrderQueries
	clock         *clock.MockClock
	commands      commands.OrderCommands
}

func (s *OrderCommandsTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockOrders = commandsmock.NewMockOrderRepository(s.mockCtrl)
	s.mockStock = commandsmock.NewMockStockCommands(s.mockCtrl)
	s.mockCarts = commandsmock.NewMockCartStore(s.mockCtrl)
	s.mockCatalog = commandsmock.NewMockProductCatalog(s.mockCtrl)
	s.mockPublisher = commandsmock.NewMockEventPublisher(s.mockCtrl)
	s.mockViews = queriesmock.NewMockOrderQueries(s.mockCtrl)
	s.clock = clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.commands = commands.NewOrderCommands(
		s.mockOrders, s.mockStock, s.mockCarts, s.mockCatalog, s.mockPublisher, s.mockViews, s.clock)
}

func (s *OrderCommandsTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestOrderCommandsSuite(t *testing.T) {
	suite.Run(t, new(OrderCommandsTestSuite))
}

func (s *OrderCommandsTestSuite) snapshotFor(b *builder.OrderBuilder) *commands.ProductSnapshot {
	return &commands.ProductSnapshot{
		ID:       b.ProductID,
		Name:     b.ProductName,
		SellerID: b.SellerID,
		Price:    b.PriceCents,
		Quantity: 100,
	}
}

// ================================================================================
// Checkout
// ================================================================================

func (s *OrderCommandsTestSuite) TestCheckout() {
	ctx := context.Background()

	s.Run("success: card order is created pending with live holds", func() {
		b := builder.NewOrderBuilder()
		params := commands.CheckoutParams{PaymentMethod: b.PaymentMethod, Address: b.Address}

		s.mockCarts.EXPECT().Get(ctx, b.UserID).Return(b.BuildCart(), nil)
		s.mockCatalog.EXPECT().FindByID(ctx, b.ProductID).Return(s.snapshotFor(b), nil)

		var orderNumber string
		s.mockStock.EXPECT().Reserve(ctx, b.ProductID, b.Quantity, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, _ int32, number string) error {
				orderNumber = number
				return nil
			})
		s.mockOrders.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, o *order.Order) error {
				s.Equal(order.StatusPending, o.Status())
				s.Equal(b.UserID, o.UserID())
				s.Equal(orderNumber, o.OrderNumber())
				return nil
			})
		s.mockCarts.EXPECT().Clear(ctx, b.UserID).Return(nil)
		s.mockPublisher.EXPECT().Publish(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, evt commands.OrderEvent) error {
				s.Equal(commands.EventOrderCreated, evt.Type)
				s.Equal(order.StatusPending.String(), evt.Status)
				return nil
			})
		s.mockViews.EXPECT().GetByNumberSystem(ctx, gomock.Any()).
			Return(&queries.OrderView{UserID: b.UserID}, nil)

		view, err := s.commands.Checkout(ctx, b.UserID, params)
		s.NoError(err)
		s.NotNil(view)
	})

	s.Run("pay on delivery auto-confirms and commits the holds", func() {
		b := builder.NewOrderBuilder().AsPayOnDelivery()
		params := commands.CheckoutParams{PaymentMethod: b.PaymentMethod, Address: b.Address}

		s.mockCarts.EXPECT().Get(ctx, b.UserID).Return(b.BuildCart(), nil)
		s.mockCatalog.EXPECT().FindByID(ctx, b.ProductID).Return(s.snapshotFor(b), nil)
		s.mockStock.EXPECT().Reserve(ctx, b.ProductID, b.Quantity, gomock.Any()).Return(nil)
		s.mockOrders.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, o *order.Order) error {
				s.Equal(order.StatusConfirmed, o.Status())
				return nil
			})
		s.mockStock.EXPECT().Commit(ctx, gomock.Any()).Return(nil)
		s.mockCarts.EXPECT().Clear(ctx, b.UserID).Return(nil)
		s.mockPublisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil)
		s.mockViews.EXPECT().GetByNumberSystem(ctx, gomock.Any()).
			Return(&queries.OrderView{UserID: b.UserID}, nil)

		view, err := s.commands.Checkout(ctx, b.UserID, params)
		s.NoError(err)
		s.NotNil(view)
	})

	s.Run("missing cart", func() {
		b := builder.NewOrderBuilder()
		s.mockCarts.EXPECT().Get(ctx, b.UserID).
			Return(cart.Cart{}, infra.NewRepoErr("cart not found", infra.KindNotFound))

		_, err := s.commands.Checkout(ctx, b.UserID, commands.CheckoutParams{PaymentMethod: b.PaymentMethod, Address: b.Address})
		s.ErrorIs(err, commands.ErrCartNotFound)
	})

	s.Run("empty cart", func() {
		b := builder.NewOrderBuilder()
		s.mockCarts.EXPECT().Get(ctx, b.UserID).Return(cart.New(b.UserID, nil), nil)

		_, err := s.commands.Checkout(ctx, b.UserID, commands.CheckoutParams{PaymentMethod: b.PaymentMethod, Address: b.Address})
		s.ErrorIs(err, cart.ErrEmptyCart)
	})

	s.Run("product vanished from the catalog", func() {
		b := builder.NewOrderBuilder()
		s.mockCarts.EXPECT().Get(ctx, b.UserID).Return(b.BuildCart(), nil)
		s.mockCatalog.EXPECT().FindByID(ctx, b.ProductID).
			Return(nil, infra.NewRepoErr("product not found", infra.KindNotFound))

		_, err := s.commands.Checkout(ctx, b.UserID, commands.CheckoutParams{PaymentMethod: b.PaymentMethod, Address: b.Address})
		s.ErrorIs(err, stock.ErrProductNotFound)
	})

	s.Run("partial reservation failure walks back granted holds", func() {
		b := builder.NewOrderBuilder()
		secondProduct := uuid.New()
		userCart := cart.New(b.UserID, []cart.CartItem{
			{ProductID: b.ProductID, Quantity: 2},
			{ProductID: secondProduct, Quantity: 4},
		})

		s.mockCarts.EXPECT().Get(ctx, b.UserID).Return(userCart, nil)
		s.mockCatalog.EXPECT().FindByID(ctx, b.ProductID).Return(s.snapshotFor(b), nil)
		s.mockCatalog.EXPECT().FindByID(ctx, secondProduct).Return(&commands.ProductSnapshot{
			ID: secondProduct, Name: "Ceramic Mug", SellerID: b.SellerID, Price: 900, Quantity: 1,
		}, nil)

		first := s.mockStock.EXPECT().Reserve(ctx, b.ProductID, int32(2), gomock.Any()).Return(nil)
		second := s.mockStock.EXPECT().Reserve(ctx, secondProduct, int32(4), gomock.Any()).
			Return(stock.ErrInsufficientStock)
		// Holds are deleted before quantity is credited back.
		commit := s.mockStock.EXPECT().Commit(ctx, gomock.Any()).Return(nil)
		release := s.mockStock.EXPECT().Release(ctx, b.ProductID, int32(2)).Return(nil)
		gomock.InOrder(first, second, commit, release)

		_, err := s.commands.Checkout(ctx, b.UserID, commands.CheckoutParams{PaymentMethod: b.PaymentMethod, Address: b.Address})
		s.ErrorIs(err, stock.ErrInsufficientStock)
	})

	s.Run("order insert failure compensates every hold", func() {
		b := builder.NewOrderBuilder()

		s.mockCarts.EXPECT().Get(ctx, b.UserID).Return(b.BuildCart(), nil)
		s.mockCatalog.EXPECT().FindByID(ctx, b.ProductID).Return(s.snapshotFor(b), nil)
		s.mockStock.EXPECT().Reserve(ctx, b.ProductID, b.Quantity, gomock.Any()).Return(nil)
		s.mockOrders.EXPECT().Create(ctx, gomock.Any()).
			Return(infra.NewRepoErr("insert failed", infra.KindDBFailure))
		s.mockStock.EXPECT().Commit(ctx, gomock.Any()).Return(nil)
		s.mockStock.EXPECT().Release(ctx, b.ProductID, b.Quantity).Return(nil)

		_, err := s.commands.Checkout(ctx, b.UserID, commands.CheckoutParams{PaymentMethod: b.PaymentMethod, Address: b.Address})
		s.ErrorIs(err, commands.ErrDatabaseOperationFailed)
	})
}

// ================================================================================
// Confirm
// ================================================================================

func (s *OrderCommandsTestSuite) TestConfirm() {
	ctx := context.Background()

	s.Run("success: pending order owned by the caller", func() {
		b := builder.NewOrderBuilder()
		o, err := b.BuildDomain()
		s.Require().NoError(err)
		number := o.OrderNumber()

		s.mockOrders.EXPECT().FindByNumber(ctx, number).Return(o, nil)
		s.mockOrders.EXPECT().
			UpdateStatus(ctx, number, order.StatusConfirmed, int32(1), s.clock.Now()).
			Return(nil)
		s.mockStock.EXPECT().Commit(ctx, number).Return(nil)
		s.mockPublisher.EXPECT().Publish(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, evt commands.OrderEvent) error {
				s.Equal(commands.EventOrderConfirmed, evt.Type)
				return nil
			})
		s.mockViews.EXPECT().GetByNumberSystem(ctx, number).
			Return(&queries.OrderView{OrderNumber: number}, nil)

		view, err := s.commands.Confirm(ctx, number, b.UserID)
		s.NoError(err)
		s.NotNil(view)
	})

	s.Run("negative result: caller does not own the order", func() {
		o, err := builder.NewOrderBuilder().BuildDomain()
		s.Require().NoError(err)

		s.mockOrders.EXPECT().FindByNumber(ctx, o.OrderNumber()).Return(o, nil)

		view, err := s.commands.Confirm(ctx, o.OrderNumber(), uuid.New())
		s.NoError(err)
		s.Nil(view)
	})

	s.Run("negative result: order is not pending", func() {
		b := builder.NewOrderBuilder().AsPayOnDelivery()
		o, err := b.BuildDomain()
		s.Require().NoError(err)

		s.mockOrders.EXPECT().FindByNumber(ctx, o.OrderNumber()).Return(o, nil)

		view, err := s.commands.Confirm(ctx, o.OrderNumber(), b.UserID)
		s.NoError(err)
		s.Nil(view)
	})

	s.Run("negative result: order does not exist", func() {
		s.mockOrders.EXPECT().FindByNumber(ctx, "ORD-MISSING1").
			Return(nil, infra.NewRepoErr("order not found", infra.KindNotFound))

		view, err := s.commands.Confirm(ctx, "ORD-MISSING1", uuid.New())
		s.NoError(err)
		s.Nil(view)
	})

	s.Run("concurrent writer wins the version race", func() {
		b := builder.NewOrderBuilder()
		o, err := b.BuildDomain()
		s.Require().NoError(err)

		s.mockOrders.EXPECT().FindByNumber(ctx, o.OrderNumber()).Return(o, nil)
		s.mockOrders.EXPECT().
			UpdateStatus(ctx, o.OrderNumber(), order.StatusConfirmed, int32(1), s.clock.Now()).
			Return(infra.NewRepoErr("order version conflict", infra.KindConflict))

		_, err = s.commands.Confirm(ctx, o.OrderNumber(), b.UserID)
		s.ErrorIs(err, commands.ErrVersionConflict)
	})
}

// ================================================================================
// UpdateStatus
// ================================================================================

func (s *OrderCommandsTestSuite) TestUpdateStatus() {
	ctx := context.Background()

	s.Run("success: seller ships a confirmed order", func() {
		b := builder.NewOrderBuilder().AsPayOnDelivery()
		o, err := b.BuildDomain()
		s.Require().NoError(err)
		number := o.OrderNumber()

		s.mockOrders.EXPECT().FindByNumber(ctx, number).Return(o, nil)
		s.mockOrders.EXPECT().
			UpdateStatus(ctx, number, order.StatusShipped, int32(1), s.clock.Now()).
			Return(nil)
		s.mockPublisher.EXPECT().Publish(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, evt commands.OrderEvent) error {
				s.Equal(commands.EventOrderStatusChanged, evt.Type)
				s.Equal(order.StatusShipped.String(), evt.Status)
				return nil
			})
		s.mockViews.EXPECT().GetByNumberSystem(ctx, number).
			Return(&queries.OrderView{OrderNumber: number}, nil)

		view, err := s.commands.UpdateStatus(ctx, number, b.SellerID, order.StatusShipped)
		s.NoError(err)
		s.NotNil(view)
	})

	s.Run("seller confirm finalizes the holds", func() {
		b := builder.NewOrderBuilder()
		o, err := b.BuildDomain()
		s.Require().NoError(err)
		number := o.OrderNumber()

		s.mockOrders.EXPECT().FindByNumber(ctx, number).Return(o, nil)
		s.mockOrders.EXPECT().
			UpdateStatus(ctx, number, order.StatusConfirmed, int32(1), s.clock.Now()).
			Return(nil)
		s.mockStock.EXPECT().Commit(ctx, number).Return(nil)
		s.mockPublisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil)
		s.mockViews.EXPECT().GetByNumberSystem(ctx, number).
			Return(&queries.OrderView{OrderNumber: number}, nil)

		view, err := s.commands.UpdateStatus(ctx, number, b.SellerID, order.StatusConfirmed)
		s.NoError(err)
		s.NotNil(view)
	})

	s.Run("seller who does not own every item is rejected", func() {
		o, err := builder.NewOrderBuilder().BuildDomain()
		s.Require().NoError(err)

		s.mockOrders.EXPECT().FindByNumber(ctx, o.OrderNumber()).Return(o, nil)

		_, err = s.commands.UpdateStatus(ctx, o.OrderNumber(), uuid.New(), order.StatusShipped)
		s.ErrorIs(err, commands.ErrUnauthorized)
	})

	s.Run("skipping a lifecycle step is rejected", func() {
		b := builder.NewOrderBuilder()
		o, err := b.BuildDomain()
		s.Require().NoError(err)

		s.mockOrders.EXPECT().FindByNumber(ctx, o.OrderNumber()).Return(o, nil)

		_, err = s.commands.UpdateStatus(ctx, o.OrderNumber(), b.SellerID, order.StatusDelivered)
		s.ErrorIs(err, commands.ErrIllegalState)
	})

	s.Run("seller cannot cancel a pending order through a status update", func() {
		b := builder.NewOrderBuilder()
		o, err := b.BuildDomain()
		s.Require().NoError(err)

		// Only the lookup runs: no status write, no hold commit or
		// release, no event. Cancellation belongs to the buyer flow.
		s.mockOrders.EXPECT().FindByNumber(ctx, o.OrderNumber()).Return(o, nil)

		_, err = s.commands.UpdateStatus(ctx, o.OrderNumber(), b.SellerID, order.StatusCancelled)
		s.ErrorIs(err, commands.ErrIllegalState)
		s.Equal(order.StatusPending, o.Status())
	})

	s.Run("seller cannot cancel a confirmed order through a status update", func() {
		b := builder.NewOrderBuilder()
		o, err := b.BuildDomain()
		s.Require().NoError(err)
		s.Require().NoError(o.Confirm(s.clock.Now()))

		s.mockOrders.EXPECT().FindByNumber(ctx, o.OrderNumber()).Return(o, nil)

		_, err = s.commands.UpdateStatus(ctx, o.OrderNumber(), b.SellerID, order.StatusCancelled)
		s.ErrorIs(err, commands.ErrIllegalState)
		s.Equal(order.StatusConfirmed, o.Status())
	})

	s.Run("missing order", func() {
		s.mockOrders.EXPECT().FindByNumber(ctx, "ORD-MISSING1").
			Return(nil, infra.NewRepoErr("order not found", infra.KindNotFound))

		_, err := s.commands.UpdateStatus(ctx, "ORD-MISSING1", uuid.New(), order.StatusShipped)
		s.ErrorIs(err, commands.ErrOrderNotFound)
	})
}

// ================================================================================
// Cancel
// ================================================================================

func (s *OrderCommandsTestSuite) TestCancel() {
	ctx := context.Background()

	s.Run("success: holds vanish before quantity returns", func() {
		b := builder.NewOrderBuilder().AsPayOnDelivery()
		o, err := b.BuildDomain()
		s.Require().NoError(err)
		number := o.OrderNumber()

		s.mockOrders.EXPECT().FindByNumber(ctx, number).Return(o, nil)
		update := s.mockOrders.EXPECT().
			UpdateStatus(ctx, number, order.StatusCancelled, int32(1), s.clock.Now()).
			Return(nil)
		commit := s.mockStock.EXPECT().Commit(ctx, number).Return(nil)
		release := s.mockStock.EXPECT().Release(ctx, b.ProductID, b.Quantity).Return(nil)
		gomock.InOrder(update, commit, release)
		s.mockPublisher.EXPECT().Publish(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, evt commands.OrderEvent) error {
				s.Equal(commands.EventOrderCancelled, evt.Type)
				return nil
			})

		s.NoError(s.commands.Cancel(ctx, number, b.UserID))
	})

	s.Run("caller does not own the order", func() {
		o, err := builder.NewOrderBuilder().BuildDomain()
		s.Require().NoError(err)

		s.mockOrders.EXPECT().FindByNumber(ctx, o.OrderNumber()).Return(o, nil)

		s.ErrorIs(s.commands.Cancel(ctx, o.OrderNumber(), uuid.New()), commands.ErrUnauthorized)
	})

	s.Run("shipped order can no longer be cancelled", func() {
		b := builder.NewOrderBuilder().AsPayOnDelivery()
		o, err := b.BuildDomain()
		s.Require().NoError(err)
		s.Require().NoError(o.TransitionTo(order.StatusShipped, s.clock.Now()))

		s.mockOrders.EXPECT().FindByNumber(ctx, o.OrderNumber()).Return(o, nil)

		s.ErrorIs(s.commands.Cancel(ctx, o.OrderNumber(), b.UserID), commands.ErrIllegalState)
	})

	s.Run("missing order", func() {
		s.mockOrders.EXPECT().FindByNumber(ctx, "ORD-MISSING1").
			Return(nil, infra.NewRepoErr("order not found", infra.KindNotFound))

		s.ErrorIs(s.commands.Cancel(ctx, "ORD-MISSING1", uuid.New()), commands.ErrOrderNotFound)
	})
}

// ================================================================================
// Redo
// ================================================================================

func (s *OrderCommandsTestSuite) TestRedo() {
	ctx := context.Background()

	s.Run("success: stages a cart and re-checks out at live prices", func() {
		b := builder.NewOrderBuilder()
		o, err := b.BuildDomain()
		s.Require().NoError(err)
		s.Require().NoError(o.Cancel(s.clock.Now()))
		number := o.OrderNumber()

		s.mockOrders.EXPECT().FindByNumber(ctx, number).Return(o, nil)
		s.mockCarts.EXPECT().Save(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, c cart.Cart) error {
				s.Equal(b.UserID, c.UserID)
				s.Require().Len(c.Items, 1)
				s.Equal(b.ProductID, c.Items[0].ProductID)
				s.Equal(b.Quantity, c.Items[0].Quantity)
				return nil
			})

		// The re-checkout snapshots a fresh price from the catalog.
		repriced := s.snapshotFor(b)
		repriced.Price = 1500
		s.mockCarts.EXPECT().Get(ctx, b.UserID).Return(b.BuildCart(), nil)
		s.mockCatalog.EXPECT().FindByID(ctx, b.ProductID).Return(repriced, nil)
		s.mockStock.EXPECT().Reserve(ctx, b.ProductID, b.Quantity, gomock.Any()).Return(nil)
		s.mockOrders.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, fresh *order.Order) error {
				s.NotEqual(number, fresh.OrderNumber())
				s.Equal(int64(1500)*int64(b.Quantity), fresh.Items()[0].Subtotal().Cents())
				return nil
			})
		s.mockCarts.EXPECT().Clear(ctx, b.UserID).Return(nil)
		s.mockPublisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil)
		s.mockViews.EXPECT().GetByNumberSystem(ctx, gomock.Any()).
			Return(&queries.OrderView{UserID: b.UserID}, nil)

		view, err := s.commands.Redo(ctx, number, b.UserID)
		s.NoError(err)
		s.NotNil(view)
	})

	s.Run("negative result: order is not cancelled", func() {
		b := builder.NewOrderBuilder()
		o, err := b.BuildDomain()
		s.Require().NoError(err)

		s.mockOrders.EXPECT().FindByNumber(ctx, o.OrderNumber()).Return(o, nil)

		view, err := s.commands.Redo(ctx, o.OrderNumber(), b.UserID)
		s.NoError(err)
		s.Nil(view)
	})

	s.Run("negative result: caller does not own the order", func() {
		b := builder.NewOrderBuilder()
		o, err := b.BuildDomain()
		s.Require().NoError(err)
		s.Require().NoError(o.Cancel(s.clock.Now()))

		s.mockOrders.EXPECT().FindByNumber(ctx, o.OrderNumber()).Return(o, nil)

		view, err := s.commands.Redo(ctx, o.OrderNumber(), uuid.New())
		s.NoError(err)
		s.Nil(view)
	})
}

// ================================================================================
// Concurrency
// ================================================================================

// memLedger mimics the guarded single-row decrement: the mutex plays
// the role of the database's row lock.
type memLedger struct {
	mu  sync.Mutex
	qty map[uuid.UUID]int32
}

func (l *memLedger) Reserve(_ context.Context, productID uuid.UUID, quantity int32) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	have, ok := l.qty[productID]
	if !ok {
		return infra.NewRepoErr("product not found", infra.KindNotFound)
	}
	if have < quantity {
		return infra.NewRepoErr("insufficient stock", infra.KindConflict)
	}
	l.qty[productID] = have - quantity
	return nil
}

func (l *memLedger) Release(_ context.Context, productID uuid.UUID, quantity int32) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.qty[productID]; !ok {
		return infra.NewRepoErr("product not found", infra.KindNotFound)
	}
	l.qty[productID] += quantity
	return nil
}

type memReservationStore struct {
	mu   sync.Mutex
	held []*stock.Reservation
}

func (s *memReservationStore) Create(_ context.Context, res *stock.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = append(s.held, res)
	return nil
}

func (s *memReservationStore) DeleteByOrderNumber(_ context.Context, orderNumber string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []*stock.Reservation
	var deleted int64
	for _, r := range s.held {
		if r.OrderNumber() == orderNumber {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.held = kept
	return deleted, nil
}

func (s *memReservationStore) FindOlderThan(_ context.Context, cutoff time.Time) ([]*stock.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*stock.Reservation
	for _, r := range s.held {
		if r.CreatedAt().Before(cutoff) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memReservationStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.held {
		if r.ID() == id {
			s.held = append(s.held[:i], s.held[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memReservationStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.held)
}

func TestConcurrentReserveNeverOversells(t *testing.T) {
	productID := uuid.New()
	ledger := &memLedger{qty: map[uuid.UUID]int32{productID: 5}}
	store := &memReservationStore{}
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	stockCmds := commands.NewStockCommands(ledger, store, clk)

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = stockCmds.Reserve(context.Background(), productID, 3, order.NewOrderNumber())
		}(i)
	}
	wg.Wait()

	// 5 units, 4 racing requests for 3 each: exactly one can win.
	var wins, losses int
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, stock.ErrInsufficientStock)
			losses++
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, attempts-1, losses)
	require.Equal(t, int32(2), ledger.qty[productID])
	require.Equal(t, 1, store.count())
}
