//go:build unit

package order_test

import (
	"strings"
	"testing"
	"time"

	"agora/internal/domain/order"
	"agora/internal/pkg/clock"
	"agora/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cmpOpts = []cmp.Option{
	cmp.AllowUnexported(order.Money{}),
	cmpopts.EquateEmpty(),
}

func TestNewOrder(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		b := builder.NewOrderBuilder()
		actual, err := b.BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		if diff := cmp.Diff(b.BuildItems(), actual.Items(), cmpOpts...); diff != "" {
			t.Errorf("Items mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(b.Address, actual.Address(), cmpOpts...); diff != "" {
			t.Errorf("Address mismatch (-want +got):\n%s", diff)
		}

		assert.True(t, strings.HasPrefix(actual.OrderNumber(), "ORD-"))
		assert.Len(t, actual.OrderNumber(), 12)
		assert.Equal(t, order.StatusPending, actual.Status())
		assert.Equal(t, int32(1), actual.Version())
		assert.Equal(t, actual.CreatedAt(), actual.UpdatedAt())
	})

	t.Run("order numbers are unique", func(t *testing.T) {
		o1, err1 := builder.NewOrderBuilder().BuildDomain()
		o2, err2 := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err1)
		require.NoError(t, err2)

		assert.NotEqual(t, o1.OrderNumber(), o2.OrderNumber())
	})

	t.Run("pay on delivery is born confirmed", func(t *testing.T) {
		actual, err := builder.NewOrderBuilder().AsPayOnDelivery().BuildDomain()
		require.NoError(t, err)

		assert.Equal(t, order.StatusConfirmed, actual.Status())
	})

	t.Run("card payment awaits buyer confirmation", func(t *testing.T) {
		actual, err := builder.NewOrderBuilder().WithPaymentMethod(order.PayByCard).BuildDomain()
		require.NoError(t, err)

		assert.Equal(t, order.StatusPending, actual.Status())
	})

	t.Run("rejects empty item list", func(t *testing.T) {
		clk := builder.NewOrderBuilder()
		o, err := order.NewOrder(mockClock(clk.CreatedAt), uuid.New(), nil, order.PayByCard, clk.Address)
		require.Nil(t, o)
		require.ErrorIs(t, err, order.ErrNoItems)
	})

	t.Run("rejects incomplete address", func(t *testing.T) {
		b := builder.NewOrderBuilder().WithAddress(order.Address{City: "Helsinki"})
		o, err := b.BuildDomain()
		require.Nil(t, o)
		require.ErrorIs(t, err, order.ErrIncompleteAddress)
	})
}

func TestOrderTotals(t *testing.T) {
	t.Run("extracts VAT from the inclusive item total", func(t *testing.T) {
		// 2 x 12.40 = 24.80 incl. 24% VAT: excl = 20.00, tax = 4.80
		actual, err := builder.NewOrderBuilder().WithPriceCents(1240).WithQuantity(2).BuildDomain()
		require.NoError(t, err)

		assert.Equal(t, int64(2000), actual.Subtotal().Cents())
		assert.Equal(t, int64(480), actual.Tax().Cents())
	})

	t.Run("charges flat shipping below the threshold", func(t *testing.T) {
		actual, err := builder.NewOrderBuilder().WithPriceCents(1000).WithQuantity(1).BuildDomain()
		require.NoError(t, err)

		assert.Equal(t, int64(490), actual.ShippingCost().Cents())
		assert.Equal(t, int64(1490), actual.Total().Cents())
	})

	t.Run("free shipping exactly at the threshold", func(t *testing.T) {
		actual, err := builder.NewOrderBuilder().WithPriceCents(5000).WithQuantity(1).BuildDomain()
		require.NoError(t, err)

		assert.Equal(t, int64(0), actual.ShippingCost().Cents())
		assert.Equal(t, int64(5000), actual.Total().Cents())
	})

	t.Run("one cent under the threshold still pays shipping", func(t *testing.T) {
		actual, err := builder.NewOrderBuilder().WithPriceCents(4999).WithQuantity(1).BuildDomain()
		require.NoError(t, err)

		assert.Equal(t, int64(490), actual.ShippingCost().Cents())
	})
}

func TestOrderLifecycle(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	t.Run("confirm moves pending to confirmed", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, o.Confirm(now))
		assert.Equal(t, order.StatusConfirmed, o.Status())
		assert.Equal(t, now, o.UpdatedAt())
	})

	t.Run("confirm twice is illegal", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, o.Confirm(now))
		require.ErrorIs(t, o.Confirm(now), order.ErrIllegalTransition)
	})

	t.Run("full forward walk", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, o.TransitionTo(order.StatusConfirmed, now))
		require.NoError(t, o.TransitionTo(order.StatusShipped, now))
		require.NoError(t, o.TransitionTo(order.StatusDelivered, now))
		assert.Equal(t, order.StatusDelivered, o.Status())
	})

	t.Run("cancel from pending", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, o.Cancel(now))
		assert.Equal(t, order.StatusCancelled, o.Status())
	})

	t.Run("cancel from confirmed", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().AsPayOnDelivery().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, o.Cancel(now))
		assert.Equal(t, order.StatusCancelled, o.Status())
	})

	t.Run("cancel after shipping is refused", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().AsPayOnDelivery().BuildDomain()
		require.NoError(t, err)
		require.NoError(t, o.TransitionTo(order.StatusShipped, now))

		require.ErrorIs(t, o.Cancel(now), order.ErrNotCancellable)
		assert.Equal(t, order.StatusShipped, o.Status())
	})

	t.Run("no resurrection from cancelled", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)
		require.NoError(t, o.Cancel(now))

		require.ErrorIs(t, o.TransitionTo(order.StatusConfirmed, now), order.ErrIllegalTransition)
	})
}

func TestSellerOwnsAllItems(t *testing.T) {
	sellerID := uuid.New()

	t.Run("single-seller order", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().WithSellerID(sellerID).BuildDomain()
		require.NoError(t, err)

		assert.True(t, o.SellerOwnsAllItems(sellerID))
		assert.False(t, o.SellerOwnsAllItems(uuid.New()))
	})

	t.Run("mixed-seller order is owned by nobody", func(t *testing.T) {
		b := builder.NewOrderBuilder().WithSellerID(sellerID)
		otherItem, err := order.NewItem(uuid.New(), "Ceramic Mug", uuid.New(), order.NewMoney(900), 1, "")
		require.NoError(t, err)

		items := append(b.BuildItems(), otherItem)
		o, err := order.NewOrder(mockClock(b.CreatedAt), b.UserID, items, b.PaymentMethod, b.Address)
		require.NoError(t, err)

		assert.False(t, o.SellerOwnsAllItems(sellerID))
	})
}

func TestIsOwnedBy(t *testing.T) {
	userID := uuid.New()
	o, err := builder.NewOrderBuilder().WithUserID(userID).BuildDomain()
	require.NoError(t, err)

	assert.True(t, o.IsOwnedBy(userID))
	assert.False(t, o.IsOwnedBy(uuid.New()))
}

func mockClock(t time.Time) clock.Clock {
	return clock.NewMockClock(t)
}
