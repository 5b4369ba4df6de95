package order

import (
	"errors"
	"strings"
	"time"

	"agora/internal/pkg/clock"

	"github.com/google/uuid"
)

var (
	ErrNotOwner          = errors.New("caller does not own this order")
	ErrSellerNotOwner    = errors.New("seller does not own all items in this order")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrNotCancellable    = errors.New("order can no longer be cancelled")
)

// Order is the aggregate the lifecycle state machine runs over. Items
// and totals are fixed at creation; only status and version move.
type Order struct {
	orderNumber   string
	userID        uuid.UUID
	items         []Item
	status        Status
	paymentMethod PaymentMethod
	subtotal      Money
	tax           Money
	shippingCost  Money
	total         Money
	address       Address
	version       int32
	createdAt     time.Time
	updatedAt     time.Time
}

// NewOrderNumber yields a globally unique human-readable number,
// e.g. ORD-9F86D081.
func NewOrderNumber() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "ORD-" + strings.ToUpper(raw[:8])
}

// NewOrder snapshots the given items into a fresh order and derives the
// monetary totals exactly once. Pay-on-delivery orders are born
// CONFIRMED; everything else starts PENDING awaiting buyer action.
func NewOrder(
	clk clock.Clock,
	userID uuid.UUID,
	items []Item,
	paymentMethod PaymentMethod,
	address Address,
) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if !paymentMethod.IsValid() {
		return nil, ErrInvalidPaymentMethod
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}

	itemTotal := NewMoney(0)
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		itemTotal = itemTotal.Add(it.Subtotal())
	}

	tax := itemTotal.ExtractVAT()
	shipping := ShippingCostFor(itemTotal)

	status := StatusPending
	if !paymentMethod.RequiresBuyerAction() {
		status = StatusConfirmed
	}

	now := clk.Now()
	return &Order{
		orderNumber:   NewOrderNumber(),
		userID:        userID,
		items:         items,
		status:        status,
		paymentMethod: paymentMethod,
		subtotal:      itemTotal.Sub(tax),
		tax:           tax,
		shippingCost:  shipping,
		total:         itemTotal.Add(shipping),
		address:       address,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds an aggregate from persisted state.
func Reconstruct(
	orderNumber string,
	userID uuid.UUID,
	items []Item,
	status Status,
	paymentMethod PaymentMethod,
	subtotal, tax, shippingCost, total Money,
	address Address,
	version int32,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		orderNumber:   orderNumber,
		userID:        userID,
		items:         items,
		status:        status,
		paymentMethod: paymentMethod,
		subtotal:      subtotal,
		tax:           tax,
		shippingCost:  shippingCost,
		total:         total,
		address:       address,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.userID == userID
}

// SellerOwnsAllItems is the seller authorization rule: a seller may
// only touch orders in which every single line belongs to them.
func (o *Order) SellerOwnsAllItems(sellerID uuid.UUID) bool {
	for _, it := range o.items {
		if it.SellerID != sellerID {
			return false
		}
	}
	return true
}

// Confirm moves PENDING to CONFIRMED.
func (o *Order) Confirm(now time.Time) error {
	return o.TransitionTo(StatusConfirmed, now)
}

// Cancel is legal from PENDING or CONFIRMED only. Cancellation is a
// status, never a deletion.
func (o *Order) Cancel(now time.Time) error {
	if o.status != StatusPending && o.status != StatusConfirmed {
		return ErrNotCancellable
	}
	o.status = StatusCancelled
	o.updatedAt = now
	return nil
}

// TransitionTo enforces the linear forward-only lifecycle.
func (o *Order) TransitionTo(next Status, now time.Time) error {
	if !next.IsValid() {
		return ErrInvalidStatus
	}
	if !o.status.CanTransitionTo(next) {
		return ErrIllegalTransition
	}
	o.status = next
	o.updatedAt = now
	return nil
}

func (o *Order) OrderNumber() string           { return o.orderNumber }
func (o *Order) UserID() uuid.UUID             { return o.userID }
func (o *Order) Items() []Item                 { return o.items }
func (o *Order) Status() Status                { return o.status }
func (o *Order) PaymentMethod() PaymentMethod  { return o.paymentMethod }
func (o *Order) Subtotal() Money               { return o.subtotal }
func (o *Order) Tax() Money                    { return o.tax }
func (o *Order) ShippingCost() Money           { return o.shippingCost }
func (o *Order) Total() Money                  { return o.total }
func (o *Order) Address() Address              { return o.address }
func (o *Order) Version() int32                { return o.version }
func (o *Order) CreatedAt() time.Time          { return o.createdAt }
func (o *Order) UpdatedAt() time.Time          { return o.updatedAt }
