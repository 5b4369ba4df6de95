package commands

import (
	"context"
	"time"

	"agora/internal/domain/cart"
	"agora/internal/domain/order"
	"agora/internal/domain/stock"

	"github.com/google/uuid"
)

// ProductLedger exposes the two atomic quantity primitives. Reserve is
// a single compare-and-set: it must never let concurrent callers drive
// a product's available quantity negative.
type ProductLedger interface {
	Reserve(ctx context.Context, productID uuid.UUID, quantity int32) error
	Release(ctx context.Context, productID uuid.UUID, quantity int32) error
}

// ReservationStore holds the durable in-flight holds backing the ledger.
type ReservationStore interface {
	Create(ctx context.Context, res *stock.Reservation) error
	DeleteByOrderNumber(ctx context.Context, orderNumber string) (int64, error)
	FindOlderThan(ctx context.Context, cutoff time.Time) ([]*stock.Reservation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	FindByNumber(ctx context.Context, orderNumber string) (*order.Order, error)
	// UpdateStatus is a versioned compare-and-set; a concurrent writer
	// makes it fail with a conflict instead of silently overwriting.
	UpdateStatus(ctx context.Context, orderNumber string, status order.Status, expectedVersion int32, updatedAt time.Time) error
}

// CartStore is the boundary to the cart service's keyspace: read at
// checkout, clear after, save only when redo stages a fresh cart.
type CartStore interface {
	Get(ctx context.Context, userID uuid.UUID) (cart.Cart, error)
	Save(ctx context.Context, c cart.Cart) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// ProductSnapshot is the slice of catalog data checkout needs to build
// immutable order items and validate redo against live stock.
type ProductSnapshot struct {
	ID       uuid.UUID
	Name     string
	SellerID uuid.UUID
	Price    int64
	Quantity int32
	Images   []string
}

type ProductCatalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductSnapshot, error)
}

type OrderEvent struct {
	Type        string    `json:"type"`
	OrderNumber string    `json:"order_number"`
	UserID      uuid.UUID `json:"user_id"`
	Status      string    `json:"status"`
	TotalCents  int64     `json:"total_cents,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

const (
	EventOrderCreated       = "order.created"
	EventOrderConfirmed     = "order.confirmed"
	EventOrderCancelled     = "order.cancelled"
	EventOrderStatusChanged = "order.status_changed"
)

// EventPublisher fans lifecycle transitions out to the broker. Publish
// failures never fail the request path.
type EventPublisher interface {
	Publish(ctx context.Context, evt OrderEvent) error
}
