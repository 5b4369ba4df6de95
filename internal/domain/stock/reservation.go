package stock

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidReservation = errors.New("reservation quantity must be positive")
)

// Reservation is a temporary hold against the product ledger, tied to
// one order. It is created on a successful reserve and destroyed by
// commit, release, or the background reaper once it outlives its TTL.
type Reservation struct {
	id          uuid.UUID
	productID   uuid.UUID
	quantity    int32
	orderNumber string
	createdAt   time.Time
}

func NewReservation(productID uuid.UUID, quantity int32, orderNumber string, createdAt time.Time) (*Reservation, error) {
	if quantity <= 0 {
		return nil, ErrInvalidReservation
	}
	return &Reservation{
		id:          uuid.New(),
		productID:   productID,
		quantity:    quantity,
		orderNumber: orderNumber,
		createdAt:   createdAt,
	}, nil
}

func ReconstructReservation(id, productID uuid.UUID, quantity int32, orderNumber string, createdAt time.Time) *Reservation {
	return &Reservation{
		id:          id,
		productID:   productID,
		quantity:    quantity,
		orderNumber: orderNumber,
		createdAt:   createdAt,
	}
}

// ExpiredAt reports whether the hold has outlived ttl as of now.
func (r *Reservation) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return r.createdAt.Add(ttl).Before(now)
}

func (r *Reservation) ID() uuid.UUID       { return r.id }
func (r *Reservation) ProductID() uuid.UUID { return r.productID }
func (r *Reservation) Quantity() int32     { return r.quantity }
func (r *Reservation) OrderNumber() string { return r.orderNumber }
func (r *Reservation) CreatedAt() time.Time { return r.createdAt }
