package order

import (
	"errors"
	"strings"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

var ErrInvalidStatus = errors.New("invalid order status")

// statusRank defines the linear forward order of the lifecycle.
// CANCELLED sits outside the line and is handled separately.
var statusRank = map[Status]int{
	StatusPending:   1,
	StatusConfirmed: 2,
	StatusShipped:   3,
	StatusDelivered: 4,
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether the move is a legal single forward
// step, or a jump into CANCELLED from a cancellable state.
func (s Status) CanTransitionTo(next Status) bool {
	if next == StatusCancelled {
		return s == StatusPending || s == StatusConfirmed
	}
	from, okFrom := statusRank[s]
	to, okTo := statusRank[next]
	return okFrom && okTo && to == from+1
}

// ParseStatus converts boundary input into the single Status type used
// everywhere internally. Parsing happens exactly once, at the edge.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

type PaymentMethod string

const (
	PayOnDelivery PaymentMethod = "PAY_ON_DELIVERY"
	PayByCard     PaymentMethod = "CARD"
)

var ErrInvalidPaymentMethod = errors.New("invalid payment method")

func (p PaymentMethod) String() string {
	return string(p)
}

func (p PaymentMethod) IsValid() bool {
	return p == PayOnDelivery || p == PayByCard
}

// RequiresBuyerAction reports whether the buyer still has to confirm
// the order after checkout. Pay-on-delivery orders confirm themselves.
func (p PaymentMethod) RequiresBuyerAction() bool {
	return p != PayOnDelivery
}

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	p := PaymentMethod(strings.ToUpper(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", ErrInvalidPaymentMethod
	}
	return p, nil
}
