package order

import (
	"errors"
	"math"

	"github.com/google/uuid"
)

type Money struct {
	cents int64
}

func NewMoney(cents int64) Money {
	return Money{cents: cents}
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

func (m Money) Sub(other Money) Money {
	return Money{cents: m.cents - other.cents}
}

func (m Money) GreaterOrEqual(other Money) bool {
	return m.cents >= other.cents
}

const vatRate = 0.24

// ExtractVAT splits a VAT-inclusive amount into its tax part by reverse
// calculation: excl = incl / 1.24 rounded half up, tax = incl - excl.
func (m Money) ExtractVAT() Money {
	excl := int64(math.Round(float64(m.cents) / (1 + vatRate)))
	return Money{cents: m.cents - excl}
}

var (
	freeShippingThreshold = NewMoney(5000)
	flatShippingCost      = NewMoney(490)
)

// ShippingCostFor is free at or above the threshold, flat otherwise.
func ShippingCostFor(itemTotal Money) Money {
	if itemTotal.GreaterOrEqual(freeShippingThreshold) {
		return NewMoney(0)
	}
	return flatShippingCost
}

type Address struct {
	Street     string
	City       string
	PostalCode string
	Country    string
}

var ErrIncompleteAddress = errors.New("shipping address is incomplete")

func (a Address) Validate() error {
	if a.Street == "" || a.City == "" || a.PostalCode == "" || a.Country == "" {
		return ErrIncompleteAddress
	}
	return nil
}

// Item is an immutable snapshot of the product at checkout time. Orders
// stay historically accurate even if the catalog entry changes later.
type Item struct {
	ProductID   uuid.UUID
	ProductName string
	SellerID    uuid.UUID
	Price       Money
	Quantity    int32
	ImageURL    string
}

var (
	ErrInvalidQuantity = errors.New("item quantity must be positive")
	ErrNoItems         = errors.New("order must contain at least one item")
)

func NewItem(productID uuid.UUID, productName string, sellerID uuid.UUID, price Money, quantity int32, imageURL string) (Item, error) {
	if quantity <= 0 {
		return Item{}, ErrInvalidQuantity
	}
	return Item{
		ProductID:   productID,
		ProductName: productName,
		SellerID:    sellerID,
		Price:       price,
		Quantity:    quantity,
		ImageURL:    imageURL,
	}, nil
}

func (i Item) Subtotal() Money {
	return NewMoney(i.Price.Cents() * int64(i.Quantity))
}
