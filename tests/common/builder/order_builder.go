//go:build unit || e2e

package builder

import (
	"time"

	"agora/internal/domain/cart"
	domorder "agora/internal/domain/order"
	reqdto "agora/internal/handler/dto/request"
	"agora/internal/pkg/clock"
	"agora/internal/usecase/queries"

	"github.com/google/uuid"
)

// OrderBuilder assembles orders for tests. The default order is a
// single card-paid line well under the free shipping threshold.
type OrderBuilder struct {
	UserID        uuid.UUID
	SellerID      uuid.UUID
	ProductID     uuid.UUID
	ProductName   string
	PriceCents    int64
	Quantity      int32
	PaymentMethod domorder.PaymentMethod
	Address       domorder.Address
	CreatedAt     time.Time
}

func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{
		UserID:        uuid.New(),
		SellerID:      uuid.New(),
		ProductID:     uuid.New(),
		ProductName:   "Walnut Desk Organizer",
		PriceCents:    1240,
		Quantity:      2,
		PaymentMethod: domorder.PayByCard,
		Address: domorder.Address{
			Street:     "Mannerheimintie 5",
			City:       "Helsinki",
			PostalCode: "00100",
			Country:    "FI",
		},
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (b *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *OrderBuilder) BuildItems() []domorder.Item {
	item, _ := domorder.NewItem(b.ProductID, b.ProductName, b.SellerID,
		domorder.NewMoney(b.PriceCents), b.Quantity, "")
	return []domorder.Item{item}
}

func (b *OrderBuilder) BuildDomain() (*domorder.Order, error) {
	return domorder.NewOrder(clock.NewMockClock(b.CreatedAt), b.UserID, b.BuildItems(), b.PaymentMethod, b.Address)
}

func (b *OrderBuilder) BuildCart() cart.Cart {
	return cart.New(b.UserID, []cart.CartItem{
		{ProductID: b.ProductID, Quantity: b.Quantity},
	})
}

func (b *OrderBuilder) BuildCheckoutRequestDTO() reqdto.CheckoutRequest {
	return reqdto.CheckoutRequest{
		PaymentMethod: b.PaymentMethod.String(),
		Address: reqdto.AddressRequest{
			Street:     b.Address.Street,
			City:       b.Address.City,
			PostalCode: b.Address.PostalCode,
			Country:    b.Address.Country,
		},
	}
}

func (b *OrderBuilder) BuildView() *queries.OrderView {
	o, _ := b.BuildDomain()
	return &queries.OrderView{
		OrderNumber:   o.OrderNumber(),
		UserID:        b.UserID,
		Status:        o.Status().String(),
		PaymentMethod: b.PaymentMethod.String(),
		Items: []queries.OrderItemView{
			{
				ProductID:   b.ProductID,
				ProductName: b.ProductName,
				SellerID:    b.SellerID,
				PriceCents:  b.PriceCents,
				Quantity:    b.Quantity,
			},
		},
		SubtotalCents: o.Subtotal().Cents(),
		TaxCents:      o.Tax().Cents(),
		ShippingCents: o.ShippingCost().Cents(),
		TotalCents:    o.Total().Cents(),
		Street:        b.Address.Street,
		City:          b.Address.City,
		PostalCode:    b.Address.PostalCode,
		Country:       b.Address.Country,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.CreatedAt,
	}
}

func (b *OrderBuilder) BuildListItem() *queries.OrderListItem {
	return &queries.OrderListItem{
		OrderNumber: domorder.NewOrderNumber(),
		Status:      domorder.StatusPending.String(),
		TotalCents:  b.PriceCents*int64(b.Quantity) + 490,
		ItemCount:   1,
		CreatedAt:   b.CreatedAt,
	}
}

// Fluent builder methods
func (b *OrderBuilder) WithUserID(userID uuid.UUID) *OrderBuilder {
	b.UserID = userID
	return b
}

func (b *OrderBuilder) WithSellerID(sellerID uuid.UUID) *OrderBuilder {
	b.SellerID = sellerID
	return b
}

func (b *OrderBuilder) WithProductID(productID uuid.UUID) *OrderBuilder {
	b.ProductID = productID
	return b
}

func (b *OrderBuilder) WithPriceCents(cents int64) *OrderBuilder {
	b.PriceCents = cents
	return b
}

func (b *OrderBuilder) WithQuantity(quantity int32) *OrderBuilder {
	b.Quantity = quantity
	return b
}

func (b *OrderBuilder) WithPaymentMethod(method domorder.PaymentMethod) *OrderBuilder {
	b.PaymentMethod = method
	return b
}

func (b *OrderBuilder) WithAddress(address domorder.Address) *OrderBuilder {
	b.Address = address
	return b
}

func (b *OrderBuilder) AsPayOnDelivery() *OrderBuilder {
	b.PaymentMethod = domorder.PayOnDelivery
	return b
}
