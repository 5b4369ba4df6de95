package response

import (
	"time"

	"agora/internal/usecase/queries"

	"github.com/google/uuid"
)

type OrderItemResponse struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	SellerID    uuid.UUID `json:"sellerId"`
	PriceCents  int64     `json:"priceCents"`
	Quantity    int32     `json:"quantity"`
	ImageURL    string    `json:"imageUrl,omitempty"`
}

type OrderResponse struct {
	OrderNumber   string              `json:"orderNumber"`
	UserID        uuid.UUID           `json:"userId"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"paymentMethod"`
	Items         []OrderItemResponse `json:"items"`
	SubtotalCents int64               `json:"subtotalCents"`
	TaxCents      int64               `json:"taxCents"`
	ShippingCents int64               `json:"shippingCents"`
	TotalCents    int64               `json:"totalCents"`
	Address       AddressResponse     `json:"address"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

type AddressResponse struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type OrderListResponse struct {
	OrderNumber string    `json:"orderNumber"`
	Status      string    `json:"status"`
	TotalCents  int64     `json:"totalCents"`
	ItemCount   int32     `json:"itemCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func FromOrderView(rm *queries.OrderView) *OrderResponse {
	items := make([]OrderItemResponse, len(rm.Items))
	for i, it := range rm.Items {
		items[i] = OrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			SellerID:    it.SellerID,
			PriceCents:  it.PriceCents,
			Quantity:    it.Quantity,
			ImageURL:    it.ImageURL,
		}
	}
	return &OrderResponse{
		OrderNumber:   rm.OrderNumber,
		UserID:        rm.UserID,
		Status:        rm.Status,
		PaymentMethod: rm.PaymentMethod,
		Items:         items,
		SubtotalCents: rm.SubtotalCents,
		TaxCents:      rm.TaxCents,
		ShippingCents: rm.ShippingCents,
		TotalCents:    rm.TotalCents,
		Address: AddressResponse{
			Street:     rm.Street,
			City:       rm.City,
			PostalCode: rm.PostalCode,
			Country:    rm.Country,
		},
		CreatedAt: rm.CreatedAt,
		UpdatedAt: rm.UpdatedAt,
	}
}

func FromOrderListItem(rm *queries.OrderListItem) *OrderListResponse {
	return &OrderListResponse{
		OrderNumber: rm.OrderNumber,
		Status:      rm.Status,
		TotalCents:  rm.TotalCents,
		ItemCount:   rm.ItemCount,
		CreatedAt:   rm.CreatedAt,
	}
}
