package request

import (
	"agora/internal/domain/order"
	"agora/internal/usecase/commands"
)

type CheckoutRequest struct {
	PaymentMethod string          `json:"payment_method" binding:"required"`
	Address       AddressRequest  `json:"address" binding:"required"`
}

type AddressRequest struct {
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

func (r CheckoutRequest) ToParams() (commands.CheckoutParams, error) {
	method, err := order.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return commands.CheckoutParams{}, err
	}
	addr := order.Address{
		Street:     r.Address.Street,
		City:       r.Address.City,
		PostalCode: r.Address.PostalCode,
		Country:    r.Address.Country,
	}
	if err := addr.Validate(); err != nil {
		return commands.CheckoutParams{}, err
	}
	return commands.CheckoutParams{PaymentMethod: method, Address: addr}, nil
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (r UpdateStatusRequest) ToStatus() (order.Status, error) {
	return order.ParseStatus(r.Status)
}
