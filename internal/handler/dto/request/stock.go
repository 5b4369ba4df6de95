package request

import (
	"github.com/google/uuid"
)

type ReserveStockRequest struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	Quantity    int32     `json:"quantity" binding:"required,gt=0"`
	OrderNumber string    `json:"order_number" binding:"required"`
}

type ReleaseStockRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int32     `json:"quantity" binding:"required,gt=0"`
}
