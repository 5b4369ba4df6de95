package cart

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
)

// Cart is the collaborator model owned by the cart service. Checkout
// only ever reads and clears it; redo stages a fresh one.
type Cart struct {
	UserID uuid.UUID  `json:"user_id"`
	Items  []CartItem `json:"items"`
}

type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
}

func New(userID uuid.UUID, items []CartItem) Cart {
	return Cart{UserID: userID, Items: items}
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
