package queries

import (
	"context"
	"time"

	"agora/internal/infra"
	"agora/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errs.New("order not found")

type OrderItemView struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	SellerID    uuid.UUID `json:"sellerId"`
	PriceCents  int64     `json:"priceCents"`
	Quantity    int32     `json:"quantity"`
	ImageURL    string    `json:"imageUrl,omitempty"`
}

type OrderView struct {
	OrderNumber   string
	UserID        uuid.UUID
	Status        string
	PaymentMethod string
	Items         []OrderItemView
	SubtotalCents int64
	TaxCents      int64
	ShippingCents int64
	TotalCents    int64
	Street        string
	City          string
	PostalCode    string
	Country       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type OrderListItem struct {
	OrderNumber string
	Status      string
	TotalCents  int64
	ItemCount   int32
	CreatedAt   time.Time
}

type SearchParams struct {
	Keyword string
	Status  *string
	Page    int32
	Size    int32
}

type PageParams struct {
	Page int32
	Size int32
}

type OrderReadStore interface {
	FindByNumber(ctx context.Context, orderNumber string) (*OrderView, error)
	ListByBuyer(ctx context.Context, userID uuid.UUID) ([]*OrderListItem, error)
	SearchByBuyer(ctx context.Context, userID uuid.UUID, p SearchParams) ([]*OrderListItem, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, p PageParams) ([]*OrderListItem, error)
}

// Requester identifies who is asking, for read-side authorization.
type Requester struct {
	UserID uuid.UUID
	Role   string
}

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

type OrderQueries interface {
	// GetByNumber enforces visibility: the buyer who placed the order,
	// or a seller with at least one item in it. Anyone else sees not-found.
	GetByNumber(ctx context.Context, orderNumber string, req Requester) (*OrderView, error)
	// GetByNumberSystem bypasses visibility for internal read-after-write.
	GetByNumberSystem(ctx context.Context, orderNumber string) (*OrderView, error)
	ListBuyerOrders(ctx context.Context, userID uuid.UUID) ([]*OrderListItem, error)
	SearchBuyerOrders(ctx context.Context, userID uuid.UUID, p SearchParams) ([]*OrderListItem, error)
	ListSellerOrders(ctx context.Context, sellerID uuid.UUID, p PageParams) ([]*OrderListItem, error)
}

type orderQueriesImpl struct {
	store OrderReadStore
}

func NewOrderQueries(store OrderReadStore) OrderQueries {
	return &orderQueriesImpl{store: store}
}

func (q *orderQueriesImpl) GetByNumber(ctx context.Context, orderNumber string, req Requester) (*OrderView, error) {
	view, err := q.GetByNumberSystem(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if !visibleTo(view, req) {
		return nil, ErrOrderNotFound
	}
	return view, nil
}

func (q *orderQueriesImpl) GetByNumberSystem(ctx context.Context, orderNumber string) (*OrderView, error) {
	view, err := q.store.FindByNumber(ctx, orderNumber)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, errs.Wrap(err, "failed to find order")
	}
	return view, nil
}

func (q *orderQueriesImpl) ListBuyerOrders(ctx context.Context, userID uuid.UUID) ([]*OrderListItem, error) {
	items, err := q.store.ListByBuyer(ctx, userID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list buyer orders")
	}
	return items, nil
}

func (q *orderQueriesImpl) SearchBuyerOrders(ctx context.Context, userID uuid.UUID, p SearchParams) ([]*OrderListItem, error) {
	if p.Size <= 0 {
		p.Size = 20
	}
	if p.Page < 0 {
		p.Page = 0
	}
	items, err := q.store.SearchByBuyer(ctx, userID, p)
	if err != nil {
		return nil, errs.Wrap(err, "failed to search buyer orders")
	}
	return items, nil
}

func (q *orderQueriesImpl) ListSellerOrders(ctx context.Context, sellerID uuid.UUID, p PageParams) ([]*OrderListItem, error) {
	if p.Size <= 0 {
		p.Size = 20
	}
	if p.Page < 0 {
		p.Page = 0
	}
	items, err := q.store.ListBySeller(ctx, sellerID, p)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list seller orders")
	}
	return items, nil
}

func visibleTo(view *OrderView, req Requester) bool {
	if view.UserID == req.UserID {
		return true
	}
	if req.Role == RoleSeller {
		for _, it := range view.Items {
			if it.SellerID == req.UserID {
				return true
			}
		}
	}
	return false
}
