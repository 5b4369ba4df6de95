package readstore

import (
	"context"
	"errors"

	"agora/internal/infra"
	"agora/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderReadStore serves the query side directly from SQL; no aggregate
// reconstruction, just view structs.
type OrderReadStore struct {
	db *pgxpool.Pool
}

func NewOrderReadStore(db *pgxpool.Pool) *OrderReadStore {
	return &OrderReadStore{db: db}
}

func (s *OrderReadStore) FindByNumber(ctx context.Context, orderNumber string) (*queries.OrderView, error) {
	var view queries.OrderView
	err := s.db.QueryRow(ctx,
		`SELECT order_number, user_id, status, payment_method,
		        subtotal_cents, tax_cents, shipping_cents, total_cents,
		        street, city, postal_code, country,
		        created_at, updated_at
		   FROM orders WHERE order_number = $1`,
		orderNumber).Scan(
		&view.OrderNumber, &view.UserID, &view.Status, &view.PaymentMethod,
		&view.SubtotalCents, &view.TaxCents, &view.ShippingCents, &view.TotalCents,
		&view.Street, &view.City, &view.PostalCode, &view.Country,
		&view.CreatedAt, &view.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order view", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT product_id, product_name, seller_id, price_cents, quantity, image_url
		   FROM order_items WHERE order_number = $1 ORDER BY id`,
		orderNumber)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query order item views", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it queries.OrderItemView
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.SellerID, &it.PriceCents, &it.Quantity, &it.ImageURL); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item view", err)
		}
		view.Items = append(view.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order item views", err)
	}
	return &view, nil
}

func (s *OrderReadStore) ListByBuyer(ctx context.Context, userID uuid.UUID) ([]*queries.OrderListItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT o.order_number, o.status, o.total_cents,
		        (SELECT COUNT(*) FROM order_items i WHERE i.order_number = o.order_number),
		        o.created_at
		   FROM orders o
		  WHERE o.user_id = $1
		  ORDER BY o.created_at DESC`,
		userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list buyer orders", err)
	}
	return scanListItems(rows)
}

// SearchByBuyer filters the buyer's history by item-name keyword and
// optional status, newest first.
func (s *OrderReadStore) SearchByBuyer(ctx context.Context, userID uuid.UUID, p queries.SearchParams) ([]*queries.OrderListItem, error) {
	status := ""
	if p.Status != nil {
		status = *p.Status
	}
	rows, err := s.db.Query(ctx,
		`SELECT o.order_number, o.status, o.total_cents,
		        (SELECT COUNT(*) FROM order_items i WHERE i.order_number = o.order_number),
		        o.created_at
		   FROM orders o
		  WHERE o.user_id = $1
		    AND ($2 = '' OR EXISTS (
		          SELECT 1 FROM order_items i
		           WHERE i.order_number = o.order_number
		             AND i.product_name ILIKE '%' || $2 || '%'))
		    AND ($3 = '' OR o.status = $3)
		  ORDER BY o.created_at DESC
		  LIMIT $4 OFFSET $5`,
		userID, p.Keyword, status, p.Size, p.Page*p.Size)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to search buyer orders", err)
	}
	return scanListItems(rows)
}

// ListBySeller returns orders containing at least one of the seller's
// items, so a seller can work their fulfilment queue.
func (s *OrderReadStore) ListBySeller(ctx context.Context, sellerID uuid.UUID, p queries.PageParams) ([]*queries.OrderListItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT o.order_number, o.status, o.total_cents,
		        (SELECT COUNT(*) FROM order_items i WHERE i.order_number = o.order_number),
		        o.created_at
		   FROM orders o
		  WHERE EXISTS (
		          SELECT 1 FROM order_items i
		           WHERE i.order_number = o.order_number AND i.seller_id = $1)
		  ORDER BY o.created_at DESC
		  LIMIT $2 OFFSET $3`,
		sellerID, p.Size, p.Page*p.Size)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list seller orders", err)
	}
	return scanListItems(rows)
}

func scanListItems(rows pgx.Rows) ([]*queries.OrderListItem, error) {
	defer rows.Close()

	var result []*queries.OrderListItem
	for rows.Next() {
		var item queries.OrderListItem
		if err := rows.Scan(&item.OrderNumber, &item.Status, &item.TotalCents, &item.ItemCount, &item.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order list row", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order list rows", err)
	}
	return result, nil
}
