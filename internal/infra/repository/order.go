package repository

import (
	"context"
	"errors"
	"time"

	"agora/internal/domain/order"
	"agora/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists the order header and its item snapshots in one
// transaction. Items are never updated afterwards.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return infra.WrapRepoErr("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO orders
		   (order_number, user_id, status, payment_method,
		    subtotal_cents, tax_cents, shipping_cents, total_cents,
		    street, city, postal_code, country,
		    version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		o.OrderNumber(), o.UserID(), o.Status().String(), o.PaymentMethod().String(),
		o.Subtotal().Cents(), o.Tax().Cents(), o.ShippingCost().Cents(), o.Total().Cents(),
		o.Address().Street, o.Address().City, o.Address().PostalCode, o.Address().Country,
		o.Version(), o.CreatedAt(), o.UpdatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to insert order", err)
	}

	for _, it := range o.Items() {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items
			   (order_number, product_id, product_name, seller_id, price_cents, quantity, image_url)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			o.OrderNumber(), it.ProductID, it.ProductName, it.SellerID,
			it.Price.Cents(), it.Quantity, it.ImageURL)
		if err != nil {
			return infra.WrapRepoErr("failed to insert order item", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return infra.WrapRepoErr("failed to commit order transaction", err)
	}
	return nil
}

func (r *OrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var (
		userID                                 uuid.UUID
		statusRaw, paymentRaw                  string
		subtotal, tax, shipping, total         int64
		street, city, postalCode, country      string
		version                                int32
		createdAt, updatedAt                   time.Time
	)
	err := r.db.QueryRow(ctx,
		`SELECT user_id, status, payment_method,
		        subtotal_cents, tax_cents, shipping_cents, total_cents,
		        street, city, postal_code, country,
		        version, created_at, updated_at
		   FROM orders WHERE order_number = $1`,
		orderNumber).Scan(
		&userID, &statusRaw, &paymentRaw,
		&subtotal, &tax, &shipping, &total,
		&street, &city, &postalCode, &country,
		&version, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order", err)
	}

	items, err := r.findItems(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	return order.Reconstruct(
		orderNumber, userID, items,
		order.Status(statusRaw), order.PaymentMethod(paymentRaw),
		order.NewMoney(subtotal), order.NewMoney(tax), order.NewMoney(shipping), order.NewMoney(total),
		order.Address{Street: street, City: city, PostalCode: postalCode, Country: country},
		version, createdAt, updatedAt,
	), nil
}

// UpdateStatus is the versioned compare-and-set over the order row.
// Zero rows affected on a live order means a concurrent writer won.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderNumber string, status order.Status, expectedVersion int32, updatedAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders
		    SET status = $2, version = version + 1, updated_at = $3
		  WHERE order_number = $1 AND version = $4`,
		orderNumber, status.String(), updatedAt, expectedVersion)
	if err != nil {
		return infra.WrapRepoErr("failed to update order status", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE order_number = $1)`, orderNumber).Scan(&exists)
	if err != nil {
		return infra.WrapRepoErr("failed to check order existence", err)
	}
	if !exists {
		return infra.NewRepoErr("order not found", infra.KindNotFound)
	}
	return infra.NewRepoErr("order version conflict", infra.KindConflict)
}

func (r *OrderRepository) findItems(ctx context.Context, orderNumber string) ([]order.Item, error) {
	rows, err := r.db.Query(ctx,
		`SELECT product_id, product_name, seller_id, price_cents, quantity, image_url
		   FROM order_items WHERE order_number = $1 ORDER BY id`,
		orderNumber)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query order items", err)
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var (
			productID   uuid.UUID
			productName string
			sellerID    uuid.UUID
			priceCents  int64
			quantity    int32
			imageURL    string
		)
		if err := rows.Scan(&productID, &productName, &sellerID, &priceCents, &quantity, &imageURL); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item row", err)
		}
		items = append(items, order.Item{
			ProductID:   productID,
			ProductName: productName,
			SellerID:    sellerID,
			Price:       order.NewMoney(priceCents),
			Quantity:    quantity,
			ImageURL:    imageURL,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order item rows", err)
	}
	return items, nil
}
