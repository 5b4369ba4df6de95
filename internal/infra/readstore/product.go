package readstore

import (
	"context"
	"errors"

	"agora/internal/infra"
	"agora/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductCatalog struct {
	db *pgxpool.Pool
}

func NewProductCatalog(db *pgxpool.Pool) *ProductCatalog {
	return &ProductCatalog{db: db}
}

// FindByID reads the current catalog row; checkout snapshots name and
// price from it so later catalog edits cannot rewrite order history.
func (c *ProductCatalog) FindByID(ctx context.Context, id uuid.UUID) (*commands.ProductSnapshot, error) {
	var snap commands.ProductSnapshot
	err := c.db.QueryRow(ctx,
		`SELECT id, name, seller_id, price_cents, quantity, COALESCE(image_urls, '{}')
		   FROM products WHERE id = $1`,
		id).Scan(&snap.ID, &snap.Name, &snap.SellerID, &snap.Price, &snap.Quantity, &snap.Images)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find product", err)
	}
	return &snap, nil
}
