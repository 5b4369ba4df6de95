package repository

import (
	"context"

	"agora/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductLedgerRepository owns Product.quantity. Both primitives are
// single-row atomic updates; the guarded decrement is the only thing
// standing between concurrent checkouts and a negative counter.
type ProductLedgerRepository struct {
	db *pgxpool.Pool
}

func NewProductLedgerRepository(db *pgxpool.Pool) *ProductLedgerRepository {
	return &ProductLedgerRepository{db: db}
}

// Reserve decrements available quantity iff enough is available. The
// WHERE clause is the compare half of the compare-and-set: the loser of
// a race on the same product matches zero rows instead of going negative.
func (r *ProductLedgerRepository) Reserve(ctx context.Context, productID uuid.UUID, quantity int32) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products
		    SET quantity = quantity - $2, updated_at = now()
		  WHERE id = $1 AND quantity >= $2`,
		productID, quantity)
	if err != nil {
		return infra.WrapRepoErr("failed to reserve stock", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Zero rows: either the product is gone or the stock ran out.
	var exists bool
	err = r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return infra.WrapRepoErr("failed to check product existence", err)
	}
	if !exists {
		return infra.NewRepoErr("product not found", infra.KindNotFound)
	}
	return infra.NewRepoErr("insufficient stock", infra.KindConflict)
}

func (r *ProductLedgerRepository) Release(ctx context.Context, productID uuid.UUID, quantity int32) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products
		    SET quantity = quantity + $2, updated_at = now()
		  WHERE id = $1`,
		productID, quantity)
	if err != nil {
		return infra.WrapRepoErr("failed to release stock", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr("product not found", infra.KindNotFound)
	}
	return nil
}
