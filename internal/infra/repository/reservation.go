package repository

import (
	"context"
	"time"

	"agora/internal/domain/stock"
	"agora/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *stock.Reservation) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO reservations (id, product_id, quantity, order_number, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		res.ID(), res.ProductID(), res.Quantity(), res.OrderNumber(), res.CreatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create reservation", err)
	}
	return nil
}

func (r *ReservationRepository) DeleteByOrderNumber(ctx context.Context, orderNumber string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM reservations WHERE order_number = $1`, orderNumber)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete reservations by order", err)
	}
	return tag.RowsAffected(), nil
}

// FindOlderThan is the reaper's lookup-by-age query; created_at is indexed.
func (r *ReservationRepository) FindOlderThan(ctx context.Context, cutoff time.Time) ([]*stock.Reservation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, product_id, quantity, order_number, created_at
		   FROM reservations
		  WHERE created_at < $1
		  ORDER BY created_at`,
		cutoff)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query expired reservations", err)
	}
	defer rows.Close()

	var result []*stock.Reservation
	for rows.Next() {
		var (
			id          uuid.UUID
			productID   uuid.UUID
			quantity    int32
			orderNumber string
			createdAt   time.Time
		)
		if err := rows.Scan(&id, &productID, &quantity, &orderNumber, &createdAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation row", err)
		}
		result = append(result, stock.ReconstructReservation(id, productID, quantity, orderNumber, createdAt))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservation rows", err)
	}
	return result, nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete reservation", err)
	}
	return nil
}
