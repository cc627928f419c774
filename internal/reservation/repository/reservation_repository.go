package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"stockwarden/internal/domain"
	"stockwarden/internal/errors"
)

type MySQLReservationRepository struct {
	db *sql.DB
}

func NewMySQLReservationRepository(db *sql.DB) *MySQLReservationRepository {
	return &MySQLReservationRepository{db: db}
}

// SumActive aggregates live holds on a product outside any transaction.
// This is the advisory fast path used by read-only checkpoints; mutating
// checkpoints re-read the same aggregate under a product row lock.
// A reservation counts only while its owning order is in a reservable
// status and its expiry is in the future. Rows owned by excludeOrderID are
// skipped; 0 never matches a real order id, so it excludes nothing.
func (r *MySQLReservationRepository) SumActive(ctx context.Context, productID int, excludeOrderID uint) (int, error) {
	placeholders := make([]string, len(domain.ReservableStatuses))
	args := make([]interface{}, 0, len(domain.ReservableStatuses)+2)
	args = append(args, productID)
	for i, status := range domain.ReservableStatuses {
		placeholders[i] = "?"
		args = append(args, status)
	}
	args = append(args, excludeOrderID)

	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(r.quantity), 0)
		FROM StockReservations r
		JOIN Orders o ON o.id = r.orderId
		WHERE r.productId = ?
		  AND o.status IN (%s)
		  AND r.expiresAt > NOW()
		  AND r.orderId <> ?`,
		strings.Join(placeholders, ", "),
	)

	var sum int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return 0, errors.NewUnavailableError("aggregating active reservations", err)
	}

	return sum, nil
}

// DeleteByOrder removes every hold owned by an order. Deleting an order
// with no reservations is a no-op, not an error.
func (r *MySQLReservationRepository) DeleteByOrder(ctx context.Context, orderID uint) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM StockReservations WHERE orderId = ?`, orderID)
	if err != nil {
		return 0, fmt.Errorf("deleting reservations for order %d: %w", orderID, err)
	}

	return result.RowsAffected()
}

func (r *MySQLReservationRepository) FindByOrder(ctx context.Context, orderID uint) ([]domain.Reservation, error) {
	query := `
		SELECT id, productId, orderId, quantity, expiresAt, createdAt
		FROM StockReservations
		WHERE orderId = ?
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying reservations by order: %w", err)
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		err := rows.Scan(&res.ID, &res.ProductID, &res.OrderID, &res.Quantity, &res.ExpiresAt, &res.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reservation rows: %w", err)
	}

	return reservations, nil
}
