package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"stockwarden/internal/domain"
	"stockwarden/internal/errors"
	"stockwarden/internal/storage"
)

// Store opens RepeatableRead transactions over the stock tables. All
// availability math on mutating paths goes through a Tx from here so the
// product row lock serializes concurrent decisions per product.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, errors.NewUnavailableError("beginning stock transaction", err)
	}
	return &Tx{tx: tx}, nil
}

type Tx struct {
	tx *sql.Tx
}

func (t *Tx) LockProduct(ctx context.Context, productID int) (*domain.Product, error) {
	query := `
		SELECT id, name, onHand, managesStock, backordersAllowed, stockStatus, createdAt, updatedAt
		FROM Product
		WHERE id = ?
		FOR UPDATE
	`

	var p domain.Product
	err := t.tx.QueryRowContext(ctx, query, productID).Scan(
		&p.ID, &p.Name, &p.OnHand, &p.ManagesStock, &p.BackordersAllowed, &p.StockStatus,
		&p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", productID))
	}
	if err != nil {
		return nil, fmt.Errorf("locking product row: %w", err)
	}

	return &p, nil
}

func (t *Tx) SumActiveReservations(ctx context.Context, productID int, excludeOrderID uint) (int, error) {
	return sumActiveReservations(ctx, t.tx, productID, excludeOrderID)
}

func (t *Tx) OrderItem(ctx context.Context, itemID uint) (*domain.OrderItem, error) {
	query := `SELECT id, orderId, productId, quantity FROM OrderItems WHERE id = ?`

	var item domain.OrderItem
	err := t.tx.QueryRowContext(ctx, query, itemID).Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order item with id %d not found", itemID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order item: %w", err)
	}

	return &item, nil
}

func (t *Tx) UpdateOrderItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	query := `UPDATE OrderItems SET quantity = ? WHERE id = ?`

	result, err := t.tx.ExecContext(ctx, query, quantity, itemID)
	if err != nil {
		return fmt.Errorf("updating order item quantity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order item with id %d not found", itemID))
	}

	return nil
}

func (t *Tx) InsertReservation(ctx context.Context, res domain.Reservation) (uint, error) {
	query := `INSERT INTO StockReservations (productId, orderId, quantity, expiresAt) VALUES (?, ?, ?, ?)`

	result, err := t.tx.ExecContext(ctx, query, res.ProductID, res.OrderID, res.Quantity, res.ExpiresAt)
	if err != nil {
		return 0, fmt.Errorf("inserting reservation: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

func (t *Tx) DeleteOrderReservations(ctx context.Context, orderID uint) (int64, error) {
	return deleteOrderReservations(ctx, t.tx, orderID)
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sumActiveReservations is shared between the transactional store and the
// pool-scoped reservation repository. A reservation counts only while its
// owning order is in a reservable status and its expiry is in the future;
// excludeOrderID 0 never matches a real order id, so it excludes nothing.
func sumActiveReservations(ctx context.Context, db execer, productID int, excludeOrderID uint) (int, error) {
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
	if err := db.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return 0, errors.NewUnavailableError("aggregating active reservations", err)
	}

	return sum, nil
}

func deleteOrderReservations(ctx context.Context, db execer, orderID uint) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM StockReservations WHERE orderId = ?`, orderID)
	if err != nil {
		return 0, fmt.Errorf("deleting reservations for order %d: %w", orderID, err)
	}

	return result.RowsAffected()
}
