package storage

import (
	"context"

	"stockwarden/internal/domain"
)

// Tx is one serialized unit of stock work. Implementations must take a row
// lock on the product before any availability math performed inside the
// transaction, so the read and the subsequent write cannot interleave with
// a concurrent transaction on the same product.
type Tx interface {
	// LockProduct reads the product under an exclusive row lock.
	LockProduct(ctx context.Context, productID int) (*domain.Product, error)
	// SumActiveReservations aggregates live holds for a product, skipping
	// rows owned by excludeOrderID (0 excludes nothing).
	SumActiveReservations(ctx context.Context, productID int, excludeOrderID uint) (int, error)
	OrderItem(ctx context.Context, itemID uint) (*domain.OrderItem, error)
	UpdateOrderItemQuantity(ctx context.Context, itemID uint, quantity int) error
	InsertReservation(ctx context.Context, res domain.Reservation) (uint, error)
	DeleteOrderReservations(ctx context.Context, orderID uint) (int64, error)
	Commit() error
	Rollback() error
}

// TxManager opens stock transactions. Satisfied by the MySQL store; tests
// substitute func-field fakes.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}
