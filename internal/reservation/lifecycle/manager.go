package lifecycle

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stockwarden/internal/diagnostics"
	"stockwarden/internal/domain"
	"stockwarden/internal/events"
	"stockwarden/internal/storage"
)

type OrderReader interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
}

type ReservationReleaser interface {
	DeleteByOrder(ctx context.Context, orderID uint) (int64, error)
}

// Manager owns the reservation lifecycle: it writes holds when an order
// enters a reservable state and deletes them when the order reaches a
// terminal state. It subscribes to the order system's status transitions
// and never mutates order status itself.
type Manager struct {
	txm       storage.TxManager
	orders    OrderReader
	releaser  ReservationReleaser
	sink      diagnostics.Sink
	logger    *zap.Logger
	ttl       time.Duration
	txTimeout time.Duration
}

func NewManager(
	txm storage.TxManager,
	orders OrderReader,
	releaser ReservationReleaser,
	sink diagnostics.Sink,
	logger *zap.Logger,
	ttl time.Duration,
	txTimeout time.Duration,
) *Manager {
	return &Manager{
		txm:       txm,
		orders:    orders,
		releaser:  releaser,
		sink:      sink,
		logger:    logger,
		ttl:       ttl,
		txTimeout: txTimeout,
	}
}

// HandleOrderStatusChanged reacts to one status transition. Entry into any
// terminal state releases reservations unconditionally; entry into a
// reservable state from outside the reservable set writes the holds.
// Transitions inside the reservable set (draft to pending) keep the
// existing holds.
func (m *Manager) HandleOrderStatusChanged(ctx context.Context, ev events.OrderStatusChanged) error {
	switch {
	case domain.IsTerminalStatus(ev.NewStatus):
		return m.release(ctx, ev)
	case domain.IsReservableStatus(ev.NewStatus) && !domain.IsReservableStatus(ev.OldStatus):
		return m.reserve(ctx, ev)
	}
	return nil
}

// release deletes every hold the order owns. Idempotent: releasing an order
// with no reservations is a no-op. Failure is logged but never blocks the
// status transition; a stale reservation only reduces available stock
// conservatively until it expires.
func (m *Manager) release(ctx context.Context, ev events.OrderStatusChanged) error {
	deleted, err := m.releaser.DeleteByOrder(ctx, ev.OrderID)
	if err != nil {
		m.logger.Error("failed to release reservations",
			zap.Uint("orderId", ev.OrderID),
			zap.String("newStatus", ev.NewStatus),
			zap.Error(err))
		return nil
	}

	if deleted > 0 {
		m.logger.Info("reservations released",
			zap.Uint("orderId", ev.OrderID),
			zap.String("newStatus", ev.NewStatus),
			zap.Int64("deleted", deleted))
	}
	return nil
}

// reserve writes one hold per stock-managed, non-backorderable line item,
// replacing any holds left from a previous pass through a reservable state.
// Availability is re-verified under the product row lock; a shortfall is
// recorded as a non-blocking diagnostic and the hold is still written, so
// the order's claim stays visible to every other checkpoint.
func (m *Manager) reserve(ctx context.Context, ev events.OrderStatusChanged) error {
	order, err := m.orders.FindByID(ctx, ev.OrderID)
	if err != nil {
		return err
	}

	txCtx, cancel := context.WithTimeout(ctx, m.txTimeout)
	defer cancel()

	tx, err := m.txm.Begin(txCtx)
	if err != nil {
		m.logger.Error("failed to begin reservation transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if _, err := tx.DeleteOrderReservations(txCtx, ev.OrderID); err != nil {
		return err
	}

	expiresAt := time.Now().Add(m.ttl)
	var shortfalls []domain.DiagnosticRecord

	// Order items arrive sorted by productId, so concurrent reservation
	// passes lock product rows in the same order.
	for _, item := range order.Items {
		if item.Quantity <= 0 {
			continue
		}

		product, err := tx.LockProduct(txCtx, item.ProductID)
		if err != nil {
			return err
		}

		if !product.StockGuarded() {
			continue
		}

		reserved, err := tx.SumActiveReservations(txCtx, product.ID, ev.OrderID)
		if err != nil {
			return err
		}

		available := product.OnHand - reserved
		if available < 0 {
			available = 0
		}

		if available < item.Quantity {
			shortfalls = append(shortfalls, domain.DiagnosticRecord{
				Kind:      domain.DiagnosticReservationShortfall,
				ProductID: product.ID,
				OrderID:   ev.OrderID,
				Requested: item.Quantity,
				Available: available,
				At:        time.Now().UTC(),
			})
		}

		res := domain.Reservation{
			ProductID: item.ProductID,
			OrderID:   ev.OrderID,
			Quantity:  item.Quantity,
			ExpiresAt: expiresAt,
		}
		if _, err := tx.InsertReservation(txCtx, res); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		m.logger.Error("failed to commit reservations", zap.Uint("orderId", ev.OrderID), zap.Error(err))
		return err
	}

	m.logger.Info("reservations created",
		zap.Uint("orderId", ev.OrderID),
		zap.String("newStatus", ev.NewStatus),
		zap.Int("itemCount", len(order.Items)))

	for _, rec := range shortfalls {
		if err := m.sink.Record(ctx, rec); err != nil {
			m.logger.Error("failed to record shortfall diagnostic", zap.Error(err))
		}
	}

	return nil
}
