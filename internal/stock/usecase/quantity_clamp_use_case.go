package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stockwarden/internal/diagnostics"
	"stockwarden/internal/domain"
	apperrors "stockwarden/internal/errors"
	"stockwarden/internal/events"
	"stockwarden/internal/storage"
)

// QuantityClampUseCase is the regular-flow order-item quantity checkpoint.
// Under legitimate concurrent shopper load it degrades gracefully: instead
// of failing, an overcommitted request is silently reduced to the available
// stock and the race is recorded to the diagnostic sink. The product row
// lock makes the read-then-write serialized per product.
type QuantityClampUseCase struct {
	txm       storage.TxManager
	orders    OrderReader
	sink      diagnostics.Sink
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewQuantityClampUseCase(
	txm storage.TxManager,
	orders OrderReader,
	sink diagnostics.Sink,
	logger *zap.Logger,
	txTimeout time.Duration,
) *QuantityClampUseCase {
	return &QuantityClampUseCase{
		txm:       txm,
		orders:    orders,
		sink:      sink,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

// SetItemQuantity applies a quantity request to a line item of a draft or
// pending order and returns the quantity actually applied.
func (uc *QuantityClampUseCase) SetItemQuantity(ctx context.Context, ev events.ItemQuantityRequested) (int, error) {
	if ev.Requested < 0 {
		return 0, apperrors.NewValidationError("quantity must not be negative", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must not be negative",
		})
	}

	order, err := uc.orders.FindByID(ctx, ev.OrderID)
	if err != nil {
		return 0, err
	}

	if !domain.IsReservableStatus(order.Status) {
		return 0, apperrors.NewConflictError("order is not in a reservable status")
	}

	txCtx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.txm.Begin(txCtx)
	if err != nil {
		uc.logger.Error("failed to begin transaction", zap.Error(err))
		return 0, err
	}
	// Rollback is a no-op after commit.
	defer tx.Rollback()

	item, err := tx.OrderItem(txCtx, ev.ItemID)
	if err != nil {
		return 0, err
	}

	if item.OrderID != ev.OrderID {
		return 0, apperrors.NewNotFoundError("order item does not belong to this order")
	}

	product, err := tx.LockProduct(txCtx, item.ProductID)
	if err != nil {
		return 0, err
	}

	applied := ev.Requested
	clamped := false
	available := 0

	if product.StockGuarded() {
		reserved, err := tx.SumActiveReservations(txCtx, product.ID, ev.OrderID)
		if err != nil {
			return 0, err
		}

		available = product.OnHand - reserved
		if available < 0 {
			available = 0
		}

		if applied > available {
			applied = available
			clamped = true
		}
	}

	if applied != item.Quantity {
		if err := tx.UpdateOrderItemQuantity(txCtx, item.ID, applied); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		uc.logger.Error("failed to commit quantity update", zap.Uint("orderId", ev.OrderID), zap.Error(err))
		return 0, err
	}

	if clamped {
		uc.logger.Warn("quantity clamped on stock race",
			zap.Uint("orderId", ev.OrderID),
			zap.Int("productId", product.ID),
			zap.Int("requested", ev.Requested),
			zap.Int("available", available))

		rec := domain.DiagnosticRecord{
			Kind:      domain.DiagnosticStockRaceClamped,
			ProductID: product.ID,
			OrderID:   ev.OrderID,
			Requested: ev.Requested,
			Available: available,
			At:        time.Now().UTC(),
		}
		if err := uc.sink.Record(ctx, rec); err != nil {
			// The clamp already happened; a sink failure must not undo it.
			uc.logger.Error("failed to record clamp diagnostic", zap.Error(err))
		}
	}

	return applied, nil
}
