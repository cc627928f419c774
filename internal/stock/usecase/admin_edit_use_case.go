package usecase

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"stockwarden/internal/auth"
	"stockwarden/internal/dto"
	apperrors "stockwarden/internal/errors"
	"stockwarden/internal/storage"
)

// AdminEditUseCase is the privileged quantity-edit checkpoint. Unlike the
// regular flow it never clamps: a silent mutation of an operator's edit
// would produce a confusing, unreviewed order, so any shortfall aborts the
// whole edit atomically. Only the positive delta per line competes for
// available stock; decreases always succeed.
type AdminEditUseCase struct {
	authz            auth.Authorizer
	txm              storage.TxManager
	logger           *zap.Logger
	txTimeout        time.Duration
	maxRetryAttempts int
}

func NewAdminEditUseCase(
	authz auth.Authorizer,
	txm storage.TxManager,
	logger *zap.Logger,
	txTimeout time.Duration,
	maxRetryAttempts int,
) *AdminEditUseCase {
	return &AdminEditUseCase{
		authz:            authz,
		txm:              txm,
		logger:           logger,
		txTimeout:        txTimeout,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *AdminEditUseCase) EditQuantities(ctx context.Context, orderID uint, edits []dto.AdminQuantityEdit) ([]dto.AdminQuantityEdit, error) {
	// Rejected before any stock computation occurs.
	if !uc.authz.CallerMayEditOrders(ctx) {
		return nil, apperrors.NewUnauthorizedError("caller may not edit orders")
	}

	if err := validateAdminEdits(edits); err != nil {
		return nil, err
	}

	uc.logger.Info("admin quantity edit started", zap.Uint("orderId", orderID), zap.Int("itemCount", len(edits)))

	return uc.editWithRetry(ctx, orderID, edits)
}

func (uc *AdminEditUseCase) editWithRetry(ctx context.Context, orderID uint, edits []dto.AdminQuantityEdit) ([]dto.AdminQuantityEdit, error) {
	maxAttempts := uc.maxRetryAttempts
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		applied, err := uc.editOnce(ctx, orderID, edits)
		if err == nil {
			return applied, nil
		}

		if isDeadlockError(err) {
			if attempt < maxAttempts {
				backoff := backoffs[len(backoffs)-1]
				if attempt-1 < len(backoffs) {
					backoff = backoffs[attempt-1]
				}
				jitter := backoff * time.Duration(0.8+rand.Float64()*0.4)
				time.Sleep(backoff + jitter)
				uc.logger.Warn("deadlock detected, retrying", zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts), zap.Uint("orderId", orderID))
				continue
			}
			break
		}

		return nil, err
	}

	return nil, apperrors.NewDeadlockError("max retries exceeded")
}

type resolvedEdit struct {
	itemID      uint
	productID   int
	oldQuantity int
	newQuantity int
}

func (uc *AdminEditUseCase) editOnce(ctx context.Context, orderID uint, edits []dto.AdminQuantityEdit) ([]dto.AdminQuantityEdit, error) {
	txCtx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.txm.Begin(txCtx)
	if err != nil {
		uc.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	resolved := make([]resolvedEdit, 0, len(edits))
	for _, edit := range edits {
		item, err := tx.OrderItem(txCtx, edit.ItemID)
		if err != nil {
			return nil, err
		}
		if item.OrderID != orderID {
			return nil, apperrors.NewNotFoundError("order item does not belong to this order")
		}
		resolved = append(resolved, resolvedEdit{
			itemID:      item.ID,
			productID:   item.ProductID,
			oldQuantity: item.Quantity,
			newQuantity: edit.Quantity,
		})
	}

	// Lock product rows in ascending id order so concurrent multi-product
	// edits cannot deadlock each other.
	sort.Slice(resolved, func(i, j int) bool { return resolved[i].productID < resolved[j].productID })

	var shortfalls []apperrors.StockShortfall
	for _, re := range resolved {
		product, err := tx.LockProduct(txCtx, re.productID)
		if err != nil {
			return nil, err
		}

		if !product.StockGuarded() {
			continue
		}

		delta := re.newQuantity - re.oldQuantity
		if delta <= 0 {
			continue
		}

		reserved, err := tx.SumActiveReservations(txCtx, product.ID, orderID)
		if err != nil {
			return nil, err
		}

		available := product.OnHand - reserved
		if available < 0 {
			available = 0
		}

		if delta > available {
			shortfalls = append(shortfalls, apperrors.StockShortfall{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   delta,
				Available:   available,
			})
		}
	}

	// Any offending line aborts the whole edit; the rollback guarantees no
	// partial apply.
	if len(shortfalls) > 0 {
		uc.logger.Warn("admin edit blocked on stock",
			zap.Uint("orderId", orderID),
			zap.Int("shortfallCount", len(shortfalls)))
		return nil, apperrors.NewInsufficientStockError("quantity increase exceeds available stock", shortfalls...)
	}

	applied := make([]dto.AdminQuantityEdit, 0, len(resolved))
	for _, re := range resolved {
		if re.newQuantity != re.oldQuantity {
			if err := tx.UpdateOrderItemQuantity(txCtx, re.itemID, re.newQuantity); err != nil {
				return nil, err
			}
		}
		applied = append(applied, dto.AdminQuantityEdit{ItemID: re.itemID, Quantity: re.newQuantity})
	}

	if err := tx.Commit(); err != nil {
		uc.logger.Error("failed to commit admin edit", zap.Uint("orderId", orderID), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("admin quantity edit committed", zap.Uint("orderId", orderID), zap.Int("itemCount", len(applied)))
	return applied, nil
}

func validateAdminEdits(edits []dto.AdminQuantityEdit) error {
	var details []apperrors.ValidationDetail

	if len(edits) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	seen := make(map[uint]bool)
	for idx, edit := range edits {
		if edit.ItemID == 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].itemId",
				Message: "itemId must be a positive integer",
			})
		}

		if seen[edit.ItemID] {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].itemId",
				Message: "itemId must not be duplicated",
			})
		}
		seen[edit.ItemID] = true

		if edit.Quantity < 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].quantity",
				Message: "quantity must not be negative",
			})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}
