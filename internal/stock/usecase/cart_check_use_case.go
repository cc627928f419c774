package usecase

import (
	"context"

	"go.uber.org/zap"

	"stockwarden/internal/dto"
	apperrors "stockwarden/internal/errors"
)

// CartCheckUseCase runs the two read-only shopper checkpoints: the cart
// check flags insufficient lines, the checkout check blocks. Both are
// advisory reads with no mutation; the authoritative admission happens when
// the reservation is written under a row lock.
type CartCheckUseCase struct {
	calc   AvailabilityCalculator
	logger *zap.Logger
}

func NewCartCheckUseCase(calc AvailabilityCalculator, logger *zap.Logger) *CartCheckUseCase {
	return &CartCheckUseCase{
		calc:   calc,
		logger: logger,
	}
}

// ValidateCart marks each line that asks for more than is currently
// available. Products that do not manage stock or allow backorders always
// pass. Collaborator failures propagate: a line is never marked sufficient
// because the store could not be read.
func (uc *CartCheckUseCase) ValidateCart(ctx context.Context, orderID uint, lines []dto.CartLine) ([]dto.CartLineStatus, error) {
	statuses := make([]dto.CartLineStatus, 0, len(lines))

	for _, line := range lines {
		av, err := uc.calc.Compute(ctx, line.ProductID, orderID)
		if err != nil {
			return nil, err
		}

		insufficient := false
		if av.Product.StockGuarded() {
			available := av.Available
			if available < 0 {
				available = 0
			}
			insufficient = line.Quantity > available
		}

		statuses = append(statuses, dto.CartLineStatus{
			ProductID:         line.ProductID,
			Quantity:          line.Quantity,
			InsufficientStock: insufficient,
		})
	}

	return statuses, nil
}

// ValidateCheckout collects one shortfall per insufficient line item and
// blocks the checkout when any exist.
func (uc *CartCheckUseCase) ValidateCheckout(ctx context.Context, orderID uint, lines []dto.CartLine) error {
	var shortfalls []apperrors.StockShortfall

	for _, line := range lines {
		av, err := uc.calc.Compute(ctx, line.ProductID, orderID)
		if err != nil {
			return err
		}

		if !av.Product.StockGuarded() {
			continue
		}

		available := av.Available
		if available < 0 {
			available = 0
		}

		if line.Quantity > available {
			shortfalls = append(shortfalls, apperrors.StockShortfall{
				ProductID:   av.Product.ID,
				ProductName: av.Product.Name,
				Requested:   line.Quantity,
				Available:   available,
			})
		}
	}

	if len(shortfalls) > 0 {
		uc.logger.Info("checkout blocked on stock",
			zap.Uint("orderId", orderID),
			zap.Int("shortfallCount", len(shortfalls)))
		return apperrors.NewInsufficientStockError("not enough stock to complete checkout", shortfalls...)
	}

	return nil
}
