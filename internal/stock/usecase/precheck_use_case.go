package usecase

import (
	"context"

	"go.uber.org/zap"

	"stockwarden/internal/auth"
	"stockwarden/internal/dto"
	apperrors "stockwarden/internal/errors"
)

// PrecheckUseCase answers the admin client's "would this increase fit right
// now" question before the edit is submitted. Read-only and advisory: it
// changes no state and has no authority, the admin edit checkpoint is the
// actual gate.
type PrecheckUseCase struct {
	authz  auth.Authorizer
	calc   AvailabilityCalculator
	logger *zap.Logger
}

func NewPrecheckUseCase(authz auth.Authorizer, calc AvailabilityCalculator, logger *zap.Logger) *PrecheckUseCase {
	return &PrecheckUseCase{
		authz:  authz,
		calc:   calc,
		logger: logger,
	}
}

// Precheck reports on-hand, reserved and available stock for one
// product/order pair, and whether a quantity increase of requested units
// would currently fit.
func (uc *PrecheckUseCase) Precheck(ctx context.Context, productID int, orderID uint, requested int) (*dto.StockPrecheck, error) {
	if !uc.authz.CallerMayEditOrders(ctx) {
		return nil, apperrors.NewUnauthorizedError("caller may not edit orders")
	}

	av, err := uc.calc.Compute(ctx, productID, orderID)
	if err != nil {
		return nil, err
	}

	available := av.Available
	if available < 0 {
		available = 0
	}

	satisfiable := true
	if av.Product.StockGuarded() && requested > available {
		satisfiable = false
	}

	return &dto.StockPrecheck{
		ProductID:   productID,
		OrderID:     orderID,
		OnHand:      av.Product.OnHand,
		Reserved:    av.Reserved,
		Available:   available,
		StockStatus: string(av.Product.StockStatus),
		Requested:   requested,
		Satisfiable: satisfiable,
	}, nil
}
