package usecase

import (
	"context"

	"stockwarden/internal/domain"
	"stockwarden/internal/stock/service"
)

type AvailabilityCalculator interface {
	Compute(ctx context.Context, productID int, excludeOrderID uint) (*service.Availability, error)
}

type OrderReader interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
}
