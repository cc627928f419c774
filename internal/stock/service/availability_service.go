package service

import (
	"context"

	"stockwarden/internal/domain"
)

type Catalog interface {
	FindByID(ctx context.Context, productID int) (*domain.Product, error)
}

type ReservationReader interface {
	SumActive(ctx context.Context, productID int, excludeOrderID uint) (int, error)
}

// Availability is the calculator output for one product/order pair. It is
// never persisted and never cached across requests: every checkpoint
// recomputes it to avoid compounding staleness with the read/decide race.
type Availability struct {
	Product  domain.Product
	Reserved int
	// Available is OnHand minus Reserved. It can be negative when other
	// orders hold stock while the caller's own reservation is excluded;
	// callers treat a negative value as zero margin.
	Available int
}

// AvailabilityService combines the catalog's on-hand quantity with the sum
// of active reservations. Pure reads, no side effects. Collaborator errors
// are propagated, never treated as zero reservations.
type AvailabilityService struct {
	catalog      Catalog
	reservations ReservationReader
}

func NewAvailabilityService(catalog Catalog, reservations ReservationReader) *AvailabilityService {
	return &AvailabilityService{
		catalog:      catalog,
		reservations: reservations,
	}
}

// Compute reads on-hand and reserved quantities for a product, excluding
// reservations owned by excludeOrderID (0 excludes nothing).
func (s *AvailabilityService) Compute(ctx context.Context, productID int, excludeOrderID uint) (*Availability, error) {
	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	reserved, err := s.reservations.SumActive(ctx, productID, excludeOrderID)
	if err != nil {
		return nil, err
	}

	return &Availability{
		Product:   *product,
		Reserved:  reserved,
		Available: product.OnHand - reserved,
	}, nil
}

// Available returns just the available quantity.
func (s *AvailabilityService) Available(ctx context.Context, productID int, excludeOrderID uint) (int, error) {
	av, err := s.Compute(ctx, productID, excludeOrderID)
	if err != nil {
		return 0, err
	}
	return av.Available, nil
}
