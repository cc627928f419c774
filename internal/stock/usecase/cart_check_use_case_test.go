package usecase

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"stockwarden/internal/domain"
	"stockwarden/internal/dto"
	apperrors "stockwarden/internal/errors"
	"stockwarden/internal/stock/service"
)

func fixedCalculator(products map[int]service.Availability) *mockCalculator {
	return &mockCalculator{
		ComputeFunc: func(ctx context.Context, productID int, excludeOrderID uint) (*service.Availability, error) {
			av, ok := products[productID]
			if !ok {
				return nil, apperrors.NewNotFoundError("product not found")
			}
			return &av, nil
		},
	}
}

func TestValidateCart_FlagsInsufficientLines(t *testing.T) {
	calc := fixedCalculator(map[int]service.Availability{
		1: {Product: domain.Product{ID: 1, ManagesStock: true}, Available: 2},
		2: {Product: domain.Product{ID: 2, ManagesStock: true}, Available: 10},
	})
	uc := NewCartCheckUseCase(calc, zap.NewNop())

	statuses, err := uc.ValidateCart(context.Background(), 0, []dto.CartLine{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !statuses[0].InsufficientStock {
		t.Error("expected line 1 flagged insufficient")
	}
	if statuses[1].InsufficientStock {
		t.Error("expected line 2 sufficient")
	}
}

func TestValidateCart_BackorderBypass(t *testing.T) {
	calc := fixedCalculator(map[int]service.Availability{
		1: {Product: domain.Product{ID: 1, ManagesStock: true, BackordersAllowed: true}, Available: -50},
	})
	uc := NewCartCheckUseCase(calc, zap.NewNop())

	statuses, err := uc.ValidateCart(context.Background(), 0, []dto.CartLine{
		{ProductID: 1, Quantity: 1000},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if statuses[0].InsufficientStock {
		t.Error("backorderable product must always pass")
	}
}

func TestValidateCart_NegativeAvailableTreatedAsZero(t *testing.T) {
	calc := fixedCalculator(map[int]service.Availability{
		1: {Product: domain.Product{ID: 1, ManagesStock: true}, Available: -3},
	})
	uc := NewCartCheckUseCase(calc, zap.NewNop())

	statuses, err := uc.ValidateCart(context.Background(), 0, []dto.CartLine{
		{ProductID: 1, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !statuses[0].InsufficientStock {
		t.Error("expected insufficiency against zero margin, not a crash or a pass")
	}
}

func TestValidateCart_PropagatesCalculatorError(t *testing.T) {
	uc := NewCartCheckUseCase(fixedCalculator(nil), zap.NewNop())

	_, err := uc.ValidateCart(context.Background(), 0, []dto.CartLine{{ProductID: 9, Quantity: 1}})
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestValidateCheckout_CollectsOneErrorPerLine(t *testing.T) {
	calc := fixedCalculator(map[int]service.Availability{
		1: {Product: domain.Product{ID: 1, Name: "widget", ManagesStock: true}, Available: 2},
		2: {Product: domain.Product{ID: 2, Name: "gadget", ManagesStock: true}, Available: 0},
		3: {Product: domain.Product{ID: 3, Name: "gizmo", ManagesStock: true}, Available: 10},
	})
	uc := NewCartCheckUseCase(calc, zap.NewNop())

	err := uc.ValidateCheckout(context.Background(), 0, []dto.CartLine{
		{ProductID: 1, Quantity: 4},
		{ProductID: 2, Quantity: 1},
		{ProductID: 3, Quantity: 1},
	})

	ise, ok := apperrors.IsInsufficientStockError(err)
	if !ok {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if len(ise.Shortfalls) != 2 {
		t.Fatalf("expected 2 shortfalls, got %d", len(ise.Shortfalls))
	}
	if !strings.Contains(ise.Shortfalls[0].String(), "widget") {
		t.Errorf("expected human-readable message naming the product, got %q", ise.Shortfalls[0].String())
	}
}

func TestValidateCheckout_PassesWhenStockSuffices(t *testing.T) {
	calc := fixedCalculator(map[int]service.Availability{
		1: {Product: domain.Product{ID: 1, ManagesStock: true}, Available: 5},
	})
	uc := NewCartCheckUseCase(calc, zap.NewNop())

	if err := uc.ValidateCheckout(context.Background(), 0, []dto.CartLine{{ProductID: 1, Quantity: 5}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCheckout_ExcludesOwnOrder(t *testing.T) {
	var gotExclude uint
	calc := &mockCalculator{
		ComputeFunc: func(ctx context.Context, productID int, excludeOrderID uint) (*service.Availability, error) {
			gotExclude = excludeOrderID
			return &service.Availability{Product: domain.Product{ID: productID, ManagesStock: true}, Available: 10}, nil
		},
	}
	uc := NewCartCheckUseCase(calc, zap.NewNop())

	if err := uc.ValidateCheckout(context.Background(), 42, []dto.CartLine{{ProductID: 1, Quantity: 1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotExclude != 42 {
		t.Errorf("expected own order 42 excluded from the aggregate, got %d", gotExclude)
	}
}
