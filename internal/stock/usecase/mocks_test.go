package usecase

import (
	"context"
	"sync"

	"stockwarden/internal/domain"
	"stockwarden/internal/stock/service"
	"stockwarden/internal/storage"
)

type fakeTx struct {
	LockProductFunc             func(ctx context.Context, productID int) (*domain.Product, error)
	SumActiveReservationsFunc   func(ctx context.Context, productID int, excludeOrderID uint) (int, error)
	OrderItemFunc               func(ctx context.Context, itemID uint) (*domain.OrderItem, error)
	UpdateOrderItemQuantityFunc func(ctx context.Context, itemID uint, quantity int) error
	InsertReservationFunc       func(ctx context.Context, res domain.Reservation) (uint, error)
	DeleteOrderReservationsFunc func(ctx context.Context, orderID uint) (int64, error)
	CommitErr                   error

	committed  bool
	rolledBack bool
	updates    map[uint]int
}

func newFakeTx() *fakeTx {
	return &fakeTx{updates: make(map[uint]int)}
}

func (f *fakeTx) LockProduct(ctx context.Context, productID int) (*domain.Product, error) {
	return f.LockProductFunc(ctx, productID)
}

func (f *fakeTx) SumActiveReservations(ctx context.Context, productID int, excludeOrderID uint) (int, error) {
	return f.SumActiveReservationsFunc(ctx, productID, excludeOrderID)
}

func (f *fakeTx) OrderItem(ctx context.Context, itemID uint) (*domain.OrderItem, error) {
	return f.OrderItemFunc(ctx, itemID)
}

func (f *fakeTx) UpdateOrderItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	if f.UpdateOrderItemQuantityFunc != nil {
		if err := f.UpdateOrderItemQuantityFunc(ctx, itemID, quantity); err != nil {
			return err
		}
	}
	f.updates[itemID] = quantity
	return nil
}

func (f *fakeTx) InsertReservation(ctx context.Context, res domain.Reservation) (uint, error) {
	if f.InsertReservationFunc != nil {
		return f.InsertReservationFunc(ctx, res)
	}
	return 1, nil
}

func (f *fakeTx) DeleteOrderReservations(ctx context.Context, orderID uint) (int64, error) {
	if f.DeleteOrderReservationsFunc != nil {
		return f.DeleteOrderReservationsFunc(ctx, orderID)
	}
	return 0, nil
}

func (f *fakeTx) Commit() error {
	if f.CommitErr != nil {
		return f.CommitErr
	}
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback() error {
	if !f.committed {
		f.rolledBack = true
	}
	return nil
}

type fakeTxManager struct {
	BeginFunc func(ctx context.Context) (storage.Tx, error)
	begun     int
}

func (f *fakeTxManager) Begin(ctx context.Context) (storage.Tx, error) {
	f.begun++
	return f.BeginFunc(ctx)
}

type mockOrderReader struct {
	FindByIDFunc func(ctx context.Context, id uint) (*domain.Order, error)
}

func (m *mockOrderReader) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	return m.FindByIDFunc(ctx, id)
}

type mockSink struct {
	mu      sync.Mutex
	records []domain.DiagnosticRecord
	err     error
}

func (m *mockSink) Record(_ context.Context, rec domain.DiagnosticRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return m.err
}

type mockAuthorizer struct {
	allow bool
}

func (m *mockAuthorizer) CallerMayEditOrders(context.Context) bool {
	return m.allow
}

type mockCalculator struct {
	ComputeFunc func(ctx context.Context, productID int, excludeOrderID uint) (*service.Availability, error)
}

func (m *mockCalculator) Compute(ctx context.Context, productID int, excludeOrderID uint) (*service.Availability, error) {
	return m.ComputeFunc(ctx, productID, excludeOrderID)
}
