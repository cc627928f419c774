package lifecycle

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"stockwarden/internal/domain"
	apperrors "stockwarden/internal/errors"
	"stockwarden/internal/events"
	"stockwarden/internal/storage"
)

type fakeTx struct {
	LockProductFunc           func(ctx context.Context, productID int) (*domain.Product, error)
	SumActiveReservationsFunc func(ctx context.Context, productID int, excludeOrderID uint) (int, error)

	inserted   []domain.Reservation
	deleted    []uint
	committed  bool
	rolledBack bool
}

func (f *fakeTx) LockProduct(ctx context.Context, productID int) (*domain.Product, error) {
	return f.LockProductFunc(ctx, productID)
}

func (f *fakeTx) SumActiveReservations(ctx context.Context, productID int, excludeOrderID uint) (int, error) {
	return f.SumActiveReservationsFunc(ctx, productID, excludeOrderID)
}

func (f *fakeTx) OrderItem(ctx context.Context, itemID uint) (*domain.OrderItem, error) {
	return nil, apperrors.NewNotFoundError("not used")
}

func (f *fakeTx) UpdateOrderItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	return nil
}

func (f *fakeTx) InsertReservation(ctx context.Context, res domain.Reservation) (uint, error) {
	f.inserted = append(f.inserted, res)
	return uint(len(f.inserted)), nil
}

func (f *fakeTx) DeleteOrderReservations(ctx context.Context, orderID uint) (int64, error) {
	f.deleted = append(f.deleted, orderID)
	return 0, nil
}

func (f *fakeTx) Commit() error {
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
	tx  *fakeTx
	err error
}

func (f *fakeTxManager) Begin(ctx context.Context) (storage.Tx, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

type mockOrderReader struct {
	order *domain.Order
	err   error
}

func (m *mockOrderReader) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

type mockReleaser struct {
	calls   []uint
	deleted int64
	err     error
}

func (m *mockReleaser) DeleteByOrder(ctx context.Context, orderID uint) (int64, error) {
	m.calls = append(m.calls, orderID)
	if m.err != nil {
		return 0, m.err
	}
	// Only the first release finds rows.
	if len(m.calls) > 1 {
		return 0, nil
	}
	return m.deleted, nil
}

type mockSink struct {
	records []domain.DiagnosticRecord
}

func (m *mockSink) Record(_ context.Context, rec domain.DiagnosticRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func newManager(txm storage.TxManager, orders OrderReader, releaser ReservationReleaser, sink *mockSink) *Manager {
	return NewManager(txm, orders, releaser, sink, zap.NewNop(), time.Hour, 5*time.Second)
}

func TestHandleOrderStatusChanged_TerminalReleases(t *testing.T) {
	releaser := &mockReleaser{deleted: 2}
	m := newManager(&fakeTxManager{}, &mockOrderReader{}, releaser, &mockSink{})

	err := m.HandleOrderStatusChanged(context.Background(), events.OrderStatusChanged{
		OrderID: 7, OldStatus: domain.OrderStatusPending, NewStatus: domain.OrderStatusCompleted,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(releaser.calls) != 1 || releaser.calls[0] != 7 {
		t.Errorf("expected one release for order 7, got %v", releaser.calls)
	}
}

func TestHandleOrderStatusChanged_ReleaseIsIdempotent(t *testing.T) {
	releaser := &mockReleaser{deleted: 2}
	m := newManager(&fakeTxManager{}, &mockOrderReader{}, releaser, &mockSink{})

	ev := events.OrderStatusChanged{
		OrderID: 7, OldStatus: domain.OrderStatusPending, NewStatus: domain.OrderStatusCancelled,
	}

	if err := m.HandleOrderStatusChanged(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error on first release: %v", err)
	}
	// Second release finds nothing to delete; that is a no-op, not an error.
	if err := m.HandleOrderStatusChanged(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error on second release: %v", err)
	}
	if len(releaser.calls) != 2 {
		t.Errorf("expected two release calls, got %d", len(releaser.calls))
	}
}

func TestHandleOrderStatusChanged_ReleaseFailureDoesNotBlockTransition(t *testing.T) {
	releaser := &mockReleaser{err: context.DeadlineExceeded}
	m := newManager(&fakeTxManager{}, &mockOrderReader{}, releaser, &mockSink{})

	err := m.HandleOrderStatusChanged(context.Background(), events.OrderStatusChanged{
		OrderID: 7, OldStatus: domain.OrderStatusPending, NewStatus: domain.OrderStatusRefunded,
	})
	if err != nil {
		t.Fatalf("a failed release must not block the status transition, got %v", err)
	}
}

func TestHandleOrderStatusChanged_ReservableEntryWritesHolds(t *testing.T) {
	tx := &fakeTx{
		LockProductFunc: func(ctx context.Context, productID int) (*domain.Product, error) {
			if productID == 3 {
				return &domain.Product{ID: productID, OnHand: 10, ManagesStock: false}, nil
			}
			return &domain.Product{ID: productID, OnHand: 10, ManagesStock: true}, nil
		},
		SumActiveReservationsFunc: func(ctx context.Context, productID int, excludeOrderID uint) (int, error) {
			return 0, nil
		},
	}
	orders := &mockOrderReader{order: &domain.Order{
		ID:     7,
		Status: domain.OrderStatusDraft,
		Items: []domain.OrderItem{
			{ID: 1, OrderID: 7, ProductID: 1, Quantity: 2},
			{ID: 2, OrderID: 7, ProductID: 2, Quantity: 3},
			{ID: 3, OrderID: 7, ProductID: 3, Quantity: 4},
		},
	}}
	sink := &mockSink{}
	m := newManager(&fakeTxManager{tx: tx}, orders, &mockReleaser{}, sink)

	err := m.HandleOrderStatusChanged(context.Background(), events.OrderStatusChanged{
		OrderID: 7, OldStatus: "", NewStatus: domain.OrderStatusDraft,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !tx.committed {
		t.Fatal("expected transaction to commit")
	}
	// Old holds replaced inside the same transaction.
	if len(tx.deleted) != 1 || tx.deleted[0] != 7 {
		t.Errorf("expected prior holds for order 7 deleted, got %v", tx.deleted)
	}
	// Product 3 does not manage stock, so only two holds are written.
	if len(tx.inserted) != 2 {
		t.Fatalf("expected 2 reservations, got %d", len(tx.inserted))
	}
	for _, res := range tx.inserted {
		if res.OrderID != 7 {
			t.Errorf("expected reservation owned by order 7, got %d", res.OrderID)
		}
		if !res.ExpiresAt.After(time.Now()) {
			t.Errorf("expected expiry in the future, got %v", res.ExpiresAt)
		}
	}
	if len(sink.records) != 0 {
		t.Errorf("expected no shortfall diagnostics, got %d", len(sink.records))
	}
}

func TestHandleOrderStatusChanged_ShortfallIsNonBlocking(t *testing.T) {
	tx := &fakeTx{
		LockProductFunc: func(ctx context.Context, productID int) (*domain.Product, error) {
			return &domain.Product{ID: productID, OnHand: 1, ManagesStock: true}, nil
		},
		SumActiveReservationsFunc: func(ctx context.Context, productID int, excludeOrderID uint) (int, error) {
			return 0, nil
		},
	}
	orders := &mockOrderReader{order: &domain.Order{
		ID:     7,
		Status: domain.OrderStatusDraft,
		Items:  []domain.OrderItem{{ID: 1, OrderID: 7, ProductID: 1, Quantity: 5}},
	}}
	sink := &mockSink{}
	m := newManager(&fakeTxManager{tx: tx}, orders, &mockReleaser{}, sink)

	err := m.HandleOrderStatusChanged(context.Background(), events.OrderStatusChanged{
		OrderID: 7, OldStatus: "", NewStatus: domain.OrderStatusDraft,
	})
	if err != nil {
		t.Fatalf("a shortfall must not block reservable entry, got %v", err)
	}

	// The hold is still written; the shortfall is only audited.
	if len(tx.inserted) != 1 {
		t.Fatalf("expected the hold to be written despite the shortfall, got %d", len(tx.inserted))
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected one shortfall diagnostic, got %d", len(sink.records))
	}
	rec := sink.records[0]
	if rec.Kind != domain.DiagnosticReservationShortfall || rec.Requested != 5 || rec.Available != 1 {
		t.Errorf("unexpected diagnostic: %+v", rec)
	}
}

func TestHandleOrderStatusChanged_ReservableToReservableIsNoop(t *testing.T) {
	txm := &fakeTxManager{err: context.DeadlineExceeded}
	releaser := &mockReleaser{}
	m := newManager(txm, &mockOrderReader{err: context.DeadlineExceeded}, releaser, &mockSink{})

	// Draft to pending keeps the existing holds: no release, no re-reserve.
	err := m.HandleOrderStatusChanged(context.Background(), events.OrderStatusChanged{
		OrderID: 7, OldStatus: domain.OrderStatusDraft, NewStatus: domain.OrderStatusPending,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(releaser.calls) != 0 {
		t.Errorf("expected no release, got %v", releaser.calls)
	}
}

func TestHandleOrderStatusChanged_StoreErrorPropagates(t *testing.T) {
	tx := &fakeTx{
		LockProductFunc: func(ctx context.Context, productID int) (*domain.Product, error) {
			return &domain.Product{ID: productID, OnHand: 1, ManagesStock: true}, nil
		},
		SumActiveReservationsFunc: func(ctx context.Context, productID int, excludeOrderID uint) (int, error) {
			return 0, apperrors.NewUnavailableError("aggregating active reservations", context.DeadlineExceeded)
		},
	}
	orders := &mockOrderReader{order: &domain.Order{
		ID:     7,
		Status: domain.OrderStatusDraft,
		Items:  []domain.OrderItem{{ID: 1, OrderID: 7, ProductID: 1, Quantity: 1}},
	}}
	m := newManager(&fakeTxManager{tx: tx}, orders, &mockReleaser{}, &mockSink{})

	err := m.HandleOrderStatusChanged(context.Background(), events.OrderStatusChanged{
		OrderID: 7, OldStatus: "", NewStatus: domain.OrderStatusDraft,
	})
	if _, ok := apperrors.IsUnavailableError(err); !ok {
		t.Errorf("expected UnavailableError, got %v", err)
	}
	if tx.committed {
		t.Error("expected no commit")
	}
	if !tx.rolledBack {
		t.Error("expected rollback")
	}
}
