package events

import (
	"context"

	"go.uber.org/zap"

	"stockwarden/internal/errors"
)

// Lifecycle events emitted by the surrounding order system. Subscription is
// explicit and typed: each event has its own handler signature instead of a
// generic named-event bus.

type ItemQuantityRequested struct {
	OrderID   uint
	ItemID    uint
	Requested int
}

type CheckoutLine struct {
	ProductID int
	Quantity  int
}

type CheckoutSubmitted struct {
	OrderID uint
	Lines   []CheckoutLine
}

type OrderStatusChanged struct {
	OrderID   uint
	OldStatus string
	NewStatus string
}

// ItemQuantityHandler decides the quantity actually applied for a regular
// order-item quantity change. Exactly one handler may be registered.
type ItemQuantityHandler func(ctx context.Context, ev ItemQuantityRequested) (applied int, err error)

// CheckoutHandler decides whether a checkout may proceed. Exactly one
// handler may be registered.
type CheckoutHandler func(ctx context.Context, ev CheckoutSubmitted) error

// StatusListener observes order status transitions. Multiple listeners may
// be registered; they run in registration order.
type StatusListener func(ctx context.Context, ev OrderStatusChanged) error

type Dispatcher struct {
	logger          *zap.Logger
	itemQuantity    ItemQuantityHandler
	checkout        CheckoutHandler
	statusListeners []StatusListener
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

func (d *Dispatcher) OnItemQuantityRequested(h ItemQuantityHandler) {
	d.itemQuantity = h
}

func (d *Dispatcher) OnCheckoutSubmitted(h CheckoutHandler) {
	d.checkout = h
}

func (d *Dispatcher) OnOrderStatusChanged(l StatusListener) {
	d.statusListeners = append(d.statusListeners, l)
}

func (d *Dispatcher) PublishItemQuantityRequested(ctx context.Context, ev ItemQuantityRequested) (int, error) {
	if d.itemQuantity == nil {
		return 0, errors.NewInternalError("no handler registered for item quantity requests", nil)
	}
	return d.itemQuantity(ctx, ev)
}

func (d *Dispatcher) PublishCheckoutSubmitted(ctx context.Context, ev CheckoutSubmitted) error {
	if d.checkout == nil {
		return errors.NewInternalError("no handler registered for checkout submissions", nil)
	}
	return d.checkout(ctx, ev)
}

func (d *Dispatcher) PublishOrderStatusChanged(ctx context.Context, ev OrderStatusChanged) error {
	for _, l := range d.statusListeners {
		if err := l(ctx, ev); err != nil {
			d.logger.Error("status listener failed",
				zap.Uint("orderId", ev.OrderID),
				zap.String("oldStatus", ev.OldStatus),
				zap.String("newStatus", ev.NewStatus),
				zap.Error(err))
			return err
		}
	}
	return nil
}
