package domain

import "time"

type Order struct {
	ID        uint
	Status    string
	Items     []OrderItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ID        uint
	OrderID   uint
	ProductID int
	Quantity  int
}

const (
	OrderStatusDraft         = "DRAFT"
	OrderStatusCheckoutDraft = "CHECKOUT_DRAFT"
	OrderStatusPending       = "PENDING"
	OrderStatusCompleted     = "COMPLETED"
	OrderStatusCancelled     = "CANCELLED"
	OrderStatusRefunded      = "REFUNDED"
)

// ReservableStatuses are the order states whose reservations count against
// other orders' available stock.
var ReservableStatuses = []string{OrderStatusDraft, OrderStatusCheckoutDraft, OrderStatusPending}

// IsReservableStatus reports whether reservations held by an order in the
// given status are still live.
func IsReservableStatus(status string) bool {
	switch status {
	case OrderStatusDraft, OrderStatusCheckoutDraft, OrderStatusPending:
		return true
	}
	return false
}

// IsTerminalStatus reports whether the given status releases the order's
// reservations unconditionally.
func IsTerminalStatus(status string) bool {
	switch status {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// IsKnownStatus reports whether this core understands the given status.
func IsKnownStatus(status string) bool {
	return IsReservableStatus(status) || IsTerminalStatus(status)
}

// CanTransition reports whether the order system may move from one status to
// another. This core never mutates status itself; it only validates the
// notifications it receives.
func CanTransition(from, to string) bool {
	if from == to {
		return false
	}
	switch from {
	case OrderStatusDraft:
		return to == OrderStatusCheckoutDraft || to == OrderStatusPending || to == OrderStatusCancelled
	case OrderStatusCheckoutDraft:
		return to == OrderStatusDraft || to == OrderStatusPending || to == OrderStatusCancelled
	case OrderStatusPending:
		return IsTerminalStatus(to)
	}
	return false
}
