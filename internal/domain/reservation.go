package domain

import "time"

// Reservation is a time-bounded hold on a quantity of one product tied to
// one order. Rows are never mutated in place: quantity changes are
// delete-then-recreate, and expired rows are simply ignored by reads.
type Reservation struct {
	ID        uint
	ProductID int
	OrderID   uint
	Quantity  int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ActiveAt reports whether the reservation still reduces available stock at
// the given instant, for an owning order in the given status.
func (r Reservation) ActiveAt(now time.Time, orderStatus string) bool {
	return IsReservableStatus(orderStatus) && r.ExpiresAt.After(now)
}
