package domain

import "time"

type DiagnosticKind string

const (
	// DiagnosticStockRaceClamped records a regular-flow quantity request that
	// lost a race and was silently reduced to the available stock.
	DiagnosticStockRaceClamped DiagnosticKind = "STOCK_RACE_CLAMPED"
	// DiagnosticReservationShortfall records a reservable-state entry whose
	// line item could no longer be fully covered at reservation time.
	DiagnosticReservationShortfall DiagnosticKind = "RESERVATION_SHORTFALL"
)

type DiagnosticRecord struct {
	Kind      DiagnosticKind
	ProductID int
	OrderID   uint
	Requested int
	Available int
	At        time.Time
}
