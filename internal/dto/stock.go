package dto

import "time"

type CartLine struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type CartValidateRequest struct {
	OrderID uint       `json:"orderId"`
	Items   []CartLine `json:"items"`
}

// CartLineStatus carries the cart checkpoint's per-line verdict. The flag is
// advisory: nothing is mutated on insufficiency at this checkpoint.
type CartLineStatus struct {
	ProductID         int  `json:"productId"`
	Quantity          int  `json:"quantity"`
	InsufficientStock bool `json:"insufficientStock"`
}

type CartValidateResponse struct {
	TraceID   string           `json:"traceId"`
	OrderID   uint             `json:"orderId"`
	Items     []CartLineStatus `json:"items"`
	Timestamp time.Time        `json:"timestamp"`
}

type CheckoutValidateRequest struct {
	OrderID uint       `json:"orderId"`
	Items   []CartLine `json:"items"`
}

type CheckoutValidateResponse struct {
	TraceID   string    `json:"traceId"`
	OrderID   uint      `json:"orderId"`
	OK        bool      `json:"ok"`
	Errors    []string  `json:"errors,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type QuantityUpdateRequest struct {
	Quantity int `json:"quantity"`
}

type QuantityUpdateResponse struct {
	TraceID   string    `json:"traceId"`
	OrderID   uint      `json:"orderId"`
	ItemID    uint      `json:"itemId"`
	ProductID int       `json:"productId"`
	Requested int       `json:"requested"`
	Applied   int       `json:"applied"`
	Clamped   bool      `json:"clamped"`
	Timestamp time.Time `json:"timestamp"`
}

// StockPrecheck is the read-only advisory snapshot for the admin client. It
// has no authority: the admin edit checkpoint is the actual gate.
type StockPrecheck struct {
	ProductID   int    `json:"productId"`
	OrderID     uint   `json:"orderId"`
	OnHand      int    `json:"onHand"`
	Reserved    int    `json:"reserved"`
	Available   int    `json:"available"`
	StockStatus string `json:"stockStatus"`
	Requested   int    `json:"requested"`
	Satisfiable bool   `json:"satisfiable"`
}

type PrecheckResponse struct {
	TraceID   string    `json:"traceId"`
	Timestamp time.Time `json:"timestamp"`
	StockPrecheck
}
