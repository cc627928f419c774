package dto

import "time"

type AdminQuantityEdit struct {
	ItemID   uint `json:"itemId"`
	Quantity int  `json:"quantity"`
}

type AdminEditRequest struct {
	Items []AdminQuantityEdit `json:"items"`
}

type AdminEditResponse struct {
	TraceID   string              `json:"traceId"`
	OrderID   uint                `json:"orderId"`
	Applied   []AdminQuantityEdit `json:"applied"`
	Timestamp time.Time           `json:"timestamp"`
}
