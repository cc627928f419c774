package dto

import "time"

type StatusChangeRequest struct {
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
}

type StatusChangeResponse struct {
	TraceID   string    `json:"traceId"`
	OrderID   uint      `json:"orderId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	Timestamp time.Time `json:"timestamp"`
}
