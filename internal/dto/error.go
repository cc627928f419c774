package dto

import "time"

type ShortfallDTO struct {
	ProductID   int    `json:"productId"`
	ProductName string `json:"productName"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

type ErrorResponse struct {
	TraceID    string         `json:"traceId"`
	Status     int            `json:"status"`
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Shortfalls []ShortfallDTO `json:"shortfalls,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
