package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockwarden/internal/domain"
	"stockwarden/internal/dto"
	apperrors "stockwarden/internal/errors"
	"stockwarden/internal/events"
)

type Publisher interface {
	PublishOrderStatusChanged(ctx context.Context, ev events.OrderStatusChanged) error
}

// LifecycleController receives the order system's status-transition
// notifications and fans them out to the registered listeners.
type LifecycleController struct {
	publisher Publisher
	logger    *zap.Logger
}

func NewLifecycleController(publisher Publisher, logger *zap.Logger) *LifecycleController {
	return &LifecycleController{
		publisher: publisher,
		logger:    logger,
	}
}

func (c *LifecycleController) OrderStatusChanged(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderIDStr := chi.URLParam(r, "orderId")
	orderID, err := strconv.ParseUint(orderIDStr, 10, 64)
	if err != nil || orderID == 0 {
		logger.Warn("invalid orderId in path", zap.Error(err))
		c.writeValidationError(w, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return
	}

	var req dto.StatusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if !domain.IsKnownStatus(req.NewStatus) {
		c.writeValidationError(w, "unknown status", apperrors.ValidationDetail{
			Field:   "newStatus",
			Message: "newStatus is not a recognized order status",
		})
		return
	}

	// Status is owned by the order system; an unexpected transition is
	// worth a log line but is still processed.
	if req.OldStatus != "" && !domain.CanTransition(req.OldStatus, req.NewStatus) {
		logger.Warn("unexpected status transition",
			zap.Uint64("orderId", orderID),
			zap.String("oldStatus", req.OldStatus),
			zap.String("newStatus", req.NewStatus))
	}

	ev := events.OrderStatusChanged{
		OrderID:   uint(orderID),
		OldStatus: req.OldStatus,
		NewStatus: req.NewStatus,
	}

	if err := c.publisher.PublishOrderStatusChanged(r.Context(), ev); err != nil {
		logger.Error("status change handling failed", zap.Error(err))
		c.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "INTERNAL_ERROR",
			"message": "an unexpected error occurred",
		})
		return
	}

	c.writeJSON(w, http.StatusOK, dto.StatusChangeResponse{
		TraceID:   traceID,
		OrderID:   uint(orderID),
		OldStatus: req.OldStatus,
		NewStatus: req.NewStatus,
		Timestamp: time.Now().UTC(),
	})
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *LifecycleController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *LifecycleController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
