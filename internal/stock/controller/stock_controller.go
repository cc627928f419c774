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

	"stockwarden/internal/dto"
	apperrors "stockwarden/internal/errors"
	"stockwarden/internal/events"
)

type CartCheckUseCase interface {
	ValidateCart(ctx context.Context, orderID uint, lines []dto.CartLine) ([]dto.CartLineStatus, error)
}

type AdminEditUseCase interface {
	EditQuantities(ctx context.Context, orderID uint, edits []dto.AdminQuantityEdit) ([]dto.AdminQuantityEdit, error)
}

type PrecheckUseCase interface {
	Precheck(ctx context.Context, productID int, orderID uint, requested int) (*dto.StockPrecheck, error)
}

// Publisher is the slice of the event dispatcher this controller feeds.
type Publisher interface {
	PublishItemQuantityRequested(ctx context.Context, ev events.ItemQuantityRequested) (int, error)
	PublishCheckoutSubmitted(ctx context.Context, ev events.CheckoutSubmitted) error
}

type StockController struct {
	cartUC     CartCheckUseCase
	adminUC    AdminEditUseCase
	precheckUC PrecheckUseCase
	publisher  Publisher
	logger     *zap.Logger
}

func NewStockController(
	cartUC CartCheckUseCase,
	adminUC AdminEditUseCase,
	precheckUC PrecheckUseCase,
	publisher Publisher,
	logger *zap.Logger,
) *StockController {
	return &StockController{
		cartUC:     cartUC,
		adminUC:    adminUC,
		precheckUC: precheckUC,
		publisher:  publisher,
		logger:     logger,
	}
}

func (c *StockController) ValidateCart(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CartValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateLines(req.Items); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	statuses, err := c.cartUC.ValidateCart(r.Context(), req.OrderID, req.Items)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.CartValidateResponse{
		TraceID:   traceID,
		OrderID:   req.OrderID,
		Items:     statuses,
		Timestamp: time.Now().UTC(),
	})
}

func (c *StockController) ValidateCheckout(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CheckoutValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateLines(req.Items); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	ev := events.CheckoutSubmitted{OrderID: req.OrderID}
	for _, line := range req.Items {
		ev.Lines = append(ev.Lines, events.CheckoutLine{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	err := c.publisher.PublishCheckoutSubmitted(r.Context(), ev)
	if err != nil {
		if ise, ok := apperrors.IsInsufficientStockError(err); ok {
			messages := make([]string, len(ise.Shortfalls))
			for i, s := range ise.Shortfalls {
				messages[i] = s.String()
			}
			c.writeJSON(w, http.StatusConflict, dto.CheckoutValidateResponse{
				TraceID:   traceID,
				OrderID:   req.OrderID,
				OK:        false,
				Errors:    messages,
				Timestamp: time.Now().UTC(),
			})
			return
		}
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.CheckoutValidateResponse{
		TraceID:   traceID,
		OrderID:   req.OrderID,
		OK:        true,
		Timestamp: time.Now().UTC(),
	})
}

func (c *StockController) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parsePathID(w, traceID, chi.URLParam(r, "orderId"), "orderId")
	if !ok {
		return
	}
	itemID, ok := c.parsePathID(w, traceID, chi.URLParam(r, "itemId"), "itemId")
	if !ok {
		return
	}

	var req dto.QuantityUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	applied, err := c.publisher.PublishItemQuantityRequested(r.Context(), events.ItemQuantityRequested{
		OrderID:   orderID,
		ItemID:    itemID,
		Requested: req.Quantity,
	})
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.QuantityUpdateResponse{
		TraceID:   traceID,
		OrderID:   orderID,
		ItemID:    itemID,
		Requested: req.Quantity,
		Applied:   applied,
		Clamped:   applied != req.Quantity,
		Timestamp: time.Now().UTC(),
	})
}

func (c *StockController) AdminEditQuantities(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parsePathID(w, traceID, chi.URLParam(r, "orderId"), "orderId")
	if !ok {
		return
	}

	var req dto.AdminEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	applied, err := c.adminUC.EditQuantities(r.Context(), orderID, req.Items)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.AdminEditResponse{
		TraceID:   traceID,
		OrderID:   orderID,
		Applied:   applied,
		Timestamp: time.Now().UTC(),
	})
}

func (c *StockController) Precheck(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	query := r.URL.Query()

	productID, err := strconv.Atoi(query.Get("productId"))
	if err != nil || productID <= 0 {
		c.writeValidationError(w, traceID, "invalid productId", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
		return
	}

	orderID := uint64(0)
	if raw := query.Get("orderId"); raw != "" {
		orderID, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.writeValidationError(w, traceID, "invalid orderId", apperrors.ValidationDetail{
				Field:   "orderId",
				Message: "orderId must be a positive integer",
			})
			return
		}
	}

	requested := 0
	if raw := query.Get("quantity"); raw != "" {
		requested, err = strconv.Atoi(raw)
		if err != nil || requested < 0 {
			c.writeValidationError(w, traceID, "invalid quantity", apperrors.ValidationDetail{
				Field:   "quantity",
				Message: "quantity must not be negative",
			})
			return
		}
	}

	precheck, err := c.precheckUC.Precheck(r.Context(), productID, uint(orderID), requested)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.PrecheckResponse{
		TraceID:       traceID,
		Timestamp:     time.Now().UTC(),
		StockPrecheck: *precheck,
	})
}

func (c *StockController) parsePathID(w http.ResponseWriter, traceID, raw, field string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.writeValidationError(w, traceID, "invalid "+field, apperrors.ValidationDetail{
			Field:   field,
			Message: field + " must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

func validateLines(lines []dto.CartLine) error {
	var details []apperrors.ValidationDetail

	if len(lines) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	for idx, line := range lines {
		if line.ProductID <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].productId",
				Message: "each productId must be a positive integer",
			})
		}
		if line.Quantity < 1 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].quantity",
				Message: "quantity must be at least 1",
			})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func (c *StockController) handleError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return
	}

	if _, ok := apperrors.IsUnauthorizedError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusUnauthorized, "UNAUTHORIZED", err.Error(), nil)
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusConflict, "CONFLICT", err.Error(), nil)
		return
	}

	if ise, ok := apperrors.IsInsufficientStockError(err); ok {
		shortfalls := make([]dto.ShortfallDTO, len(ise.Shortfalls))
		for i, s := range ise.Shortfalls {
			shortfalls[i] = dto.ShortfallDTO{
				ProductID:   s.ProductID,
				ProductName: s.ProductName,
				Requested:   s.Requested,
				Available:   s.Available,
			}
		}
		c.writeErrorResponse(w, traceID, http.StatusConflict, "INSUFFICIENT_STOCK", ise.Message, shortfalls)
		return
	}

	if _, ok := apperrors.IsDeadlockError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusConflict, "DEADLOCK", err.Error(), nil)
		return
	}

	if _, ok := apperrors.IsUnavailableError(err); ok {
		logger.Error("collaborator unavailable", zap.Error(err))
		c.writeErrorResponse(w, traceID, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "stock state is temporarily unavailable", nil)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeErrorResponse(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil)
}

func (c *StockController) writeErrorResponse(w http.ResponseWriter, traceID string, statusCode int, code, message string, shortfalls []dto.ShortfallDTO) {
	c.writeJSON(w, statusCode, dto.ErrorResponse{
		TraceID:    traceID,
		Status:     statusCode,
		Code:       code,
		Message:    message,
		Shortfalls: shortfalls,
		Timestamp:  time.Now().UTC(),
	})
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *StockController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *StockController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
