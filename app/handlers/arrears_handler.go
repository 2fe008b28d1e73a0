// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/olara1989/wisp-platform-sub000/app/dto"
	"github.com/olara1989/wisp-platform-sub000/app/middleware"
	businessflow "github.com/olara1989/wisp-platform-sub000/business_flow"
)

// ArrearsHandlerInterface defines the contract for arrears handlers
type ArrearsHandlerInterface interface {
	ScanArrears(c fiber.Ctx) error
	Dashboard(c fiber.Ctx) error
}

// ArrearsHandler handles delinquency worklist and dashboard HTTP requests
type ArrearsHandler struct {
	scanFlow  businessflow.ArrearsScanFlow
	validator *validator.Validate
}

// NewArrearsHandler creates a new arrears handler
func NewArrearsHandler(scanFlow businessflow.ArrearsScanFlow) *ArrearsHandler {
	return &ArrearsHandler{
		scanFlow:  scanFlow,
		validator: validator.New(),
	}
}

func (h *ArrearsHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ArrearsHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ScanArrears returns the delinquency worklist for the whole active fleet,
// optionally filtered by region and exact pending-period count
func (h *ArrearsHandler) ScanArrears(c fiber.Ctx) error {
	req := &dto.ScanArrearsRequest{
		ReferenceDate: c.Query("fecha"),
		Region:        c.Query("region"),
	}
	if mesesStr := c.Query("meses"); mesesStr != "" {
		meses, err := strconv.Atoi(mesesStr)
		if err != nil || meses < 1 {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "meses must be an integer >= 1", "INVALID_FILTER", nil)
		}
		req.PendingCount = meses
	}

	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.scanFlow.ScanArrears(h.createRequestContext(c, "/api/v1/arrears"), req)
	if err != nil {
		if businessflow.IsInvalidReferenceDate(err) ||
			businessflow.IsInvalidRegionFilter(err) ||
			businessflow.IsInvalidPeriodCountFilter(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid scan filters", "INVALID_FILTER", err.Error())
		}

		middleware.RecordScan(true, 0)
		log.Println("Arrears scan failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Arrears scan failed", "SCAN_ARREARS_FAILED", nil)
	}

	middleware.RecordScan(false, result.TotalDelinquent)
	return h.SuccessResponse(c, fiber.StatusOK, "Arrears scan completed", result)
}

// Dashboard returns the delinquency aggregates and trailing month tiles
func (h *ArrearsHandler) Dashboard(c fiber.Ctx) error {
	req := &dto.ScanArrearsRequest{ReferenceDate: c.Query("fecha")}

	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.scanFlow.Dashboard(h.createRequestContext(c, "/api/v1/arrears/dashboard"), req)
	if err != nil {
		if businessflow.IsInvalidReferenceDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid reference date", "INVALID_FILTER", err.Error())
		}

		log.Println("Dashboard aggregation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Dashboard aggregation failed", "DASHBOARD_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Dashboard aggregates computed", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *ArrearsHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
