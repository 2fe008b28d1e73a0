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

// ServiceStateHandlerInterface defines the contract for service state handlers
type ServiceStateHandlerInterface interface {
	Suspend(c fiber.Ctx) error
	Reactivate(c fiber.Ctx) error
}

// ServiceStateHandler handles suspend and reactivate HTTP requests
type ServiceStateHandler struct {
	stateFlow businessflow.ServiceStateFlow
	validator *validator.Validate
}

// NewServiceStateHandler creates a new service state handler
func NewServiceStateHandler(stateFlow businessflow.ServiceStateFlow) *ServiceStateHandler {
	return &ServiceStateHandler{
		stateFlow: stateFlow,
		validator: validator.New(),
	}
}

func (h *ServiceStateHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ServiceStateHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Suspend cuts a customer's service. The call fails without touching stored
// state when the customer has no bound device or the device cannot be
// reached, and the response distinguishes the two.
func (h *ServiceStateHandler) Suspend(c fiber.Ctx) error {
	customerID, err := h.customerIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid customer id", "INVALID_CUSTOMER_ID", nil)
	}

	req := &dto.SuspendRequest{CustomerID: customerID}
	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.stateFlow.Suspend(h.createRequestContext(c, "/api/v1/customers/:id/suspend"), req, metadata)
	if err != nil {
		middleware.RecordStateTransition("suspend", true)
		if businessflow.IsCustomerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Customer not found", "CUSTOMER_NOT_FOUND", nil)
		}
		if businessflow.IsAlreadySuspended(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Customer is already suspended", "ALREADY_SUSPENDED", nil)
		}
		if businessflow.IsDeviceNotBound(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Customer has no bound device", "DEVICE_NOT_BOUND", nil)
		}
		if businessflow.IsControllerTimeout(err) || businessflow.IsControllerUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusBadGateway, "Device could not be reached, service state unchanged", "CONTROLLER_UNREACHABLE", nil)
		}

		log.Println("Suspension failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Suspension failed", "SUSPEND_FAILED", nil)
	}

	middleware.RecordStateTransition("suspend", false)
	return h.SuccessResponse(c, fiber.StatusOK, "Service suspended", result)
}

// Reactivate restores a customer's service. A device failure after the state
// change is reported inside the successful response as a warning.
func (h *ServiceStateHandler) Reactivate(c fiber.Ctx) error {
	customerID, err := h.customerIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid customer id", "INVALID_CUSTOMER_ID", nil)
	}

	req := &dto.ReactivateRequest{CustomerID: customerID}
	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.stateFlow.Reactivate(h.createRequestContext(c, "/api/v1/customers/:id/reactivate"), req, metadata)
	if err != nil {
		middleware.RecordStateTransition("reactivate", true)
		if businessflow.IsCustomerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Customer not found", "CUSTOMER_NOT_FOUND", nil)
		}
		if businessflow.IsReactivateNotAllowed(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Customer state does not allow reactivation", "REACTIVATE_NOT_ALLOWED", nil)
		}

		log.Println("Reactivation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Reactivation failed", "REACTIVATE_FAILED", nil)
	}

	middleware.RecordStateTransition("reactivate", false)
	return h.SuccessResponse(c, fiber.StatusOK, "Service reactivated", result)
}

func (h *ServiceStateHandler) customerIDParam(c fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *ServiceStateHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
