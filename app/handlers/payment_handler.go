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
	businessflow "github.com/olara1989/wisp-platform-sub000/business_flow"
)

// PaymentHandlerInterface defines the contract for payment handlers
type PaymentHandlerInterface interface {
	RegisterPayment(c fiber.Ctx) error
}

// PaymentHandler handles payment registration HTTP requests
type PaymentHandler struct {
	paymentFlow businessflow.PaymentRegistrationFlow
	validator   *validator.Validate
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentFlow businessflow.PaymentRegistrationFlow) *PaymentHandler {
	return &PaymentHandler{
		paymentFlow: paymentFlow,
		validator:   validator.New(),
	}
}

func (h *PaymentHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PaymentHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RegisterPayment records one monthly payment for a customer. When the
// customer was suspended the payment also restores their service, and any
// device-side failure during that restore rides along as a warning.
func (h *PaymentHandler) RegisterPayment(c fiber.Ctx) error {
	customerID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid customer id", "INVALID_CUSTOMER_ID", nil)
	}

	var req dto.RegisterPaymentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.CustomerID = uint(customerID)

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.paymentFlow.RegisterPayment(h.createRequestContext(c, "/api/v1/customers/:id/payments"), &req, metadata)
	if err != nil {
		if businessflow.IsCustomerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Customer not found", "CUSTOMER_NOT_FOUND", nil)
		}
		if businessflow.IsPaymentPeriodInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid billing period", "PAYMENT_PERIOD_INVALID", nil)
		}
		if businessflow.IsPaymentAmountInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid payment amount", "PAYMENT_AMOUNT_INVALID", nil)
		}
		if businessflow.IsPaymentAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Payment already registered for period", "PAYMENT_ALREADY_EXISTS", nil)
		}

		log.Println("Payment registration failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Payment registration failed", "REGISTER_PAYMENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Payment registered", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *PaymentHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
