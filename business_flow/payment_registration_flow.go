// Package businessflow contains the core business logic and use cases for arrears and service state workflows
package businessflow

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/olara1989/wisp-platform-sub000/app/dto"
	"github.com/olara1989/wisp-platform-sub000/models"
	"github.com/olara1989/wisp-platform-sub000/repository"
	"github.com/olara1989/wisp-platform-sub000/utils"
	"github.com/shopspring/decimal"
)

// PaymentRegistrationFlow records monthly payments and, when the payer is
// currently suspended, restores their service in the same request
type PaymentRegistrationFlow interface {
	RegisterPayment(ctx context.Context, req *dto.RegisterPaymentRequest, metadata *ClientMetadata) (*dto.RegisterPaymentResponse, error)
}

// PaymentRegistrationFlowImpl implements the payment registration business flow
type PaymentRegistrationFlowImpl struct {
	customerRepo repository.CustomerRepository
	paymentRepo  repository.PaymentRecordRepository
	auditRepo    repository.AuditLogRepository
	stateFlow    ServiceStateFlow
}

// NewPaymentRegistrationFlow creates a new payment registration flow instance
func NewPaymentRegistrationFlow(
	customerRepo repository.CustomerRepository,
	paymentRepo repository.PaymentRecordRepository,
	auditRepo repository.AuditLogRepository,
	stateFlow ServiceStateFlow,
) PaymentRegistrationFlow {
	return &PaymentRegistrationFlowImpl{
		customerRepo: customerRepo,
		paymentRepo:  paymentRepo,
		auditRepo:    auditRepo,
		stateFlow:    stateFlow,
	}
}

// RegisterPayment validates and persists one ledger entry. A second payment
// for the same period is rejected; the ledger keeps one row per period and
// that row already marks the period paid.
func (f *PaymentRegistrationFlowImpl) RegisterPayment(ctx context.Context, req *dto.RegisterPaymentRequest, metadata *ClientMetadata) (*dto.RegisterPaymentResponse, error) {
	period := models.BillingPeriod{Month: req.Month, Year: req.Year}
	if req.Month < 1 || req.Month > 12 || req.Year < 2000 {
		return nil, NewBusinessError("REGISTER_PAYMENT_FAILED",
			fmt.Sprintf("Invalid billing period %d-%d", req.Year, req.Month), ErrPaymentPeriodInvalid)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		return nil, NewBusinessError("REGISTER_PAYMENT_FAILED",
			fmt.Sprintf("Invalid payment amount %q", req.Amount), ErrPaymentAmountInvalid)
	}

	customer, err := getCustomer(ctx, f.customerRepo, req.CustomerID)
	if err != nil {
		return nil, NewBusinessError("REGISTER_PAYMENT_FAILED", "Failed to load customer", err)
	}

	existing, err := f.paymentRepo.ByCustomerAndPeriod(ctx, customer.ID, period)
	if err != nil {
		return nil, NewBusinessError("REGISTER_PAYMENT_FAILED", "Failed to check existing payments",
			fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err))
	}
	if existing != nil {
		return nil, NewBusinessError("REGISTER_PAYMENT_FAILED",
			fmt.Sprintf("Payment for period %s already registered", period), ErrPaymentAlreadyExists)
	}

	method := models.PaymentMethod(req.Method)
	if method == "" {
		method = models.PaymentMethodCash
	}

	payment := &models.PaymentRecord{
		UUID:       uuid.New(),
		CustomerID: customer.ID,
		Month:      req.Month,
		Year:       req.Year,
		Amount:     amount,
		Method:     method,
		PaidAt:     utils.UTCNow(),
	}

	if err := f.paymentRepo.Save(ctx, payment); err != nil {
		f.auditPayment(ctx, &customer, models.AuditActionPaymentFailed,
			fmt.Sprintf("payment for %s not persisted", period), err, metadata)
		return nil, NewBusinessError("REGISTER_PAYMENT_FAILED", "Failed to persist payment",
			fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err))
	}

	f.auditPayment(ctx, &customer, models.AuditActionPaymentRegistered,
		fmt.Sprintf("payment of %s %s for %s via %s", amount.StringFixed(2), utils.PesoCurrency, period, method), nil, metadata)

	resp := &dto.RegisterPaymentResponse{
		PaymentID:  payment.ID,
		CustomerID: customer.ID,
		Month:      req.Month,
		Year:       req.Year,
		State:      string(customer.ServiceState),
	}

	// A payment from a suspended customer restores service in the same
	// request. Reactivation is fail-open, so a device failure only surfaces
	// as a warning next to the recorded payment.
	if customer.ServiceState == models.ServiceStateSuspended {
		reactivation, err := f.stateFlow.Reactivate(ctx, &dto.ReactivateRequest{CustomerID: customer.ID}, metadata)
		if err != nil {
			resp.Warning = fmt.Sprintf("payment recorded but reactivation failed: %v", err)
			return resp, nil
		}
		resp.Reactivated = true
		resp.State = reactivation.State
		resp.Warning = reactivation.Warning
	}

	return resp, nil
}

func (f *PaymentRegistrationFlowImpl) auditPayment(ctx context.Context, customer *models.Customer, action, description string, failure error, metadata *ClientMetadata) {
	var errMsg *string
	if failure != nil {
		errMsg = utils.ToPtr(failure.Error())
	}
	if err := createAuditLog(ctx, f.auditRepo, customer, action, description, failure == nil, errMsg, metadata); err != nil {
		log.Printf("audit log write failed for customer %d action %s: %v", customer.ID, action, err)
	}
}
