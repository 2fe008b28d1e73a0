// Package businessflow contains the core business logic and use cases for arrears and service state workflows
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/olara1989/wisp-platform-sub000/app/dto"
	"github.com/olara1989/wisp-platform-sub000/app/services"
	"github.com/olara1989/wisp-platform-sub000/config"
	"github.com/olara1989/wisp-platform-sub000/models"
	"github.com/olara1989/wisp-platform-sub000/repository"
	"github.com/olara1989/wisp-platform-sub000/utils"
)

// ServiceStateFlow drives the customer service state machine. Suspension is
// fail-closed: the device must be cut off before `suspendido` is persisted.
// Reactivation is fail-open: `activo` is persisted first and a device failure
// degrades to a warning.
type ServiceStateFlow interface {
	Suspend(ctx context.Context, req *dto.SuspendRequest, metadata *ClientMetadata) (*dto.SuspendResponse, error)
	Reactivate(ctx context.Context, req *dto.ReactivateRequest, metadata *ClientMetadata) (*dto.ReactivateResponse, error)
}

// ServiceStateFlowImpl implements the service state business flow
type ServiceStateFlowImpl struct {
	customerRepo repository.CustomerRepository
	paymentRepo  repository.PaymentRecordRepository
	deviceRepo   repository.DeviceBindingRepository
	auditRepo    repository.AuditLogRepository
	controller   services.NetworkController
	routerCfg    config.RouterControlConfig
	billingCfg   config.BillingConfig
}

// NewServiceStateFlow creates a new service state flow instance
func NewServiceStateFlow(
	customerRepo repository.CustomerRepository,
	paymentRepo repository.PaymentRecordRepository,
	deviceRepo repository.DeviceBindingRepository,
	auditRepo repository.AuditLogRepository,
	controller services.NetworkController,
	routerCfg config.RouterControlConfig,
	billingCfg config.BillingConfig,
) ServiceStateFlow {
	return &ServiceStateFlowImpl{
		customerRepo: customerRepo,
		paymentRepo:  paymentRepo,
		deviceRepo:   deviceRepo,
		auditRepo:    auditRepo,
		controller:   controller,
		routerCfg:    routerCfg,
		billingCfg:   billingCfg,
	}
}

// Suspend cuts a customer's service off. The stored state only moves to
// `suspendido` after the device command succeeds; any earlier failure leaves
// the customer untouched.
func (f *ServiceStateFlowImpl) Suspend(ctx context.Context, req *dto.SuspendRequest, metadata *ClientMetadata) (*dto.SuspendResponse, error) {
	lock := lockCustomer(req.CustomerID)
	defer lock.Unlock()

	customer, err := getCustomer(ctx, f.customerRepo, req.CustomerID)
	if err != nil {
		return nil, NewBusinessError("SUSPEND_FAILED", "Failed to load customer", err)
	}

	// Legal from every state except suspendido itself
	if customer.ServiceState == models.ServiceStateSuspended {
		return nil, NewBusinessError("SUSPEND_FAILED", "Customer is already suspended", ErrAlreadySuspended)
	}

	binding, err := f.deviceRepo.ByCustomerID(ctx, customer.ID)
	if err != nil {
		f.audit(ctx, &customer, models.AuditActionSuspendFailed, "device binding lookup failed", err, metadata)
		return nil, NewBusinessError("SUSPEND_FAILED", "Failed to load device binding",
			fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err))
	}
	if binding == nil {
		f.audit(ctx, &customer, models.AuditActionSuspendFailed, "no device bound", ErrDeviceNotBound, metadata)
		return nil, NewBusinessError("SUSPEND_FAILED", "Customer has no bound device", ErrDeviceNotBound)
	}

	if err := f.callController(ctx, func(cctx context.Context) error {
		return f.controller.Suspend(cctx, binding.RouterID, binding.DeviceIP, binding.ControlMode)
	}); err != nil {
		f.audit(ctx, &customer, models.AuditActionSuspendFailed, "device suspend command failed", err, metadata)
		return nil, NewBusinessError("SUSPEND_FAILED", "Device suspend command failed", err)
	}

	if err := f.customerRepo.UpdateServiceState(ctx, customer.ID, models.ServiceStateSuspended); err != nil {
		// The device is already cut off; the operator must reconcile
		f.audit(ctx, &customer, models.AuditActionSuspendFailed, "state persist failed after device cutoff", err, metadata)
		return nil, NewBusinessError("SUSPEND_FAILED", "Failed to persist suspended state",
			fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err))
	}

	f.audit(ctx, &customer, models.AuditActionSuspendCompleted,
		fmt.Sprintf("service suspended on router %d device %s", binding.RouterID, binding.DeviceIP), nil, metadata)

	return &dto.SuspendResponse{
		CustomerID: customer.ID,
		State:      string(models.ServiceStateSuspended),
		RouterID:   binding.RouterID,
		DeviceIP:   binding.DeviceIP,
	}, nil
}

// Reactivate restores a customer's service. Legal from `suspendido`, or from
// `activo` when the ledger shows pending periods (the moroso case). The
// stored state moves to `activo` first; a device failure afterwards is
// reported as a warning so the customer is never locked out by an
// unreachable router.
func (f *ServiceStateFlowImpl) Reactivate(ctx context.Context, req *dto.ReactivateRequest, metadata *ClientMetadata) (*dto.ReactivateResponse, error) {
	lock := lockCustomer(req.CustomerID)
	defer lock.Unlock()

	customer, err := getCustomer(ctx, f.customerRepo, req.CustomerID)
	if err != nil {
		return nil, NewBusinessError("REACTIVATE_FAILED", "Failed to load customer", err)
	}

	switch customer.ServiceState {
	case models.ServiceStateSuspended:
		// always restorable
	case models.ServiceStateActive:
		// An activo customer is only reactivated when moroso by arrears:
		// the device may have been cut while the stored state stayed activo
		moroso, err := f.hasArrears(ctx, &customer)
		if err != nil {
			return nil, NewBusinessError("REACTIVATE_FAILED", "Failed to evaluate arrears", err)
		}
		if !moroso {
			return nil, NewBusinessError("REACTIVATE_FAILED",
				"Active customer has no pending periods", ErrReactivateNotAllowed)
		}
	default:
		return nil, NewBusinessError("REACTIVATE_FAILED",
			fmt.Sprintf("Customer in state %q cannot be reactivated", customer.ServiceState), ErrReactivateNotAllowed)
	}

	if err := f.customerRepo.UpdateServiceState(ctx, customer.ID, models.ServiceStateActive); err != nil {
		f.audit(ctx, &customer, models.AuditActionReactivateFailed, "state persist failed", err, metadata)
		return nil, NewBusinessError("REACTIVATE_FAILED", "Failed to persist active state",
			fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err))
	}

	resp := &dto.ReactivateResponse{
		CustomerID: customer.ID,
		State:      string(models.ServiceStateActive),
	}

	binding, err := f.deviceRepo.ByCustomerID(ctx, customer.ID)
	if err != nil || binding == nil {
		if err == nil {
			err = ErrDeviceNotBound
		}
		resp.Warning = fmt.Sprintf("service marked active but device restore skipped: %v", err)
		f.audit(ctx, &customer, models.AuditActionReactivateDegraded, resp.Warning, err, metadata)
		return resp, nil
	}

	if err := f.callController(ctx, func(cctx context.Context) error {
		return f.controller.Reactivate(cctx, binding.RouterID, binding.DeviceIP, binding.ControlMode)
	}); err != nil {
		resp.Warning = fmt.Sprintf("service marked active but device restore failed: %v", err)
		f.audit(ctx, &customer, models.AuditActionReactivateDegraded, resp.Warning, err, metadata)
		return resp, nil
	}

	f.audit(ctx, &customer, models.AuditActionReactivateCompleted,
		fmt.Sprintf("service restored on router %d device %s", binding.RouterID, binding.DeviceIP), nil, metadata)
	return resp, nil
}

// hasArrears reports whether the customer is moroso as of now
func (f *ServiceStateFlowImpl) hasArrears(ctx context.Context, customer *models.Customer) (bool, error) {
	payments, err := f.paymentRepo.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	arrears, err := ComputeArrears(customer, payments, utils.UTCNow(), f.billingCfg.CutoffDay)
	if err != nil {
		return false, err
	}
	return arrears.HasArrears(), nil
}

// callController runs a device command under its own timeout and maps the
// transport errors onto the flow sentinels.
func (f *ServiceStateFlowImpl) callController(ctx context.Context, call func(context.Context) error) error {
	timeout := f.routerCfg.Timeout
	if timeout <= 0 {
		timeout = utils.DefaultControllerTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := call(cctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrControllerTimeout):
		return fmt.Errorf("%w: %v", ErrControllerTimeout, err)
	default:
		return fmt.Errorf("%w: %v", ErrControllerUnavailable, err)
	}
}

func (f *ServiceStateFlowImpl) audit(ctx context.Context, customer *models.Customer, action, description string, failure error, metadata *ClientMetadata) {
	var errMsg *string
	if failure != nil {
		errMsg = utils.ToPtr(failure.Error())
	}
	// audit persistence never masks the operation outcome
	if err := createAuditLog(ctx, f.auditRepo, customer, action, description, failure == nil, errMsg, metadata); err != nil {
		log.Printf("audit log write failed for customer %d action %s: %v", customer.ID, action, err)
	}
}
