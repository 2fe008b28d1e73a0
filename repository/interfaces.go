// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/olara1989/wisp-platform-sub000/models"
)

// contextKey for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	Save(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
}

// CustomerRepository defines operations for customers
type CustomerRepository interface {
	Repository[models.Customer, models.CustomerFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Customer, error)
	ListActiveCustomers(ctx context.Context) ([]*models.Customer, error)
	ListByRegion(ctx context.Context, region string) ([]*models.Customer, error)
	UpdateServiceState(ctx context.Context, customerID uint, state models.ServiceState) error
	CountActive(ctx context.Context) (int64, error)
}

// PaymentRecordRepository defines operations for the payment ledger
type PaymentRecordRepository interface {
	Repository[models.PaymentRecord, models.PaymentRecordFilter]
	ListByCustomer(ctx context.Context, customerID uint) ([]*models.PaymentRecord, error)
	ByCustomerAndPeriod(ctx context.Context, customerID uint, period models.BillingPeriod) (*models.PaymentRecord, error)
}

// PlanRepository defines operations for the plan catalog
type PlanRepository interface {
	Repository[models.Plan, models.PlanFilter]
}

// DeviceBindingRepository defines operations for customer-device associations
type DeviceBindingRepository interface {
	Repository[models.DeviceBinding, models.DeviceBindingFilter]
	ByCustomerID(ctx context.Context, customerID uint) (*models.DeviceBinding, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByCustomer(ctx context.Context, customerID uint, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
