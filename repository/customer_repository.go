// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/olara1989/wisp-platform-sub000/models"
	"github.com/olara1989/wisp-platform-sub000/utils"
	"gorm.io/gorm"
)

// CustomerRepositoryImpl implements CustomerRepository interface
type CustomerRepositoryImpl struct {
	*BaseRepository[models.Customer, models.CustomerFilter]
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &CustomerRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Customer, models.CustomerFilter](db),
	}
}

// ByUUID retrieves a customer by UUID
func (r *CustomerRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Customer, error) {
	db := r.getDB(ctx)

	var customer models.Customer
	err := db.Where("uuid = ?", uuid).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find customer by UUID: %w", err)
	}

	return &customer, nil
}

// ListActiveCustomers retrieves all customers whose service state is activo.
// The fleet scan walks the whole active population, so no pagination here.
func (r *CustomerRepositoryImpl) ListActiveCustomers(ctx context.Context) ([]*models.Customer, error) {
	db := r.getDB(ctx)

	var customers []*models.Customer
	err := db.Where("service_state = ?", models.ServiceStateActive).
		Order("id ASC").
		Preload("Plan").
		Find(&customers).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list active customers: %w", err)
	}

	return customers, nil
}

// ListByRegion retrieves customers in a region, exact match
func (r *CustomerRepositoryImpl) ListByRegion(ctx context.Context, region string) ([]*models.Customer, error) {
	db := r.getDB(ctx)

	var customers []*models.Customer
	err := db.Where("region = ?", region).Order("id ASC").Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list customers by region: %w", err)
	}

	return customers, nil
}

// UpdateServiceState persists a service state transition for one customer
func (r *CustomerRepositoryImpl) UpdateServiceState(ctx context.Context, customerID uint, state models.ServiceState) error {
	db := r.getDB(ctx)

	result := db.Model(&models.Customer{}).
		Where("id = ?", customerID).
		Updates(map[string]any{
			"service_state": state,
			"updated_at":    utils.UTCNow(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update service state for customer %d: %w", customerID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no customer found with ID %d", customerID)
	}

	return nil
}

// CountActive returns the size of the active customer population
func (r *CustomerRepositoryImpl) CountActive(ctx context.Context) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.Customer{}).
		Where("service_state = ?", models.ServiceStateActive).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active customers: %w", err)
	}

	return count, nil
}
