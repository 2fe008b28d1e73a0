package repository

import (
	"context"
	"errors"

	"github.com/olara1989/wisp-platform-sub000/models"
	"gorm.io/gorm"
)

// PaymentRecordRepositoryImpl implements PaymentRecordRepository interface
type PaymentRecordRepositoryImpl struct {
	*BaseRepository[models.PaymentRecord, models.PaymentRecordFilter]
}

// NewPaymentRecordRepository creates a new payment record repository
func NewPaymentRecordRepository(db *gorm.DB) PaymentRecordRepository {
	return &PaymentRecordRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PaymentRecord, models.PaymentRecordFilter](db),
	}
}

// ListByCustomer retrieves the full payment ledger for one customer,
// ordered by billing period
func (r *PaymentRecordRepositoryImpl) ListByCustomer(ctx context.Context, customerID uint) ([]*models.PaymentRecord, error) {
	db := r.getDB(ctx)

	var payments []*models.PaymentRecord
	err := db.Where("customer_id = ?", customerID).
		Order("year ASC, month ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	return payments, nil
}

// ByCustomerAndPeriod finds the payment settling a specific billing period.
// Duplicates may exist; the earliest record wins for display purposes.
func (r *PaymentRecordRepositoryImpl) ByCustomerAndPeriod(ctx context.Context, customerID uint, period models.BillingPeriod) (*models.PaymentRecord, error) {
	db := r.getDB(ctx)

	var payment models.PaymentRecord
	err := db.Where("customer_id = ? AND month = ? AND year = ?", customerID, period.Month, period.Year).
		Order("paid_at ASC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &payment, nil
}
