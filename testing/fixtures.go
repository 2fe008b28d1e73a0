package testing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/olara1989/wisp-platform-sub000/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func utcDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// CreateTestPlan inserts a plan with the given price
func CreateTestPlan(db *gorm.DB, name string, price string) (*models.Plan, error) {
	amount, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}

	plan := &models.Plan{
		Name:      name,
		Price:     amount,
		SpeedMbps: 10,
	}
	if err := db.Create(plan).Error; err != nil {
		return nil, fmt.Errorf("failed to create test plan: %w", err)
	}
	return plan, nil
}

// CreateTestCustomer inserts an active customer on the given plan
func CreateTestCustomer(db *gorm.DB, planID uint, name, region, signupDate string) (*models.Customer, error) {
	customer := &models.Customer{
		UUID:         uuid.New(),
		Name:         name,
		Phone:        "5551234567",
		Region:       region,
		PlanID:       planID,
		SignupDate:   signupDate,
		ServiceState: models.ServiceStateActive,
	}
	if err := db.Create(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create test customer: %w", err)
	}
	return customer, nil
}

// CreateTestPayment inserts one ledger entry for the given period
func CreateTestPayment(db *gorm.DB, customerID uint, month, year int, amount string) (*models.PaymentRecord, error) {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}

	payment := &models.PaymentRecord{
		UUID:       uuid.New(),
		CustomerID: customerID,
		Month:      month,
		Year:       year,
		Amount:     value,
		Method:     models.PaymentMethodCash,
		PaidAt:     utcDate(year, month, 1),
	}
	if err := db.Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to create test payment: %w", err)
	}
	return payment, nil
}

// CreateTestDeviceBinding inserts a device binding for the customer
func CreateTestDeviceBinding(db *gorm.DB, customerID, routerID uint, deviceIP string) (*models.DeviceBinding, error) {
	binding := &models.DeviceBinding{
		CustomerID:  customerID,
		RouterID:    routerID,
		DeviceIP:    deviceIP,
		ControlMode: models.ControlModeQueue,
	}
	if err := db.Create(binding).Error; err != nil {
		return nil, fmt.Errorf("failed to create test device binding: %w", err)
	}
	return binding, nil
}
