package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/olara1989/wisp-platform-sub000/models"
	"gorm.io/gorm"
)

// DeviceBindingRepositoryImpl implements DeviceBindingRepository interface
type DeviceBindingRepositoryImpl struct {
	*BaseRepository[models.DeviceBinding, models.DeviceBindingFilter]
}

// NewDeviceBindingRepository creates a new device binding repository
func NewDeviceBindingRepository(db *gorm.DB) DeviceBindingRepository {
	return &DeviceBindingRepositoryImpl{
		BaseRepository: NewBaseRepository[models.DeviceBinding, models.DeviceBindingFilter](db),
	}
}

// ByCustomerID retrieves the device binding for a customer. A customer with
// no binding yields (nil, nil); callers decide whether that is an error.
func (r *DeviceBindingRepositoryImpl) ByCustomerID(ctx context.Context, customerID uint) (*models.DeviceBinding, error) {
	db := r.getDB(ctx)

	var binding models.DeviceBinding
	err := db.Where("customer_id = ?", customerID).First(&binding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find device binding for customer %d: %w", customerID, err)
	}

	return &binding, nil
}
