package models

import "time"

// ControlMode selects how the router enforces a suspension for a device
type ControlMode string

const (
	ControlModeQueue       ControlMode = "queue"
	ControlModeAddressList ControlMode = "address_list"
	ControlModePPPoE       ControlMode = "pppoe"
)

// DeviceBinding associates a customer with the network device the router
// controls. The binding is owned by the device registry and may be absent.
type DeviceBinding struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CustomerID uint      `gorm:"not null;uniqueIndex:uk_device_bindings_customer_id" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;references:ID" json:"-"`

	RouterID    uint        `gorm:"not null;index:idx_device_bindings_router_id" json:"router_id"`
	DeviceIP    string      `gorm:"type:varchar(45);not null" json:"device_ip"`
	ControlMode ControlMode `gorm:"type:varchar(20);not null;default:'queue'" json:"control_mode"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (DeviceBinding) TableName() string {
	return "device_bindings"
}

// DeviceBindingFilter represents filter criteria for device binding queries
type DeviceBindingFilter struct {
	ID         *uint
	CustomerID *uint
	RouterID   *uint
}
