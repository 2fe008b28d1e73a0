// Package models contains domain entities and business models for the subscriber platform
package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceState represents the operator-controlled service state of a customer
type ServiceState string

const (
	ServiceStateActive    ServiceState = "activo"
	ServiceStateSuspended ServiceState = "suspendido"
	ServiceStateCut       ServiceState = "cortado"
	ServiceStatePaused    ServiceState = "pausado"
	ServiceStatePickupCPE ServiceState = "recoger_equipo"
)

// SignupDateLayout is the wire format used for the signup date in the ledger.
// The column is kept as raw text so a malformed value can be surfaced as a
// data-quality error instead of being lost at scan time.
const SignupDateLayout = "2006-01-02"

type Customer struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_customers_uuid" json:"uuid"`

	Name  string `gorm:"size:255;not null" json:"name"`
	Phone string `gorm:"size:20" json:"phone"`
	Email string `gorm:"size:255;index:idx_customers_email" json:"email"`

	// Region is matched exactly by the worklist filters
	Region string `gorm:"size:100;index:idx_customers_region" json:"region"`

	PlanID uint  `gorm:"not null;index:idx_customers_plan_id" json:"plan_id"`
	Plan   *Plan `gorm:"foreignKey:PlanID;references:ID" json:"plan,omitempty"`

	// SignupDate anchors the first billable period (YYYY-MM-DD)
	SignupDate string `gorm:"type:varchar(10);not null" json:"signup_date"`

	ServiceState ServiceState `gorm:"type:varchar(20);not null;default:'activo';index:idx_customers_service_state" json:"service_state"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_customers_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Payments      []PaymentRecord `gorm:"foreignKey:CustomerID" json:"-"`
	DeviceBinding *DeviceBinding  `gorm:"foreignKey:CustomerID" json:"device_binding,omitempty"`
}

func (Customer) TableName() string {
	return "customers"
}

// CustomerFilter represents filter criteria for customer queries
type CustomerFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Email         *string
	Phone         *string
	Region        *string
	PlanID        *uint
	ServiceState  *ServiceState
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (c *Customer) IsActive() bool {
	return c.ServiceState == ServiceStateActive
}

func (c *Customer) IsSuspended() bool {
	return c.ServiceState == ServiceStateSuspended
}

// ParseSignupDate parses the raw signup date column. An error here means the
// ledger row is corrupt and must be reported per customer, never swallowed.
func (c *Customer) ParseSignupDate() (time.Time, error) {
	return time.Parse(SignupDateLayout, c.SignupDate)
}
