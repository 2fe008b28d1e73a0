package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan represents a service plan from the catalog. The price is used only to
// estimate the amount owed per pending period; it never validates a payment.
type Plan struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	SpeedMbps int             `gorm:"not null;default:0" json:"speed_mbps"`
	CreatedAt time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Plan) TableName() string {
	return "plans"
}

// PlanFilter represents filter criteria for plan queries
type PlanFilter struct {
	ID   *uint
	Name *string
}
