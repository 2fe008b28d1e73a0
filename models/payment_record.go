package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was collected
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "efectivo"
	PaymentMethodTransfer PaymentMethod = "transferencia"
	PaymentMethodDeposit  PaymentMethod = "deposito"
	PaymentMethodOther    PaymentMethod = "otro"
)

// PaymentRecord represents one collected monthly payment in the ledger.
// One record is expected per (customer, month, year); duplicates still count
// the period as paid.
type PaymentRecord struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_payments_uuid" json:"uuid"`

	CustomerID uint      `gorm:"not null;index:idx_payments_customer_id" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;references:ID" json:"-"`

	// Billing period the payment settles
	Month int `gorm:"not null;index:idx_payments_period,priority:2" json:"month"` // 1-12
	Year  int `gorm:"not null;index:idx_payments_period,priority:1" json:"year"`

	Amount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Method PaymentMethod   `gorm:"type:varchar(20);not null;default:'efectivo'" json:"method"`

	PaidAt    time.Time `gorm:"not null;index:idx_payments_paid_at" json:"paid_at"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}

// Period returns the billing period this payment settles
func (p *PaymentRecord) Period() BillingPeriod {
	return BillingPeriod{Month: p.Month, Year: p.Year}
}

// PaymentRecordFilter represents filter criteria for payment queries
type PaymentRecordFilter struct {
	ID         *uint
	CustomerID *uint
	Month      *int
	Year       *int
	Method     *PaymentMethod
	PaidAfter  *time.Time
	PaidBefore *time.Time
}
