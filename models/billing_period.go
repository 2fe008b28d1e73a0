package models

import (
	"fmt"
	"time"
)

// BillingPeriod is one (month, year) unit of service a customer is expected
// to pay for. Periods order lexicographically by (year, month).
type BillingPeriod struct {
	Month int `json:"month"` // 1-12
	Year  int `json:"year"`
}

// PeriodOf returns the calendar billing period containing t
func PeriodOf(t time.Time) BillingPeriod {
	return BillingPeriod{Month: int(t.Month()), Year: t.Year()}
}

// Next returns the following billing period, wrapping December into January
func (p BillingPeriod) Next() BillingPeriod {
	if p.Month == 12 {
		return BillingPeriod{Month: 1, Year: p.Year + 1}
	}
	return BillingPeriod{Month: p.Month + 1, Year: p.Year}
}

// Prev returns the preceding billing period, wrapping January into December
func (p BillingPeriod) Prev() BillingPeriod {
	if p.Month == 1 {
		return BillingPeriod{Month: 12, Year: p.Year - 1}
	}
	return BillingPeriod{Month: p.Month - 1, Year: p.Year}
}

// Before reports whether p is strictly earlier than other
func (p BillingPeriod) Before(other BillingPeriod) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// After reports whether p is strictly later than other
func (p BillingPeriod) After(other BillingPeriod) bool {
	return other.Before(p)
}

func (p BillingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// ArrearsResult is the derived unpaid-period set for one customer as of a
// reference date. It is recomputed on every query and never persisted.
type ArrearsResult struct {
	CustomerID     uint            `json:"customer_id"`
	PendingPeriods []BillingPeriod `json:"pending_periods"`
}

// PendingCount returns the number of unpaid periods
func (r *ArrearsResult) PendingCount() int {
	return len(r.PendingPeriods)
}

// HasArrears reports whether the customer owes at least one period
func (r *ArrearsResult) HasArrears() bool {
	return len(r.PendingPeriods) > 0
}
