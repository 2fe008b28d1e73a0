// Package businessflow contains the core business logic and use cases for arrears and service state workflows
package businessflow

import (
	"fmt"
	"time"

	"github.com/olara1989/wisp-platform-sub000/models"
	"github.com/olara1989/wisp-platform-sub000/utils"
)

// CurrentBillablePeriod resolves the billing period considered due as of the
// reference date. Before the cutoff day the current calendar month is still
// inside its grace window, so the previous month is the one that is due
// (December of the prior year when the reference is in January).
func CurrentBillablePeriod(referenceDate time.Time, cutoffDay int) models.BillingPeriod {
	if cutoffDay <= 0 {
		cutoffDay = utils.DefaultBillingCutoffDay
	}

	period := models.PeriodOf(referenceDate)
	if referenceDate.Day() < cutoffDay {
		period = period.Prev()
	}
	return period
}

// ComputeArrears returns the ordered set of unpaid billing periods for one
// customer, from the signup month through the current billable period
// inclusive. A period is paid iff at least one ledger record matches its
// (month, year) exactly; amounts and duplicates are irrelevant. The result is
// deterministic and side-effect free.
//
// A signup date that does not parse is a data-quality failure surfaced as
// ErrInvalidSignupDate; a signup period past the current billable period
// yields an empty result rather than walking forever.
func ComputeArrears(customer *models.Customer, payments []*models.PaymentRecord, referenceDate time.Time, cutoffDay int) (*models.ArrearsResult, error) {
	signup, err := customer.ParseSignupDate()
	if err != nil {
		return nil, fmt.Errorf("customer %d: %w: %q", customer.ID, ErrInvalidSignupDate, customer.SignupDate)
	}

	paid := make(map[models.BillingPeriod]struct{}, len(payments))
	for _, p := range payments {
		paid[p.Period()] = struct{}{}
	}

	current := CurrentBillablePeriod(referenceDate, cutoffDay)

	result := &models.ArrearsResult{CustomerID: customer.ID}
	for period := models.PeriodOf(signup); !period.After(current); period = period.Next() {
		if _, ok := paid[period]; !ok {
			result.PendingPeriods = append(result.PendingPeriods, period)
		}
	}

	return result, nil
}
