package businessflow

import (
	"testing"
	"time"

	"github.com/olara1989/wisp-platform-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func activeCustomer(id uint, signupDate string) *models.Customer {
	return &models.Customer{
		ID:           id,
		Name:         "Test Customer",
		SignupDate:   signupDate,
		ServiceState: models.ServiceStateActive,
	}
}

func paymentFor(customerID uint, month, year int) *models.PaymentRecord {
	return &models.PaymentRecord{
		CustomerID: customerID,
		Month:      month,
		Year:       year,
	}
}

func TestCurrentBillablePeriod(t *testing.T) {
	t.Run("BeforeCutoffDayUsesPreviousMonth", func(t *testing.T) {
		period := CurrentBillablePeriod(utcDate(2024, 3, 4), 5)
		assert.Equal(t, models.BillingPeriod{Month: 2, Year: 2024}, period)
	})

	t.Run("OnCutoffDayUsesCurrentMonth", func(t *testing.T) {
		period := CurrentBillablePeriod(utcDate(2024, 3, 5), 5)
		assert.Equal(t, models.BillingPeriod{Month: 3, Year: 2024}, period)
	})

	t.Run("AfterCutoffDayUsesCurrentMonth", func(t *testing.T) {
		period := CurrentBillablePeriod(utcDate(2024, 3, 28), 5)
		assert.Equal(t, models.BillingPeriod{Month: 3, Year: 2024}, period)
	})

	t.Run("JanuaryGraceRollsToDecember", func(t *testing.T) {
		period := CurrentBillablePeriod(utcDate(2024, 1, 3), 5)
		assert.Equal(t, models.BillingPeriod{Month: 12, Year: 2023}, period)
	})

	t.Run("NonPositiveCutoffFallsBackToDefault", func(t *testing.T) {
		period := CurrentBillablePeriod(utcDate(2024, 3, 4), 0)
		assert.Equal(t, models.BillingPeriod{Month: 2, Year: 2024}, period)
	})
}

func TestComputeArrears(t *testing.T) {
	t.Run("NoPaymentsWalksFromSignupMonth", func(t *testing.T) {
		customer := activeCustomer(1, "2024-01-15")

		result, err := ComputeArrears(customer, nil, utcDate(2024, 3, 10), 5)
		require.NoError(t, err)
		assert.Equal(t, uint(1), result.CustomerID)
		assert.Equal(t, []models.BillingPeriod{
			{Month: 1, Year: 2024},
			{Month: 2, Year: 2024},
			{Month: 3, Year: 2024},
		}, result.PendingPeriods)
		assert.Equal(t, 3, result.PendingCount())
		assert.True(t, result.HasArrears())
	})

	t.Run("FullyPaidLeavesOnlyCurrentPeriod", func(t *testing.T) {
		customer := activeCustomer(2, "2024-01-15")
		payments := []*models.PaymentRecord{
			paymentFor(2, 1, 2024),
			paymentFor(2, 2, 2024),
		}

		result, err := ComputeArrears(customer, payments, utcDate(2024, 3, 10), 5)
		require.NoError(t, err)
		assert.Equal(t, []models.BillingPeriod{{Month: 3, Year: 2024}}, result.PendingPeriods)
	})

	t.Run("FullyCurrentCustomerHasNoArrears", func(t *testing.T) {
		customer := activeCustomer(3, "2024-01-15")
		payments := []*models.PaymentRecord{
			paymentFor(3, 1, 2024),
			paymentFor(3, 2, 2024),
			paymentFor(3, 3, 2024),
		}

		result, err := ComputeArrears(customer, payments, utcDate(2024, 3, 10), 5)
		require.NoError(t, err)
		assert.Empty(t, result.PendingPeriods)
		assert.False(t, result.HasArrears())
	})

	t.Run("YearRolloverProducesDecemberAndJanuary", func(t *testing.T) {
		customer := activeCustomer(4, "2023-12-20")

		result, err := ComputeArrears(customer, nil, utcDate(2024, 1, 10), 5)
		require.NoError(t, err)
		assert.Equal(t, []models.BillingPeriod{
			{Month: 12, Year: 2023},
			{Month: 1, Year: 2024},
		}, result.PendingPeriods)
	})

	t.Run("GraceWindowExcludesCurrentCalendarMonth", func(t *testing.T) {
		customer := activeCustomer(5, "2024-01-15")
		payments := []*models.PaymentRecord{
			paymentFor(5, 1, 2024),
		}

		result, err := ComputeArrears(customer, payments, utcDate(2024, 3, 4), 5)
		require.NoError(t, err)
		assert.Equal(t, []models.BillingPeriod{{Month: 2, Year: 2024}}, result.PendingPeriods)
	})

	t.Run("DuplicatePaymentsCountOnce", func(t *testing.T) {
		customer := activeCustomer(6, "2024-02-01")
		payments := []*models.PaymentRecord{
			paymentFor(6, 2, 2024),
			paymentFor(6, 2, 2024),
		}

		result, err := ComputeArrears(customer, payments, utcDate(2024, 3, 10), 5)
		require.NoError(t, err)
		assert.Equal(t, []models.BillingPeriod{{Month: 3, Year: 2024}}, result.PendingPeriods)
	})

	t.Run("PaymentsOutsideRangeAreIgnored", func(t *testing.T) {
		customer := activeCustomer(7, "2024-02-01")
		payments := []*models.PaymentRecord{
			paymentFor(7, 8, 2024),
			paymentFor(7, 12, 2019),
		}

		result, err := ComputeArrears(customer, payments, utcDate(2024, 3, 10), 5)
		require.NoError(t, err)
		assert.Equal(t, []models.BillingPeriod{
			{Month: 2, Year: 2024},
			{Month: 3, Year: 2024},
		}, result.PendingPeriods)
	})

	t.Run("FutureSignupYieldsEmptyResult", func(t *testing.T) {
		customer := activeCustomer(8, "2024-06-01")

		result, err := ComputeArrears(customer, nil, utcDate(2024, 3, 10), 5)
		require.NoError(t, err)
		assert.Empty(t, result.PendingPeriods)
	})

	t.Run("InvalidSignupDateIsSurfaced", func(t *testing.T) {
		for _, raw := range []string{"", "31/12/2023", "2024-13-01", "not a date"} {
			customer := activeCustomer(9, raw)

			result, err := ComputeArrears(customer, nil, utcDate(2024, 3, 10), 5)
			require.Error(t, err, "signup date %q", raw)
			assert.True(t, IsInvalidSignupDate(err))
			assert.Nil(t, result)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		customer := activeCustomer(10, "2023-07-15")
		payments := []*models.PaymentRecord{
			paymentFor(10, 9, 2023),
			paymentFor(10, 11, 2023),
		}

		first, err := ComputeArrears(customer, payments, utcDate(2024, 2, 20), 5)
		require.NoError(t, err)
		second, err := ComputeArrears(customer, payments, utcDate(2024, 2, 20), 5)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
