// Package businessflow contains the core business logic and use cases for arrears and service state workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Customer-related errors
	ErrCustomerNotFound = errors.New("customer not found")

	// Arrears calculator errors
	ErrInvalidSignupDate = errors.New("invalid signup date")

	// Ledger errors
	ErrRepositoryUnavailable = errors.New("ledger repository unavailable")
	ErrPaymentPeriodInvalid  = errors.New("payment period is invalid")
	ErrPaymentAmountInvalid  = errors.New("payment amount is invalid")
	ErrPaymentAlreadyExists  = errors.New("payment already registered for period")

	// Service state errors
	ErrAlreadySuspended     = errors.New("customer is already suspended")
	ErrReactivateNotAllowed = errors.New("customer state does not allow reactivation")
	ErrDeviceNotBound       = errors.New("no device bound to customer")

	// Network controller errors
	ErrControllerUnavailable = errors.New("network controller unavailable")
	ErrControllerTimeout     = errors.New("network controller timed out")

	// Filter errors
	ErrInvalidRegionFilter      = errors.New("region filter must not be blank")
	ErrInvalidPeriodCountFilter = errors.New("pending period count filter must be at least 1")
	ErrInvalidReferenceDate     = errors.New("reference date is invalid")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsCustomerNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound)
}

func IsInvalidSignupDate(err error) bool {
	return errors.Is(err, ErrInvalidSignupDate)
}

func IsRepositoryUnavailable(err error) bool {
	return errors.Is(err, ErrRepositoryUnavailable)
}

func IsPaymentPeriodInvalid(err error) bool {
	return errors.Is(err, ErrPaymentPeriodInvalid)
}

func IsPaymentAmountInvalid(err error) bool {
	return errors.Is(err, ErrPaymentAmountInvalid)
}

func IsPaymentAlreadyExists(err error) bool {
	return errors.Is(err, ErrPaymentAlreadyExists)
}

func IsAlreadySuspended(err error) bool {
	return errors.Is(err, ErrAlreadySuspended)
}

func IsReactivateNotAllowed(err error) bool {
	return errors.Is(err, ErrReactivateNotAllowed)
}

func IsDeviceNotBound(err error) bool {
	return errors.Is(err, ErrDeviceNotBound)
}

func IsControllerUnavailable(err error) bool {
	return errors.Is(err, ErrControllerUnavailable)
}

func IsControllerTimeout(err error) bool {
	return errors.Is(err, ErrControllerTimeout)
}

func IsInvalidRegionFilter(err error) bool {
	return errors.Is(err, ErrInvalidRegionFilter)
}

func IsInvalidPeriodCountFilter(err error) bool {
	return errors.Is(err, ErrInvalidPeriodCountFilter)
}

func IsInvalidReferenceDate(err error) bool {
	return errors.Is(err, ErrInvalidReferenceDate)
}
