package errors

import (
	"errors"
	"fmt"
)

// Domain error types for the monitoring and liquidation flow

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates a collaborator is unavailable
	ErrUnavailable = errors.New("service unavailable")
)

// Liquidation-specific errors

var (
	// ErrNoTradingPair indicates no sell pair exists for an asset
	ErrNoTradingPair = errors.New("no trading pair for asset")

	// ErrUnpriceableAsset indicates no price route to the reference currency
	ErrUnpriceableAsset = errors.New("asset has no price in reference currency")

	// ErrSizingRejected indicates the order failed quantity or notional floors
	ErrSizingRejected = errors.New("order sizing rejected by trading rule")

	// ErrOrderRejected indicates the exchange rejected a submitted order
	ErrOrderRejected = errors.New("order rejected by exchange")

	// ErrNotificationFailed indicates the notification channel failed
	ErrNotificationFailed = errors.New("notification delivery failed")
)

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
