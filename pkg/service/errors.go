package service

import (
	"github.com/pkg/errors"

	"voltage_wallet_demo/pkg/monitor"
	"voltage_wallet_demo/pkg/voltage"
)

// ValidationError rejects a form before anything is sent to the wallet
// service.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UserMessage renders err for the person at the browser.
func UserMessage(err error) string {
	var apiErr *voltage.APIError
	var validationErr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &apiErr):
		return apiErr.Message()
	case errors.Is(err, monitor.ErrTimeout):
		return "Payment monitoring timed out; the payment may still complete"
	case errors.Is(err, monitor.ErrNotGenerated):
		return "Failed to generate invoice"
	}
	return err.Error()
}
