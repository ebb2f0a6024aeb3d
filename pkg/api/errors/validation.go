package errors

import (
	"fmt"
	"net/http"
)

type validationError struct {
	genericError
}

type (
	InvalidJSONError      validationError
	InvalidAddressError   validationError
	InvalidAssetKeyError  validationError
	InvalidAmountError    validationError
	PageTooLargeError     validationError
	CustomValidationError validationError
)

var (
	InvalidAddress = &InvalidAddressError{
		genericError: genericError{
			ID:       InvalidAddressErrorID,
			HttpCode: http.StatusBadRequest,
			Message:  "invalid address",
		},
	}
	InvalidAssetKey = &InvalidAssetKeyError{
		genericError: genericError{
			ID:       InvalidAssetKeyErrorID,
			HttpCode: http.StatusBadRequest,
			Message:  "invalid collection or token id",
		},
	}
	InvalidAmount = &InvalidAmountError{
		genericError: genericError{
			ID:       InvalidAmountErrorID,
			HttpCode: http.StatusBadRequest,
			Message:  "invalid amount",
		},
	}
)

func NewInvalidJSONError(message string) *InvalidJSONError {
	return &InvalidJSONError{
		genericError: genericError{
			ID:       InvalidJSONErrorID,
			HttpCode: http.StatusBadRequest,
			Message:  "failed to parse json message: " + message,
		},
	}
}

func NewCustomValidationError(message string) *CustomValidationError {
	return &CustomValidationError{
		genericError: genericError{
			ID:       CustomValidationErrorID,
			HttpCode: http.StatusBadRequest,
			Message:  message,
		},
	}
}

// NewPageTooLargeError rejects journal reads asking for more than limit events at once.
func NewPageTooLargeError(limit int) *PageTooLargeError {
	return &PageTooLargeError{
		genericError: genericError{
			ID:       PageTooLargeErrorID,
			HttpCode: http.StatusBadRequest,
			Message:  fmt.Sprintf("page is too large: at most %d events per request", limit),
		},
	}
}
