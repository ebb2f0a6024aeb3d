// Package errors contains errors returned by the marketplace HTTP API.
package errors

import (
	"fmt"
	"net/http"
)

type ErrorID int

const (
	UnknownErrorID ErrorID = 0

	// auth errors
	APIKeyNotValidErrorID ErrorID = 2
	APIKeyDisabledErrorID ErrorID = 3
	RateLimitedErrorID    ErrorID = 4

	// validation errors
	InvalidJSONErrorID      ErrorID = 100
	InvalidAddressErrorID   ErrorID = 102
	InvalidAssetKeyErrorID  ErrorID = 103
	InvalidAmountErrorID    ErrorID = 104
	PageTooLargeErrorID     ErrorID = 105
	CustomValidationErrorID ErrorID = 199

	// marketplace errors
	InvalidPriceErrorID      ErrorID = 200
	AlreadyListedErrorID     ErrorID = 201
	NotListedErrorID         ErrorID = 202
	NotOwnerErrorID          ErrorID = 203
	NotApprovedErrorID       ErrorID = 204
	PriceNotMetErrorID       ErrorID = 205
	NoProceedsErrorID        ErrorID = 206
	LedgerBusyErrorID        ErrorID = 207
	NotAuthorizedErrorID     ErrorID = 210
	NoSuchTokenErrorID       ErrorID = 211
	NoSuchCollectionErrorID  ErrorID = 212
	CollectionExistsErrorID  ErrorID = 213
	MintFeeNotMetErrorID     ErrorID = 214
	InsufficientFundsErrorID ErrorID = 220
	BalanceOverflowErrorID   ErrorID = 221
)

// ApiError is an error which is returned to the client as a JSON object.
// Types implementing it must be serializable to JSON.
type ApiError interface {
	error
	GetID() ErrorID
	GetHttpCode() int
}

type genericError struct {
	ID       ErrorID `json:"error"`
	HttpCode int     `json:"-"`
	Message  string  `json:"message"`
}

func (e *genericError) Error() string {
	return fmt.Sprintf("%d: %s", e.ID, e.Message)
}

func (e *genericError) GetID() ErrorID {
	return e.ID
}

func (e *genericError) GetHttpCode() int {
	return e.HttpCode
}

type UnknownError struct {
	genericError
	inner error
}

func NewUnknownError(inner error) *UnknownError {
	return NewUnknownErrorWithMsg("Error is unknown", inner)
}

func NewUnknownErrorWithMsg(message string, inner error) *UnknownError {
	return &UnknownError{
		genericError: genericError{
			ID:       UnknownErrorID,
			HttpCode: http.StatusInternalServerError,
			Message:  message,
		},
		inner: inner,
	}
}

func (u *UnknownError) Unwrap() error {
	return u.inner
}

func (u *UnknownError) Error() string {
	if u.inner != nil {
		return fmt.Sprintf("%s; inner error (%T): %s", u.genericError.Error(), u.inner, u.inner.Error())
	}
	return u.genericError.Error()
}
