package errors

import (
	"net/http"
)

// AuthError rejects a mutating request before it reaches the ledger.
type AuthError struct {
	genericError
}

var (
	ErrAPIKeyNotValid = &AuthError{
		genericError: genericError{
			ID:       APIKeyNotValidErrorID,
			HttpCode: http.StatusForbidden,
			Message:  "Provided API key is not correct",
		},
	}
	// ErrAPIKeyDisabled is returned by every mutating route of a node started without an API key.
	ErrAPIKeyDisabled = &AuthError{
		genericError: genericError{
			ID:       APIKeyDisabledErrorID,
			HttpCode: http.StatusForbidden,
			Message:  "Mutating API is disabled on this node",
		},
	}
	ErrRateLimited = &AuthError{
		genericError: genericError{
			ID:       RateLimitedErrorID,
			HttpCode: http.StatusTooManyRequests,
			Message:  "Too many requests, retry later",
		},
	}
)
