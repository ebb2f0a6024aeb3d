package client

import (
	"encoding/json"

	"github.com/pkg/errors"
)

var NoApiKeyError = errors.New("no api key provided")

type RequestError struct {
	Err        error
	StatusCode int
	Body       string
}

func newRequestError(err error, code int, body string) *RequestError {
	return &RequestError{Err: err, StatusCode: code, Body: body}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func (e *RequestError) Error() string {
	if e.Body != "" {
		return errors.Wrap(e.Err, e.Body).Error()
	}
	return e.Err.Error()
}

// APIError returns the error object sent by the node, if any.
func (e *RequestError) APIError() (APIError, bool) {
	var ae APIError
	if e.Body == "" || json.Unmarshal([]byte(e.Body), &ae) != nil || ae.Message == "" {
		return APIError{}, false
	}
	return ae, true
}

// APIError is the JSON error object of the node API.
type APIError struct {
	ID      int    `json:"error"`
	Message string `json:"message"`
}

type ParseError struct {
	Err error
}

func newParseError(err error) *ParseError {
	return &ParseError{Err: err}
}

func (e ParseError) Unwrap() error {
	return e.Err
}

func (e ParseError) Error() string {
	return e.Err.Error()
}
