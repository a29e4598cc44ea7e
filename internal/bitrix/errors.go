package bitrix

import (
	"errors"
	"fmt"
	"strings"
)

// quota-exceeded error code reported by the service when the caller
// goes over the allowed query rate.
const codeQueryLimitExceeded = "QUERY_LIMIT_EXCEEDED"

// RemoteError is a service-reported application error: the transport
// succeeded but the response envelope carried an error field.
type RemoteError struct {
	// Code is the machine-readable error identifier from the envelope.
	Code string

	// Description is the service-provided human-readable description,
	// when present.
	Description string

	// Method is the REST method that failed.
	Method string
}

func (e *RemoteError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("remote error on %s: %s (%s)", e.Method, e.Description, e.Code)
	}
	return fmt.Sprintf("remote error on %s: %s", e.Method, e.Code)
}

// QuotaExceeded reports whether the error indicates a query-rate
// violation, which the client retries transparently.
func (e *RemoteError) QuotaExceeded() bool {
	if e.Code == codeQueryLimitExceeded {
		return true
	}
	return strings.Contains(strings.ToLower(e.Description), "query limit")
}

// IsRemoteError reports whether err (or any error in its chain) is a
// RemoteError.
func IsRemoteError(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// TransportError is a network or HTTP-level failure: the service never
// produced a valid response envelope.
type TransportError struct {
	// Status is the HTTP status code, or 0 when the request never got
	// a response.
	Status int

	// Method is the REST method that failed.
	Method string

	// Body is a snippet of the response body, for diagnostics.
	Body string
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("transport error on %s: %s", e.Method, e.Body)
	}
	return fmt.Sprintf("unexpected status %d on %s: %s", e.Status, e.Method, e.Body)
}

// IsTransportError reports whether err (or any error in its chain) is a
// TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
