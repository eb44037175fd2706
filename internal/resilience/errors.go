// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// ErrorType represents different types of errors for handling strategies
type ErrorType int

const (
	ErrorTypeUnknown            ErrorType = iota
	ErrorTypeTransient                    // Temporary network issues
	ErrorTypePermanent                    // Errors that will not go away on retry
	ErrorTypeTimeout                      // Request timeouts
	ErrorTypeRateLimit                    // Too many requests
	ErrorTypeServiceUnavailable           // Service overloaded or restarting
	ErrorTypeInvalidInput                 // Bad input data
)

// ClassifiedError wraps an error with type information
type ClassifiedError struct {
	Original  error
	Type      ErrorType
	Message   string
	Retryable bool
}

func (e *ClassifiedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Original == nil {
		return e.Type.String()
	}
	return e.Original.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// IsRetryable returns whether this error should be retried
func (e *ClassifiedError) IsRetryable() bool {
	return e.Retryable
}

// ClassifyError categorizes an error for appropriate handling. Errors that
// are already classified anywhere in the chain keep their classification.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	// The caller gave up; retrying cannot help
	if errors.Is(err, context.Canceled) {
		return &ClassifiedError{Original: err, Type: ErrorTypePermanent, Retryable: false}
	}

	if isTimeoutError(err) {
		return &ClassifiedError{Original: err, Type: ErrorTypeTimeout, Retryable: true}
	}

	if isNetworkError(err) {
		return &ClassifiedError{Original: err, Type: ErrorTypeTransient, Retryable: true}
	}

	return &ClassifiedError{Original: err, Type: ErrorTypeUnknown, Retryable: false}
}

// ClassifyHTTPStatus classifies a non-2xx response. 429, 502, 503 and 504
// are retryable; other statuses are not.
func ClassifyHTTPStatus(status int, message string) *ClassifiedError {
	classified := &ClassifiedError{
		Original: fmt.Errorf("http status %d", status),
		Message:  message,
	}
	switch status {
	case http.StatusTooManyRequests:
		classified.Type = ErrorTypeRateLimit
		classified.Retryable = true
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		classified.Type = ErrorTypeServiceUnavailable
		classified.Retryable = true
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		classified.Type = ErrorTypeInvalidInput
	default:
		classified.Type = ErrorTypePermanent
	}
	return classified
}

// isNetworkError checks if an error is network-related
func isNetworkError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}

// isTimeoutError checks if an error is timeout-related
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// NewTransientError creates a new transient error
func NewTransientError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Original:  cause,
		Type:      ErrorTypeTransient,
		Message:   message,
		Retryable: true,
	}
}

// NewPermanentError creates a new permanent error
func NewPermanentError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Original:  cause,
		Type:      ErrorTypePermanent,
		Message:   message,
		Retryable: false,
	}
}
