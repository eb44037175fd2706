// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"errors"
	"fmt"
)

// ErrEmptyText is returned when a request carries no text to analyze
var ErrEmptyText = errors.New("text field is missing or empty")

// ConfigurationError reports an invalid recognizer or engine configuration.
// It is only ever produced while building the engine.
type ConfigurationError struct {
	Component string
	Err       error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %v", e.Component, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError wraps err for the named component
func NewConfigurationError(component string, err error) *ConfigurationError {
	return &ConfigurationError{Component: component, Err: err}
}

// UnsupportedLanguageError reports a request language with no recognizers
type UnsupportedLanguageError struct {
	Language  string
	Supported []string
}

func (e *UnsupportedLanguageError) Error() string {
	if len(e.Supported) == 0 {
		return fmt.Sprintf("unsupported language %q", e.Language)
	}
	return fmt.Sprintf("unsupported language %q (supported: %v)", e.Language, e.Supported)
}

// InvalidRequestError reports a malformed request field
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RecognizerExecutionError reports a recognizer failing during a request.
// Partial results are never returned alongside it.
type RecognizerExecutionError struct {
	Recognizer string
	Err        error
}

func (e *RecognizerExecutionError) Error() string {
	return fmt.Sprintf("recognizer %s failed: %v", e.Recognizer, e.Err)
}

func (e *RecognizerExecutionError) Unwrap() error {
	return e.Err
}

// IsClientError reports whether err was caused by the request itself
// rather than by the engine.
func IsClientError(err error) bool {
	if errors.Is(err, ErrEmptyText) {
		return true
	}
	var unsupported *UnsupportedLanguageError
	if errors.As(err, &unsupported) {
		return true
	}
	var invalid *InvalidRequestError
	return errors.As(err, &invalid)
}
