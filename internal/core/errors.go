package core

import (
	"fmt"
	"net/http"
)

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	// ErrorTypeConfiguration indicates an enterprise policy that failed validation
	ErrorTypeConfiguration ErrorType = "configuration_error"
	// ErrorTypeDetection indicates a failure inside pattern execution
	ErrorTypeDetection ErrorType = "detection_error"
	// ErrorTypeRouting indicates a missing strategy-to-configuration mapping
	ErrorTypeRouting ErrorType = "routing_error"
	// ErrorTypeAuditWrite indicates a failed audit log append
	ErrorTypeAuditWrite ErrorType = "audit_write_error"
)

// ScreeningError is the base error type for all screening pipeline errors
type ScreeningError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *ScreeningError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *ScreeningError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode maps the error type to an HTTP status code
func (e *ScreeningError) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeConfiguration:
		return http.StatusBadRequest
	case ErrorTypeDetection, ErrorTypeRouting, ErrorTypeAuditWrite:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON returns the error in the wire format served to clients
func (e *ScreeningError) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"type":    string(e.Type),
			"message": e.Message,
		},
	}
}

// NewDetectionError creates an error for a pattern execution failure.
// Callers must fail closed on it: highest level, local handling only.
func NewDetectionError(message string, err error) *ScreeningError {
	return &ScreeningError{
		Type:    ErrorTypeDetection,
		Message: message,
		Err:     err,
	}
}

// NewRoutingError creates an error for a missing strategy mapping.
// This is a programming defect, not a runtime condition to default away.
func NewRoutingError(message string) *ScreeningError {
	return &ScreeningError{
		Type:    ErrorTypeRouting,
		Message: message,
	}
}

// NewAuditWriteError creates an error for a failed audit append.
// These are recorded to the emergency log and never propagate to callers.
func NewAuditWriteError(message string, err error) *ScreeningError {
	return &ScreeningError{
		Type:    ErrorTypeAuditWrite,
		Message: message,
		Err:     err,
	}
}

// NewConfigurationError creates an error wrapping policy violations.
func NewConfigurationError(message string) *ScreeningError {
	return &ScreeningError{
		Type:    ErrorTypeConfiguration,
		Message: message,
	}
}
