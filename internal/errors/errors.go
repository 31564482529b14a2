// Package errors provides the unified error type shared by the remote
// transport and the repository layer. Every failure that crosses a package
// boundary is an *AppError so that callers can classify it (retryable or not,
// cache-preserving or not) without string matching.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind is the category of an error, used for programmatic handling.
type Kind string

const (
	// Client-side / business errors
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindDomainRule Kind = "DOMAIN_RULE"

	// Authorization errors
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"

	// Transport / server errors
	KindRateLimited  Kind = "RATE_LIMITED"
	KindServer       Kind = "SERVER"
	KindConnectivity Kind = "CONNECTIVITY"
	KindDecode       Kind = "DECODE"

	// Everything else
	KindInternal Kind = "INTERNAL"
)

// Severity drives log levels and alerting.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// AppError is the single error type used across the client.
type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code"`    // stable code for programmatic handling
	Message string `json:"message"` // human-readable message
	Details string `json:"details,omitempty"`

	Operation string `json:"operation,omitempty"` // the operation that failed
	Resource  string `json:"resource,omitempty"`  // the resource being operated on

	StatusCode int           `json:"statusCode,omitempty"` // HTTP status, if any
	Severity   Severity      `json:"severity"`
	Retryable  bool          `json:"retryable"`
	RetryAfter time.Duration `json:"retryAfter,omitempty"`

	Cause error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Kind, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Code, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ============================================================================
// BUILDER
// ============================================================================

// Builder provides fluent construction of AppError instances.
type Builder struct {
	err *AppError
}

// New starts a builder with the given kind, code and message.
func New(kind Kind, code, message string) *Builder {
	return &Builder{err: &AppError{
		Kind:     kind,
		Code:     code,
		Message:  message,
		Severity: SeverityMedium,
	}}
}

func (b *Builder) WithDetails(details string) *Builder {
	b.err.Details = details
	return b
}

func (b *Builder) WithOperation(op string) *Builder {
	b.err.Operation = op
	return b
}

func (b *Builder) WithResource(resource string) *Builder {
	b.err.Resource = resource
	return b
}

func (b *Builder) WithStatusCode(status int) *Builder {
	b.err.StatusCode = status
	return b
}

func (b *Builder) WithSeverity(s Severity) *Builder {
	b.err.Severity = s
	return b
}

func (b *Builder) WithRetryable(retryable bool) *Builder {
	b.err.Retryable = retryable
	return b
}

// WithRetryAfter records the server-suggested backoff and implies retryable.
func (b *Builder) WithRetryAfter(d time.Duration) *Builder {
	b.err.RetryAfter = d
	b.err.Retryable = true
	return b
}

func (b *Builder) WithCause(cause error) *Builder {
	b.err.Cause = cause
	return b
}

func (b *Builder) Build() *AppError {
	return b.err
}

// ============================================================================
// CONVENIENCE CONSTRUCTORS
// ============================================================================

// Validation creates a non-retryable input error.
func Validation(code, message string) *Builder {
	return New(KindValidation, code, message).WithSeverity(SeverityLow)
}

// NotFound creates a not-found error.
func NotFound(code, message string) *Builder {
	return New(KindNotFound, code, message).WithSeverity(SeverityLow)
}

// DomainRule creates an error raised by a repository itself, before any
// network call, based on currently cached state.
func DomainRule(code, message string) *Builder {
	return New(KindDomainRule, code, message).WithSeverity(SeverityLow)
}

// Unauthorized creates an authentication error.
func Unauthorized(code, message string) *Builder {
	return New(KindUnauthorized, code, message)
}

// Forbidden creates a permission error.
func Forbidden(code, message string) *Builder {
	return New(KindForbidden, code, message)
}

// RateLimited creates a retryable throttling error.
func RateLimited(code, message string, retryAfter time.Duration) *Builder {
	return New(KindRateLimited, code, message).WithRetryAfter(retryAfter)
}

// Server creates a retryable server-side error.
func Server(code, message string, status int) *Builder {
	return New(KindServer, code, message).
		WithStatusCode(status).
		WithSeverity(SeverityHigh).
		WithRetryable(true)
}

// Connectivity creates a retryable transport error.
func Connectivity(code, message string) *Builder {
	return New(KindConnectivity, code, message).
		WithSeverity(SeverityHigh).
		WithRetryable(true)
}

// Decode creates a payload decoding error.
func Decode(code, message string) *Builder {
	return New(KindDecode, code, message).WithSeverity(SeverityHigh)
}

// Internal creates an unclassified internal error.
func Internal(code, message string) *Builder {
	return New(KindInternal, code, message).WithSeverity(SeverityHigh)
}

// ============================================================================
// CLASSIFICATION
// ============================================================================

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

func IsValidation(err error) bool   { return IsKind(err, KindValidation) }
func IsNotFound(err error) bool     { return IsKind(err, KindNotFound) }
func IsDomainRule(err error) bool   { return IsKind(err, KindDomainRule) }
func IsUnauthorized(err error) bool { return IsKind(err, KindUnauthorized) }
func IsForbidden(err error) bool    { return IsKind(err, KindForbidden) }
func IsRateLimited(err error) bool  { return IsKind(err, KindRateLimited) }
func IsServer(err error) bool       { return IsKind(err, KindServer) }
func IsConnectivity(err error) bool { return IsKind(err, KindConnectivity) }
func IsDecode(err error) bool       { return IsKind(err, KindDecode) }

// IsRetryable reports whether the failed operation may be retried.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// PreservesCache reports whether a failed refresh should leave existing cache
// entries in place. Connectivity, timeout and server errors keep stale data;
// everything else is a caller problem and also keeps stale data, but is not
// worth a background retry.
func PreservesCache(err error) bool {
	return IsConnectivity(err) || IsServer(err) || IsRateLimited(err)
}

// GetSeverity returns the severity of an error, defaulting to medium.
func GetSeverity(err error) Severity {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Severity
	}
	return SeverityMedium
}

// Wrap adds operation context to an error while preserving its classification.
// Wrapping nil returns nil.
func Wrap(err error, operation, message string) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Kind:       appErr.Kind,
			Code:       appErr.Code,
			Message:    message,
			Details:    appErr.Message,
			Operation:  operation,
			Resource:   appErr.Resource,
			StatusCode: appErr.StatusCode,
			Severity:   appErr.Severity,
			Retryable:  appErr.Retryable,
			RetryAfter: appErr.RetryAfter,
			Cause:      err,
		}
	}
	return &AppError{
		Kind:      KindInternal,
		Code:      "WRAPPED",
		Message:   message,
		Details:   err.Error(),
		Operation: operation,
		Severity:  SeverityMedium,
		Cause:     err,
	}
}
