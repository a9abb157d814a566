package errors

import (
	"github.com/cockroachdb/errors"
)

// Marker errors define the broad classes every error in the system resolves
// to. Callers should test against these with the Is* helpers rather than
// matching on messages.
var (
	ErrValidation       = errors.New("validation_error")
	ErrNotFound         = errors.New("not_found")
	ErrAlreadyExists    = errors.New("already_exists")
	ErrInvalidOperation = errors.New("invalid_operation")
	ErrPermissionDenied = errors.New("permission_denied")
	ErrDatabase         = errors.New("database_error")
	ErrSignature        = errors.New("signature_error")
	ErrGateway          = errors.New("gateway_error")
	ErrInternal         = errors.New("internal_error")
	ErrSystem           = errors.New("system_error")
)

// InternalError is the concrete error type produced by the builder in this
// package. The hint is safe to show to API clients; the wrapped cause is not.
type InternalError struct {
	cause   error
	mark    error
	hint    string
	details map[string]any
}

func (e *InternalError) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	if e.mark != nil {
		return e.mark.Error()
	}
	return "unknown error"
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *InternalError) Unwrap() error {
	return e.cause
}

// Is matches both the mark and the wrapped cause so that
// errors.Is(err, ErrNotFound) works regardless of wrapping depth.
func (e *InternalError) Is(target error) bool {
	if e.mark != nil && errors.Is(e.mark, target) {
		return true
	}
	return false
}

// Hint returns the client-safe hint, if any.
func (e *InternalError) Hint() string {
	return e.hint
}

// ReportableDetails returns structured details safe to expose to API clients.
func (e *InternalError) ReportableDetails() map[string]any {
	return e.details
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

func IsSignature(err error) bool {
	return errors.Is(err, ErrSignature)
}

func IsGateway(err error) bool {
	return errors.Is(err, ErrGateway)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal) || errors.Is(err, ErrSystem)
}

// IsPermanent reports whether retrying the same input could possibly change
// the outcome. Validation failures, missing references and duplicates are
// permanent; infrastructure failures are not.
func IsPermanent(err error) bool {
	return IsValidation(err) || IsNotFound(err) || IsAlreadyExists(err) || IsInvalidOperation(err)
}
