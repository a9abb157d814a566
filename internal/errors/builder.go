package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorBuilder assembles an InternalError fluently:
//
//	return ierr.NewError("plan not found").
//		WithHint("The referenced plan does not exist").
//		WithReportableDetails(map[string]any{"plan_id": id}).
//		Mark(ierr.ErrNotFound)
type ErrorBuilder struct {
	err *InternalError
}

// NewError starts a builder from a fresh error message.
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{cause: errors.NewWithDepth(1, msg)},
	}
}

// NewErrorf starts a builder from a formatted error message.
func NewErrorf(format string, args ...any) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{cause: errors.NewWithDepthf(1, format, args...)},
	}
}

// WithError starts a builder wrapping an existing error.
func WithError(err error) *ErrorBuilder {
	if err == nil {
		err = errors.New("unknown error")
	}
	return &ErrorBuilder{
		err: &InternalError{cause: err},
	}
}

// WithHint attaches a client-safe hint.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.hint = hint
	return b
}

// WithHintf attaches a formatted client-safe hint.
func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err.hint = fmt.Sprintf(format, args...)
	return b
}

// WithReportableDetails attaches structured details safe to return to clients.
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	b.err.details = details
	return b
}

// Mark finalizes the builder, classifying the error against one of the
// package marker errors.
func (b *ErrorBuilder) Mark(mark error) error {
	b.err.mark = mark
	return b.err
}
