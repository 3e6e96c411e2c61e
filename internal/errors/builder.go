package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// InternalError is the error type used across the codebase. It carries an
// internal message, an optional user-facing hint and optional reportable
// details that are safe to return to API callers.
type InternalError struct {
	cause             error
	hint              string
	reportableDetails map[string]any
}

func (e *InternalError) Error() string {
	return e.cause.Error()
}

func (e *InternalError) Unwrap() error {
	return e.cause
}

// Hint returns the user-facing hint, if any.
func (e *InternalError) Hint() string {
	return e.hint
}

// ReportableDetails returns details that are safe to expose to callers.
func (e *InternalError) ReportableDetails() map[string]any {
	return e.reportableDetails
}

// ErrorBuilder builds an InternalError. Terminate the chain with Mark to
// attach a marker error and obtain the final error value.
type ErrorBuilder struct {
	err *InternalError
}

// NewError starts building an error with the given internal message.
func NewError(message string) *ErrorBuilder {
	return &ErrorBuilder{err: &InternalError{cause: errors.New(message)}}
}

// NewErrorf starts building an error with a formatted internal message.
func NewErrorf(format string, args ...any) *ErrorBuilder {
	return &ErrorBuilder{err: &InternalError{cause: errors.Newf(format, args...)}}
}

// WithError starts building an error that wraps an existing cause.
func WithError(err error) *ErrorBuilder {
	if err == nil {
		err = errors.New("unknown error")
	}
	return &ErrorBuilder{err: &InternalError{cause: err}}
}

// WithHint attaches a user-facing hint.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.hint = hint
	return b
}

// WithHintf attaches a formatted user-facing hint.
func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err.hint = fmt.Sprintf(format, args...)
	return b
}

// WithReportableDetails attaches details that are safe to expose to callers.
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	b.err.reportableDetails = details
	return b
}

// WithMessage wraps the cause with an additional message.
func (b *ErrorBuilder) WithMessage(message string) *ErrorBuilder {
	b.err.cause = errors.WithDetail(b.err.cause, message)
	return b
}

// Mark attaches the marker error and returns the built error. errors.Is
// against the marker works on the result.
func (b *ErrorBuilder) Mark(marker error) error {
	b.err.cause = errors.Mark(b.err.cause, marker)
	return b.err
}

// HintFromErr extracts the user-facing hint from an error chain, if present.
func HintFromErr(err error) string {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Hint()
	}
	return ""
}

// DetailsFromErr extracts reportable details from an error chain, if present.
func DetailsFromErr(err error) map[string]any {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.ReportableDetails()
	}
	return nil
}
