package domain

import (
	"errors"
	"maps"
)

// ErrorKind classifies an engine error for callers.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindInternal   ErrorKind = "internal"
)

// Error is a typed engine error carrying a machine-readable code and an
// optional field-to-reason map. Package-level sentinels are compared with
// errors.Is; values derived through WithField or Wrap still match them.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  map[string]string

	sentinel *Error
	cause    error
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation errors
var (
	ErrEmptyRecipients       = newError(KindValidation, "empty_recipients", "recipient list must not be empty")
	ErrDuplicateRecipient    = newError(KindValidation, "duplicate_recipient", "recipients must be distinct")
	ErrInvalidAmount         = newError(KindValidation, "invalid_amount", "amount must be positive")
	ErrAmountTooLarge        = newError(KindValidation, "amount_too_large", "amount exceeds maximum allowed")
	ErrInvalidPeriod         = newError(KindValidation, "invalid_period", "period_to must not precede period_from")
	ErrInvalidSource         = newError(KindValidation, "invalid_source", "unknown distribution source")
	ErrInvalidMode           = newError(KindValidation, "invalid_mode", "unknown allocation mode")
	ErrMissingPercentage     = newError(KindValidation, "missing_percentage", "percentage is required for every recipient")
	ErrInvalidPercentage     = newError(KindValidation, "invalid_percentage", "percentage must be between 0 and 100")
	ErrPercentageSum         = newError(KindValidation, "percentage_sum", "percentages must sum to 100")
	ErrMissingFixedAmount    = newError(KindValidation, "missing_amount", "amount is required for every recipient")
	ErrFixedSum              = newError(KindValidation, "fixed_sum", "fixed amounts must sum to the total amount")
	ErrInsufficientBalance   = newError(KindValidation, "insufficient_balance", "insufficient balance")
	ErrNegativeShare         = newError(KindValidation, "negative_share", "share must not be negative")
	ErrSharePrecision        = newError(KindValidation, "share_precision", "share has too many decimal places")
	ErrLootShareExceedsValue = newError(KindValidation, "shares_exceed_value", "shares exceed loot estimated value")
	ErrNotesTooLong          = newError(KindValidation, "notes_too_long", "notes exceed maximum length")
	ErrMissingActor          = newError(KindValidation, "missing_actor", "actor is required")
	ErrInvalidRequest        = newError(KindValidation, "invalid_request", "malformed request")
)

// Not-found errors
var (
	ErrBatchNotFound  = newError(KindNotFound, "batch_not_found", "distribution batch not found")
	ErrLootNotFound   = newError(KindNotFound, "loot_not_found", "loot record not found")
	ErrMemberNotFound = newError(KindNotFound, "member_not_found", "recipient not found in guild")
)

// Conflict errors
var (
	ErrLootAlreadyDistributed = newError(KindConflict, "loot_already_distributed", "loot already distributed")
)

// Internal errors
var (
	ErrAllocationMismatch = newError(KindInternal, "allocation_mismatch", "allocation sum does not match total amount")
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the sentinel and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.sentinel != nil {
		errs = append(errs, e.sentinel)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// WithField returns a copy of e with field mapped to reason.
func (e *Error) WithField(field, reason string) *Error {
	d := e.derive()
	if d.Fields == nil {
		d.Fields = make(map[string]string, 1)
	}
	d.Fields[field] = reason
	return d
}

// Wrap returns a copy of e with cause attached.
func (e *Error) Wrap(cause error) *Error {
	d := e.derive()
	d.cause = cause
	return d
}

func (e *Error) derive() *Error {
	root := e
	if e.sentinel != nil {
		root = e.sentinel
	}
	return &Error{
		Kind:     e.Kind,
		Code:     e.Code,
		Message:  e.Message,
		Fields:   maps.Clone(e.Fields),
		sentinel: root,
		cause:    e.cause,
	}
}

// KindOf classifies err. Errors that are not engine errors (store
// failures, context cancellation) are internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// FieldsOf returns the field-to-reason map attached to err, if any.
func FieldsOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// CodeOf returns the machine-readable code of err, or "internal".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return string(KindInternal)
}
