package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrLoadNotFound     = errors.New("load not found")
	ErrSlotNotFound     = errors.New("slot not found")
	ErrUserNotFound     = errors.New("dropzone user not found")
	ErrCapacityExceeded = errors.New("load capacity exceeded")
	ErrLoadClosed       = errors.New("load is not accepting manifests")
	ErrForbidden        = errors.New("forbidden")
	ErrNotEligible      = errors.New("participant is not eligible to manifest")
	ErrMissingPilot     = errors.New("a pilot must be assigned before landing")
	ErrMissingCrew      = errors.New("a load master must be assigned before landing")
	ErrDispatchPending  = errors.New("load has not passed its dispatch call")
	ErrDispatchElapsed  = errors.New("dispatch call has already elapsed")
	ErrInvalidOffset    = errors.New("unsupported dispatch call offset")
	ErrEmptyGroup       = errors.New("group manifest requires at least one member")
	ErrCallScheduled    = errors.New("a dispatch call is already scheduled")
	ErrSetupIncomplete  = errors.New("dropzone setup is not complete")
)

// FieldError is a validation failure scoped to a single form field, either
// detected locally or mapped from the remote service's field_errors payload.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// FieldErrors aggregates per-field failures from one operation.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// For returns the message for a field, or empty when the field passed.
func (e FieldErrors) For(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// CapacityShortfallError rejects a plane reassignment that cannot seat the
// load's current occupants. Excess is how many must come off first.
type CapacityShortfallError struct {
	Excess int
}

func (e CapacityShortfallError) Error() string {
	return fmt.Sprintf("you need to take %d people off the load to fit on this plane", e.Excess)
}

// TransportError marks a failure to reach the remote service. The wrapped
// error carries the cause; callers may retry the same operation manually.
type TransportError struct {
	Err error
}

func (e TransportError) Error() string {
	return "remote service unreachable: " + e.Err.Error()
}

func (e TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	var te TransportError
	return errors.As(err, &te)
}
