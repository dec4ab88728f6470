package stageerr

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies why a pipeline stage stopped.
type Code string

const (
	CodeInputUnavailable Code = "input_unavailable"
	CodeMalformedPeriod  Code = "malformed_period"
	CodeWriteFailed      Code = "write_failed"
	CodeConflict         Code = "conflict"
	CodeValidation       Code = "validation"
	CodeNotFound         Code = "not_found"
	CodeInternal         Code = "internal"
)

// Error is the canonical stage failure.
type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(code Code, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates err with code unless it already carries one.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	if existing := CodeOf(err); existing != "" {
		code = existing
	}
	return NewError(code, op, err.Error(), err)
}

func IsCode(err error, code Code) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == code
}

func CodeOf(err error) Code {
	var se *Error
	if !errors.As(err, &se) {
		return ""
	}
	return se.Code
}
