package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeInvalidStatus  Code = "INVALID_STATUS_CODE"
	CodeInvalidMessage Code = "INVALID_MESSAGE_TYPE"
	CodeInvalidData    Code = "INVALID_DATA_TYPE"
	CodeSerialization  Code = "SERIALIZATION_ERROR"
	CodeInternal       Code = "INTERNAL_ERROR"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindRuntime    Kind = "runtime"
)

// Metadata describes how a code is surfaced to callers.
type Metadata struct {
	Kind          Kind
	PublicMessage string
	ExitCode      int
}

var metadataByCode = map[Code]Metadata{
	CodeInvalidStatus: {
		Kind:          KindValidation,
		PublicMessage: "Status must be a valid HTTP status code (100-599)",
		ExitCode:      2,
	},
	CodeInvalidMessage: {
		Kind:          KindValidation,
		PublicMessage: "Message must be a string",
		ExitCode:      2,
	},
	CodeInvalidData: {
		Kind:          KindValidation,
		PublicMessage: "Data must be an array or null",
		ExitCode:      2,
	},
	CodeSerialization: {
		Kind:          KindRuntime,
		PublicMessage: "failed to marshal JSON",
		ExitCode:      3,
	},
	CodeInternal: {
		Kind:          KindRuntime,
		PublicMessage: "internal error",
		ExitCode:      1,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// NewPublic builds an error carrying the code's public message.
func NewPublic(code Code) *Error {
	return New(code, MetadataFor(code).PublicMessage)
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

func IsValidation(err error) bool {
	typed := As(err)
	if typed == nil {
		return false
	}
	return MetadataFor(typed.Code()).Kind == KindValidation
}
