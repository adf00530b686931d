package errors

import (
	stderrors "errors"
	"fmt"
)

type Kind int

const (
	KindNetwork Kind = iota + 1
	KindEmptyResult
	KindTool
	KindFilesystem
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindEmptyResult:
		return "empty result"
	case KindTool:
		return "tool"
	case KindFilesystem:
		return "filesystem"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

func Network(op string, err error, message string) *Error {
	return New(KindNetwork, op, message, err)
}

func EmptyResult(op string, message string) *Error {
	return New(KindEmptyResult, op, message, nil)
}

func Tool(op string, err error, message string) *Error {
	return New(KindTool, op, message, err)
}

func Filesystem(op string, err error, message string) *Error {
	return New(KindFilesystem, op, message, err)
}

func Validation(op string, message string) *Error {
	return New(KindValidation, op, message, nil)
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsNetwork(err error) bool     { return KindOf(err) == KindNetwork }
func IsEmptyResult(err error) bool { return KindOf(err) == KindEmptyResult }
func IsTool(err error) bool        { return KindOf(err) == KindTool }
func IsFilesystem(err error) bool  { return KindOf(err) == KindFilesystem }
func IsValidation(err error) bool  { return KindOf(err) == KindValidation }
