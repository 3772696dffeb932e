package mux

import (
	"fmt"
	"strconv"
)

// Code is a mux result code, numbered as libwebp's WebPMuxError.
type Code int

const (
	CodeOK              Code = 1
	CodeNotFound        Code = 0
	CodeInvalidArgument Code = -1
	CodeBadData         Code = -2
	CodeMemoryError     Code = -3
	CodeNotEnoughData   Code = -4
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeNotFound:
		return "Not found"
	case CodeInvalidArgument:
		return "Invalid argument"
	case CodeBadData:
		return "Bad data"
	case CodeMemoryError:
		return "Memory error"
	case CodeNotEnoughData:
		return "Not enough data"
	}
	return "Code(" + strconv.Itoa(int(c)) + ")"
}

// Error is returned by every failing mux and demux call.
type Error struct {
	Op   string // the call that failed, e.g. "Assemble"
	Code Code
	Err  error // optional detail
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("mux: %s() returned error code %d: %s", e.Op, int(e.Code), e.Code)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same code, so the code sentinels below
// work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code && (t.Op == "" || t.Op == e.Op)
}

// Code sentinels for errors.Is.
var (
	ErrNotFound        = &Error{Code: CodeNotFound}
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument}
	ErrBadData         = &Error{Code: CodeBadData}
	ErrMemoryError     = &Error{Code: CodeMemoryError}
	ErrNotEnoughData   = &Error{Code: CodeNotEnoughData}
)

func newError(op string, code Code, detail error) *Error {
	return &Error{Op: op, Code: code, Err: detail}
}

// CodeOf returns the code carried by err, CodeOK for nil, and CodeBadData for
// errors that did not come from this package.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return CodeBadData
}
