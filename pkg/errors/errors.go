package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Error classification codes. Every error crossing a client boundary
// (storage, database, AI API) carries one of these so callers never have
// to match on message substrings.
const (
	CodeUnknown           = 0
	CodeNotConfigured     = 1001
	CodeUnauthenticated   = 1002
	CodeInvalidCredential = 1003
	CodeForbidden         = 1004
	CodeQuotaExceeded     = 1005
	CodeConflict          = 1006
	CodeUpstream          = 1007
	CodePartialRollback   = 1008
	CodeNotFound          = 1009
)

// Error is a coded error with an optional cause, captured stack and
// key/value context.
type Error struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Err     error      `json:"-"`
	Stack   string     `json:"stack,omitempty"`
	Context []KeyValue `json:"context,omitempty"`
}

// KeyValue is one piece of attached context.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error { return e.Err }

// WithCode creates a new coded error.
func WithCode(code int, message string) *Error {
	return &Error{Code: code, Message: message, Stack: captureStack()}
}

// WithCodef creates a new coded error with a formatted message.
func WithCodef(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Stack: captureStack()}
}

// WrapCode wraps err, assigning a classification code.
func WrapCode(code int, err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err, Stack: captureStack()}
}

// Wrap wraps an error with a message, keeping the cause's code if it has one.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: GetCode(err), Message: message, Err: err, Stack: captureStack()}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: GetCode(err), Message: fmt.Sprintf(format, args...), Err: err, Stack: captureStack()}
}

// New creates a new uncoded error.
func New(message string) *Error {
	return &Error{Message: message, Stack: captureStack()}
}

// Errorf creates a new formatted uncoded error.
func Errorf(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Stack: captureStack()}
}

// WithContext returns a copy of e with one more context pair attached.
func (e *Error) WithContext(key, value string) *Error {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Context = append(append([]KeyValue(nil), e.Context...), KeyValue{Key: key, Value: value})
	return &cp
}

// GetCode returns the classification code of err, walking the wrap chain.
func GetCode(err error) int {
	var e *Error
	for errors.As(err, &e) {
		if e.Code != CodeUnknown {
			return e.Code
		}
		err = e.Err
	}
	return CodeUnknown
}

// HasCode reports whether err (or anything it wraps) carries code.
func HasCode(err error, code int) bool {
	return err != nil && GetCode(err) == code
}

// GetMessage returns the top-level message of err.
func GetMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// Cause returns the innermost wrapped error.
func Cause(err error) error {
	for err != nil {
		var e *Error
		if errors.As(err, &e) && e.Err != nil {
			err = e.Err
		} else {
			return err
		}
	}
	return err
}

func captureStack() string {
	buf := make([]byte, 1024)
	n := runtime.Stack(buf, false)
	stack := string(buf[:n])

	// drop the frames belonging to this package
	lines := strings.Split(stack, "\n")
	if len(lines) > 6 {
		stack = strings.Join(lines[6:], "\n")
	}
	return strings.TrimSpace(stack)
}

// Format implements fmt.Formatter so %+v includes the stack.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s", e.Error())
			if e.Stack != "" {
				fmt.Fprintf(s, "\n%s", e.Stack)
			}
			return
		}
		fallthrough
	case 's':
		fmt.Fprintf(s, "%s", e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}
