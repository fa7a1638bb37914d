package provider

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/w3reg/internal/callerr"
)

// EIP-1193 provider error codes.
const (
	CodeUserRejected      = callerr.CodeUserRejected
	CodeUnauthorized      = callerr.CodeUnauthorized
	CodeUnsupported       = callerr.CodeUnsupported
	CodeDisconnected      = callerr.CodeDisconnected
	CodeChainDisconnected = callerr.CodeChainDisconn
)

// Emitter errors.
var (
	ErrUnknownEvent    = errors.New("unknown event")
	ErrHandlerType     = errors.New("handler has the wrong type for event")
	ErrUnknownListener = errors.New("listener not registered")
)

// Error is a provider RPC error. It implements go-ethereum's rpc.Error and
// rpc.DataError so it classifies like a node error.
type Error struct {
	Code    int
	Message string
	Data    any
}

// NewError returns a provider error with code.
func NewError(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// ErrorCode returns the EIP-1193 code.
func (e *Error) ErrorCode() int { return e.Code }

// ErrorData returns the optional error payload.
func (e *Error) ErrorData() interface{} { return e.Data }

// ErrUserRejected is returned when the user declines a prompt.
func ErrUserRejected(what string) *Error {
	return NewError(CodeUserRejected, "user rejected the %s request", what)
}
