// Package callerr defines the failure taxonomy shared by the session manager
// and the contract invoker, and converts raw provider/RPC errors into it.
package callerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

// Kind classifies a failure. A Kind is itself an error so callers can write
// errors.Is(err, callerr.Reverted).
type Kind string

const (
	ProviderUnavailable Kind = "ProviderUnavailable"
	NotConnected        Kind = "NotConnected"
	InvalidInput        Kind = "InvalidInput"
	UserRejected        Kind = "UserRejected"
	Reverted            Kind = "Reverted"
	NetworkError        Kind = "NetworkError"
	Unknown             Kind = "Unknown"
	ChainMismatch       Kind = "ChainMismatch"
)

func (k Kind) Error() string { return string(k) }

// EIP-1193 provider error codes, plus the JSON-RPC code geth uses for reverts.
const (
	CodeUserRejected   = 4001
	CodeUnauthorized   = 4100
	CodeUnsupported    = 4200
	CodeDisconnected   = 4900
	CodeChainDisconn   = 4901
	CodeExecutionError = 3
)

// Error is a classified failure carrying the raw message for diagnostics.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New returns an *Error of kind k.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags err with an explicit kind without inspecting it.
func Wrap(k Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Message: err.Error(), Err: err}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a bare Kind target.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the kind of err, or "" when err is nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return Classify(err).Kind
}

// Classify converts any error returned by a provider or RPC node into the
// taxonomy. Errors that are already classified pass through unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	var k Kind
	if errors.As(err, &k) {
		return &Error{Kind: k, Message: err.Error(), Err: err}
	}

	var coded rpc.Error
	if errors.As(err, &coded) {
		switch coded.ErrorCode() {
		case CodeUserRejected:
			return Wrap(UserRejected, err)
		case CodeUnauthorized:
			return Wrap(NotConnected, err)
		case CodeExecutionError:
			return &Error{Kind: Reverted, Message: RevertReason(err), Err: err}
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "execution reverted"):
		return &Error{Kind: Reverted, Message: RevertReason(err), Err: err}
	case strings.Contains(msg, "user rejected"), strings.Contains(msg, "user denied"):
		return Wrap(UserRejected, err)
	}
	return Wrap(NetworkError, err)
}

// RevertReason extracts the human-readable revert reason from err. It prefers
// ABI-encoded Error(string) data attached by the node and falls back to the
// text following "execution reverted:".
func RevertReason(err error) string {
	if err == nil {
		return ""
	}

	var de rpc.DataError
	if errors.As(err, &de) {
		if s, ok := de.ErrorData().(string); ok {
			if reason, uerr := abi.UnpackRevert(common.FromHex(s)); uerr == nil {
				return reason
			}
		}
	}

	msg := err.Error()
	if idx := strings.Index(msg, "execution reverted:"); idx >= 0 {
		return strings.TrimSpace(msg[idx+len("execution reverted:"):])
	}
	if idx := strings.Index(msg, "revert"); idx >= 0 {
		return strings.TrimSpace(msg[idx:])
	}
	return msg
}
