package callerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// codedErr mimics a JSON-RPC error as returned by go-ethereum's rpc client.
type codedErr struct {
	code int
	msg  string
	data any
}

func (e *codedErr) Error() string  { return e.msg }
func (e *codedErr) ErrorCode() int { return e.code }
func (e *codedErr) ErrorData() any { return e.data }

// revertData is the ABI encoding of Error("insufficient balance").
func revertData(t *testing.T) string {
	t.Helper()
	raw, err := hexutil.Decode("0x08c379a0" +
		"0000000000000000000000000000000000000000000000000000000000000020" +
		"0000000000000000000000000000000000000000000000000000000000000014" +
		"696e73756666696369656e742062616c616e6365000000000000000000000000")
	require.NoError(t, err)
	return hexutil.Encode(raw)
}

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	orig := New(InvalidInput, "bad amount %q", "-1")
	got := Classify(fmt.Errorf("wrapped: %w", orig))
	assert.Same(t, orig, got)
}

func TestClassifyBareKind(t *testing.T) {
	got := Classify(NotConnected)
	assert.Equal(t, NotConnected, got.Kind)
}

func TestClassifyUserRejectedCode(t *testing.T) {
	got := Classify(&codedErr{code: CodeUserRejected, msg: "User rejected the request."})
	assert.Equal(t, UserRejected, got.Kind)
	assert.Contains(t, got.Message, "rejected")
}

func TestClassifyUnauthorizedCode(t *testing.T) {
	got := Classify(&codedErr{code: CodeUnauthorized, msg: "unauthorized"})
	assert.Equal(t, NotConnected, got.Kind)
}

func TestClassifyExecutionRevertedWithData(t *testing.T) {
	err := &codedErr{code: CodeExecutionError, msg: "execution reverted", data: revertData(t)}
	got := Classify(err)
	assert.Equal(t, Reverted, got.Kind)
	assert.Equal(t, "insufficient balance", got.Message)
}

func TestClassifyRevertTextOnly(t *testing.T) {
	got := Classify(errors.New("execution reverted: not registered"))
	assert.Equal(t, Reverted, got.Kind)
	assert.Equal(t, "not registered", got.Message)
}

func TestClassifyRevertInHostNameIsNetworkError(t *testing.T) {
	got := Classify(errors.New(`Post "https://revert.example.org": dial tcp: lookup revert.example.org: no such host`))
	assert.Equal(t, NetworkError, got.Kind)
}

func TestClassifyUserDeniedText(t *testing.T) {
	got := Classify(errors.New("MetaMask Tx Signature: User denied transaction signature."))
	assert.Equal(t, UserRejected, got.Kind)
}

func TestClassifyDefaultsToNetworkError(t *testing.T) {
	got := Classify(errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"))
	assert.Equal(t, NetworkError, got.Kind)
	assert.Contains(t, got.Message, "connection refused")
}

func TestErrorIsKind(t *testing.T) {
	err := fmt.Errorf("transfer: %w", New(Reverted, "nope"))
	assert.True(t, errors.Is(err, Reverted))
	assert.False(t, errors.Is(err, NetworkError))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "Unknown", (&Error{Kind: Unknown}).Error())
	assert.Equal(t, "Reverted: boom", (&Error{Kind: Reverted, Message: "boom"}).Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(NetworkError, nil))
}

func TestRevertReasonFallsBackToMessage(t *testing.T) {
	assert.Equal(t, "something odd", RevertReason(errors.New("something odd")))
	assert.Equal(t, "", RevertReason(nil))
}
