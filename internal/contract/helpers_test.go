package contract_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3reg/internal/callerr"
	"github.com/Mohsinsiddi/w3reg/internal/contract"
	"github.com/Mohsinsiddi/w3reg/internal/provider"
	"github.com/Mohsinsiddi/w3reg/internal/token"
)

const (
	contractAddr = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	alice        = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	bob          = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	anvilChain   = 31337
)

func regTokenABI(t *testing.T) abi.ABI {
	t.Helper()
	b, ok := contract.GetBuiltin("regtoken")
	require.True(t, ok)
	return b.ABI
}

func newBinding(t *testing.T) *contract.Binding {
	t.Helper()
	b, err := contract.NewBinding(contractAddr, regTokenABI(t), big.NewInt(anvilChain), 3, "REG")
	require.NoError(t, err)
	return b
}

// packOutputs ABI-encodes the return values of method.
func packOutputs(t *testing.T, method string, vals ...interface{}) []byte {
	t.Helper()
	out, err := regTokenABI(t).Methods[method].Outputs.Pack(vals...)
	require.NoError(t, err)
	return out
}

// revertError is what a node returns for require(false, reason).
func revertError(t *testing.T, reason string) error {
	t.Helper()
	typ, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: typ}}.Pack(reason)
	require.NoError(t, err)
	data := append(common.FromHex("0x08c379a0"), packed...)
	return &provider.Error{
		Code:    callerr.CodeExecutionError,
		Message: "execution reverted: " + reason,
		Data:    hexutil.Encode(data),
	}
}

// customRevertError is what a node returns for revert Name(args).
func customRevertError(t *testing.T, name string, args ...interface{}) error {
	t.Helper()
	e := regTokenABI(t).Errors[name]
	packed, err := e.Inputs.Pack(args...)
	require.NoError(t, err)
	return &provider.Error{
		Code:    callerr.CodeExecutionError,
		Message: "execution reverted",
		Data:    hexutil.Encode(append(append([]byte{}, e.ID[:4]...), packed...)),
	}
}

// selectorIs reports whether msg calls method.
func selectorIs(t *testing.T, msg ethereum.CallMsg, method string) bool {
	t.Helper()
	id := regTokenABI(t).Methods[method].ID
	return len(msg.Data) >= 4 && string(msg.Data[:4]) == string(id)
}

type fakeSession struct {
	account token.Address
}

func (s fakeSession) CurrentAccount() (token.Address, bool) {
	return s.account, !s.account.IsZero()
}

func connectedAs(addr string) fakeSession {
	return fakeSession{account: token.MustParseAddress(addr)}
}
