package contract_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Mohsinsiddi/w3reg/internal/callerr"
	"github.com/Mohsinsiddi/w3reg/internal/contract"
	"github.com/Mohsinsiddi/w3reg/internal/provider"
)

func newInvoker(t *testing.T, p provider.Provider, s contract.Session, opts ...contract.Option) *contract.Invoker {
	t.Helper()
	opts = append([]contract.Option{
		contract.WithLogger(zaptest.NewLogger(t).Sugar()),
		contract.WithPollInterval(time.Millisecond),
	}, opts...)
	return contract.NewInvoker(p, s, newBinding(t), opts...)
}

func requireFailure(t *testing.T, r contract.Result, kind callerr.Kind) contract.Failure {
	t.Helper()
	f, ok := r.(contract.Failure)
	require.True(t, ok, "expected Failure, got %#v", r)
	assert.Equal(t, kind, f.Kind, f.Message)
	return f
}

func requireValue[V contract.Value](t *testing.T, r contract.Result) V {
	t.Helper()
	s, ok := r.(contract.Success)
	require.True(t, ok, "expected Success, got %#v", r)
	v, ok := s.Value.(V)
	require.True(t, ok, "unexpected value %#v", s.Value)
	return v
}

// ---------------------------------------------------------------------------
// Preconditions
// ---------------------------------------------------------------------------

func TestMutatingOpsRequireSession(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	inv := newInvoker(t, p, fakeSession{})
	ctx := context.Background()

	for _, r := range []contract.Result{
		inv.Register(ctx),
		inv.Approve(ctx, bob, "1"),
		inv.Transfer(ctx, bob, "1"),
		inv.Burn(ctx, "1"),
	} {
		requireFailure(t, r, callerr.NotConnected)
	}
	assert.Zero(t, p.Stats().Network(), "no provider call may happen without a session")
}

func TestReadsRunWithoutSession(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	p.CallFn = func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
		assert.Equal(t, common.Address{}, msg.From)
		if selectorIs(t, msg, "isRegistered") {
			return packOutputs(t, "isRegistered", true), nil
		}
		return packOutputs(t, "balanceOf", big.NewInt(0)), nil
	}
	inv := newInvoker(t, p, fakeSession{})

	reg := requireValue[contract.Registered](t, inv.IsRegistered(context.Background(), bob))
	assert.True(t, bool(reg))
	bal := requireValue[contract.Balance](t, inv.BalanceOf(context.Background(), bob))
	assert.Equal(t, int64(0), bal.Amount.Int64())
}

func TestInvalidInputMakesNoProviderCalls(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	inv := newInvoker(t, p, connectedAs(alice))
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() contract.Result
	}{
		{"transfer bad address", func() contract.Result { return inv.Transfer(ctx, "0xnope", "1") }},
		{"transfer bad checksum", func() contract.Result {
			return inv.Transfer(ctx, "0x70997970c51812dc3A010C7d01b50e0d17dc79C8", "1")
		}},
		{"transfer zero", func() contract.Result { return inv.Transfer(ctx, bob, "0") }},
		{"transfer negative", func() contract.Result { return inv.Transfer(ctx, bob, "-1") }},
		{"approve too precise", func() contract.Result { return inv.Approve(ctx, bob, "0.0001") }},
		{"approve bad spender", func() contract.Result { return inv.Approve(ctx, "", "1") }},
		{"burn garbage", func() contract.Result { return inv.Burn(ctx, "lots") }},
		{"balanceOf bad address", func() contract.Result { return inv.BalanceOf(ctx, "bob") }},
		{"isRegistered bad address", func() contract.Result { return inv.IsRegistered(ctx, "0x12") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireFailure(t, tt.run(), callerr.InvalidInput)
		})
	}
	assert.Zero(t, p.Stats().Network())
}

func TestChainMismatch(t *testing.T) {
	p := provider.NewMemory(1, common.HexToAddress(alice))
	inv := newInvoker(t, p, connectedAs(alice))

	requireFailure(t, inv.Transfer(context.Background(), bob, "1"), callerr.ChainMismatch)
	requireFailure(t, inv.BalanceOf(context.Background(), bob), callerr.ChainMismatch)
	assert.Zero(t, p.Stats().Sends)
	assert.Zero(t, p.Stats().Calls)
}

func TestUnboundInvokerReportsChainMismatch(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	inv := newInvoker(t, p, connectedAs(alice))
	inv.Rebind(nil)

	requireFailure(t, inv.Register(context.Background()), callerr.ChainMismatch)
	requireFailure(t, inv.IsRegistered(context.Background(), bob), callerr.ChainMismatch)
	assert.Zero(t, p.Stats().Network())
}

// ---------------------------------------------------------------------------
// Mutating operations
// ---------------------------------------------------------------------------

func TestTransferSuccess(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	var sent ethereum.CallMsg
	p.SendFn = func(_ context.Context, msg ethereum.CallMsg) (common.Hash, error) {
		sent = msg
		return common.HexToHash("0xbeef"), nil
	}
	p.ReceiptFn = func(_ context.Context, hash common.Hash) (*types.Receipt, error) {
		return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash, BlockNumber: big.NewInt(42), GasUsed: 51_000}, nil
	}
	inv := contract.NewInvoker(p, connectedAs(alice), newBinding(t).WithExplorer("https://scan.example"))

	rc := requireValue[contract.Receipt](t, inv.Transfer(context.Background(), bob, "1.5"))
	assert.Equal(t, common.HexToHash("0xbeef"), rc.TxHash)
	assert.Equal(t, uint64(42), rc.BlockNumber)
	assert.Equal(t, uint64(51_000), rc.GasUsed)
	assert.Equal(t, "https://scan.example/tx/"+rc.TxHash.Hex(), rc.Explorer)

	assert.Equal(t, common.HexToAddress(alice), sent.From)
	assert.Equal(t, common.HexToAddress(contractAddr), *sent.To)
	args, err := regTokenABI(t).Methods["transfer"].Inputs.Unpack(sent.Data[4:])
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(bob), args[0])
	assert.Equal(t, big.NewInt(1500), args[1], "1.5 at 3 decimals")
}

func TestRegisterEncodesCallerAddress(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	var sent ethereum.CallMsg
	p.SendFn = func(_ context.Context, msg ethereum.CallMsg) (common.Hash, error) {
		sent = msg
		return common.HexToHash("0x01"), nil
	}
	inv := newInvoker(t, p, connectedAs(alice))

	requireValue[contract.Receipt](t, inv.Register(context.Background()))
	require.True(t, selectorIs(t, sent, "register"))
	args, err := regTokenABI(t).Methods["register"].Inputs.Unpack(sent.Data[4:])
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(alice), args[0])
}

func TestApproveAndBurnSucceed(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	inv := newInvoker(t, p, connectedAs(alice))

	requireValue[contract.Receipt](t, inv.Approve(context.Background(), bob, "10"))
	requireValue[contract.Receipt](t, inv.Burn(context.Background(), "0.001"))
	assert.Equal(t, int64(2), p.Stats().Sends)
}

func TestTransferRevertedAtSubmission(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	p.SendFn = func(context.Context, ethereum.CallMsg) (common.Hash, error) {
		return common.Hash{}, revertError(t, "ERC20: transfer amount exceeds balance")
	}
	inv := newInvoker(t, p, connectedAs(alice))

	f := requireFailure(t, inv.Transfer(context.Background(), bob, "1000000"), callerr.Reverted)
	assert.Equal(t, "ERC20: transfer amount exceeds balance", f.Message)
	assert.Nil(t, f.TxHash)
	assert.Zero(t, p.Stats().Receipts)
}

func TestBroadcastInterruptedIsUnknownWithHash(t *testing.T) {
	sent := common.HexToHash("0xabc1")
	p := provider.NewMemory(anvilChain)
	p.SendFn = func(context.Context, ethereum.CallMsg) (common.Hash, error) {
		return sent, context.Canceled
	}
	inv := newInvoker(t, p, connectedAs(alice))

	f := requireFailure(t, inv.Transfer(context.Background(), bob, "1"), callerr.Unknown)
	require.NotNil(t, f.TxHash)
	assert.Equal(t, sent, *f.TxHash)
	assert.Zero(t, p.Stats().Receipts)
}

func TestReceiptWithoutBlockNumber(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	p.ReceiptFn = func(_ context.Context, hash common.Hash) (*types.Receipt, error) {
		return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash}, nil
	}
	inv := newInvoker(t, p, connectedAs(alice))

	rc := requireValue[contract.Receipt](t, inv.Burn(context.Background(), "1"))
	assert.Zero(t, rc.BlockNumber)
}

func TestRegisterCustomErrorRevert(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	p.SendFn = func(context.Context, ethereum.CallMsg) (common.Hash, error) {
		return common.Hash{}, customRevertError(t, "AlreadyRegistered", common.HexToAddress(alice))
	}
	inv := newInvoker(t, p, connectedAs(alice))

	f := requireFailure(t, inv.Register(context.Background()), callerr.Reverted)
	assert.Equal(t, "AlreadyRegistered("+alice+")", f.Message)
}

func TestUserRejected(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	p.SendFn = func(context.Context, ethereum.CallMsg) (common.Hash, error) {
		return common.Hash{}, provider.ErrUserRejected("transaction")
	}
	inv := newInvoker(t, p, connectedAs(alice))

	requireFailure(t, inv.Burn(context.Background(), "1"), callerr.UserRejected)
}

func TestMinedRevertReplaysAtReceiptBlock(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	p.ReceiptFn = func(_ context.Context, hash common.Hash) (*types.Receipt, error) {
		return &types.Receipt{Status: types.ReceiptStatusFailed, TxHash: hash, BlockNumber: big.NewInt(7)}, nil
	}
	var replayBlock *big.Int
	p.CallFn = func(_ context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
		replayBlock = block
		assert.Equal(t, common.HexToAddress(alice), msg.From)
		return nil, revertError(t, "insufficient allowance")
	}
	inv := newInvoker(t, p, connectedAs(alice))

	f := requireFailure(t, inv.Transfer(context.Background(), bob, "1"), callerr.Reverted)
	assert.Equal(t, "insufficient allowance", f.Message)
	require.NotNil(t, f.TxHash)
	require.NotNil(t, replayBlock)
	assert.Equal(t, int64(7), replayBlock.Int64())
}

func TestUnconfirmedTransactionIsUnknown(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	p.SendFn = func(context.Context, ethereum.CallMsg) (common.Hash, error) {
		return common.HexToHash("0xfeed"), nil
	}
	p.ReceiptFn = func(context.Context, common.Hash) (*types.Receipt, error) {
		return nil, ethereum.NotFound
	}
	inv := newInvoker(t, p, connectedAs(alice), contract.WithConfirmTimeout(30*time.Millisecond))

	f := requireFailure(t, inv.Transfer(context.Background(), bob, "1"), callerr.Unknown)
	require.NotNil(t, f.TxHash)
	assert.Equal(t, common.HexToHash("0xfeed"), *f.TxHash)
	assert.Greater(t, p.Stats().Receipts, int64(1), "receipt should be polled")
}

func TestReceiptLookupErrorsAreRetried(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	var mu sync.Mutex
	attempts := 0
	p.ReceiptFn = func(_ context.Context, hash common.Hash) (*types.Receipt, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return nil, errors.New("502 bad gateway")
		}
		return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash, BlockNumber: big.NewInt(3)}, nil
	}
	inv := newInvoker(t, p, connectedAs(alice))

	rc := requireValue[contract.Receipt](t, inv.Burn(context.Background(), "1"))
	assert.Equal(t, uint64(3), rc.BlockNumber)
}

func TestCancelledContextIsUnknownAfterSubmission(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	ctx, cancel := context.WithCancel(context.Background())
	p.ReceiptFn = func(context.Context, common.Hash) (*types.Receipt, error) {
		cancel()
		return nil, ethereum.NotFound
	}
	inv := newInvoker(t, p, connectedAs(alice))

	f := requireFailure(t, inv.Register(ctx), callerr.Unknown)
	assert.NotNil(t, f.TxHash)
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func TestBalanceOf(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	p.CallFn = func(_ context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
		assert.Nil(t, block)
		assert.Equal(t, common.HexToAddress(alice), msg.From)
		args, err := regTokenABI(t).Methods["balanceOf"].Inputs.Unpack(msg.Data[4:])
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(bob), args[0])
		return packOutputs(t, "balanceOf", big.NewInt(1000)), nil
	}
	inv := newInvoker(t, p, connectedAs(alice))

	bal := requireValue[contract.Balance](t, inv.BalanceOf(context.Background(), bob))
	assert.Equal(t, big.NewInt(1000), bal.Amount)
	assert.Equal(t, uint8(3), bal.Decimals)
	assert.Equal(t, "REG", bal.Symbol)
}

func TestBalanceOfNetworkError(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	p.CallFn = func(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
		return nil, errors.New("dial tcp 127.0.0.1:8545: connection refused")
	}
	inv := newInvoker(t, p, fakeSession{})

	f := requireFailure(t, inv.BalanceOf(context.Background(), bob), callerr.NetworkError)
	assert.Contains(t, f.Message, "connection refused")
}

func TestIsRegisteredUndecodableResult(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	p.CallFn = func(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
		return []byte{0x01}, nil
	}
	inv := newInvoker(t, p, fakeSession{})

	requireFailure(t, inv.IsRegistered(context.Background(), bob), callerr.NetworkError)
}

func TestIsRegisteredRevert(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	p.CallFn = func(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
		return nil, revertError(t, "paused")
	}
	inv := newInvoker(t, p, fakeSession{})

	f := requireFailure(t, inv.IsRegistered(context.Background(), bob), callerr.Reverted)
	assert.Equal(t, "paused", f.Message)
}

func TestConcurrentInvocations(t *testing.T) {
	p := provider.NewMemory(anvilChain)
	p.CallFn = func(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
		return packOutputs(t, "isRegistered", false), nil
	}
	inv := newInvoker(t, p, connectedAs(alice))

	var wg sync.WaitGroup
	results := make([]contract.Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				results[i] = inv.IsRegistered(context.Background(), bob)
			} else {
				results[i] = inv.Burn(context.Background(), "1")
			}
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		_, ok := r.(contract.Success)
		assert.True(t, ok, "invocation %d: %#v", i, r)
	}
	assert.Equal(t, int64(8), p.Stats().Sends)
}

func TestReadsWithoutProvider(t *testing.T) {
	inv := contract.NewInvoker(nil, fakeSession{}, newBinding(t))

	requireFailure(t, inv.BalanceOf(context.Background(), bob), callerr.ProviderUnavailable)
	requireFailure(t, inv.Register(context.Background()), callerr.NotConnected)
}
