package provider

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/atomic"
)

// Memory is a scripted in-process provider. It backs tests and the CLI's
// --dry-run mode. Every method is counted.
type Memory struct {
	*Emitter

	mu       sync.Mutex
	accounts []common.Address
	chainID  *big.Int
	exposed  bool

	// RequestErr, when set, fails RequestAccounts.
	RequestErr error
	// CallFn answers Call. Nil returns an empty result.
	CallFn func(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error)
	// SendFn answers SendTransaction. Nil returns a hash derived from the
	// send count.
	SendFn func(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error)
	// ReceiptFn answers TransactionReceipt. Nil returns a successful receipt
	// in block 1.
	ReceiptFn func(ctx context.Context, hash common.Hash) (*types.Receipt, error)

	requests atomic.Int64
	calls    atomic.Int64
	sends    atomic.Int64
	receipts atomic.Int64
	chainIDs atomic.Int64
}

var _ Provider = (*Memory)(nil)

// NewMemory returns a provider exposing accounts on chainID.
func NewMemory(chainID int64, accounts ...common.Address) *Memory {
	return &Memory{
		Emitter:  NewEmitter(),
		accounts: accounts,
		chainID:  big.NewInt(chainID),
	}
}

func (m *Memory) RequestAccounts(context.Context) ([]common.Address, error) {
	m.requests.Inc()
	if m.RequestErr != nil {
		return nil, m.RequestErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exposed = true
	return append([]common.Address(nil), m.accounts...), nil
}

func (m *Memory) Accounts(context.Context) ([]common.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exposed {
		return nil, nil
	}
	return append([]common.Address(nil), m.accounts...), nil
}

func (m *Memory) ChainID(context.Context) (*big.Int, error) {
	m.chainIDs.Inc()
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.chainID), nil
}

func (m *Memory) Call(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	m.calls.Inc()
	if m.CallFn == nil {
		return nil, nil
	}
	return m.CallFn(ctx, msg, block)
}

func (m *Memory) SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	n := m.sends.Inc()
	if m.SendFn == nil {
		return common.BigToHash(big.NewInt(n)), nil
	}
	return m.SendFn(ctx, msg)
}

func (m *Memory) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	m.receipts.Inc()
	if m.ReceiptFn == nil {
		return &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			TxHash:      hash,
			BlockNumber: big.NewInt(1),
			GasUsed:     21_000,
		}, nil
	}
	return m.ReceiptFn(ctx, hash)
}

// SetAccounts replaces the account list silently, the way a wallet UI switch
// without an event would.
func (m *Memory) SetAccounts(accounts ...common.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = accounts
}

// SwitchAccounts replaces the account list and emits accountsChanged.
func (m *Memory) SwitchAccounts(accounts ...common.Address) {
	m.SetAccounts(accounts...)
	m.EmitAccountsChanged(accounts)
}

// SwitchChain changes the chain id and emits chainChanged.
func (m *Memory) SwitchChain(id int64) {
	m.mu.Lock()
	m.chainID = big.NewInt(id)
	m.mu.Unlock()
	m.EmitChainChanged(big.NewInt(id))
}

// Stats reports how many times each provider method ran.
type Stats struct {
	Requests, Calls, Sends, Receipts, ChainIDs int64
}

// Network is the number of calls that would have reached a node or the
// user: everything except Accounts.
func (s Stats) Network() int64 {
	return s.Requests + s.Calls + s.Sends + s.Receipts + s.ChainIDs
}

// Stats returns the call counters.
func (m *Memory) Stats() Stats {
	return Stats{
		Requests: m.requests.Load(),
		Calls:    m.calls.Load(),
		Sends:    m.sends.Load(),
		Receipts: m.receipts.Load(),
		ChainIDs: m.chainIDs.Load(),
	}
}
