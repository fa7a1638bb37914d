// Package provider is the wallet-provider boundary: the capability the
// session and invoker are given instead of reaching for a global wallet.
//
// A Provider hands out accounts, signs and submits transactions, answers
// read-only calls, and pushes accountsChanged/chainChanged events. Errors
// carry EIP-1193 codes (see Error).
package provider

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Event names.
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
)

// AccountsHandler receives the new account list; an empty list means the
// provider no longer exposes any account.
type AccountsHandler func([]common.Address)

// ChainHandler receives the new chain id.
type ChainHandler func(*big.Int)

// ListenerID identifies a registered handler for RemoveListener.
type ListenerID uint64

// Provider is an injected wallet provider.
type Provider interface {
	// RequestAccounts asks the user to expose accounts. It may prompt.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// Accounts returns the currently exposed accounts without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)

	// On registers an AccountsHandler for EventAccountsChanged or a
	// ChainHandler for EventChainChanged.
	On(event string, handler any) (ListenerID, error)
	RemoveListener(event string, id ListenerID) error

	// Call executes a read-only call at block (nil = latest).
	Call(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error)
	// SendTransaction signs msg as msg.From and broadcasts it. When the
	// broadcast itself fails in a way that leaves its outcome unknown, the
	// signed hash is returned together with the error.
	SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error)
	// TransactionReceipt returns ethereum.NotFound while the tx is pending.
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}
