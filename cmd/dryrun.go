package cmd

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Mohsinsiddi/w3reg/internal/callerr"
	"github.com/Mohsinsiddi/w3reg/internal/contract"
	"github.com/Mohsinsiddi/w3reg/internal/provider"
)

// dryRunContract stands in when the config has no deployment for its chain.
const dryRunContract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

// dryRunSupply is the whole-token balance the dry-run account starts with.
const dryRunSupply = 1000

// ledger simulates the registration token for --dry-run.
type ledger struct {
	mu         sync.Mutex
	abi        abi.ABI
	decimals   uint8
	symbol     string
	nonce      uint64
	balances   map[common.Address]*big.Int
	registered map[common.Address]bool
}

func newDryRunProvider() (*provider.Memory, error) {
	parsed, err := contract.LoadABI(cfg.ABI)
	if err != nil {
		return nil, err
	}
	if _, ok := cfg.Deployment(cfg.ChainID); !ok {
		cfg.ContractAddress = dryRunContract
	}

	account := dryRunAccount()
	supply := new(big.Int).Mul(big.NewInt(dryRunSupply), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(cfg.Decimals)), nil))
	l := &ledger{
		abi:        parsed,
		decimals:   cfg.Decimals,
		symbol:     cfg.Symbol,
		balances:   map[common.Address]*big.Int{account: supply},
		registered: make(map[common.Address]bool),
	}

	p := provider.NewMemory(cfg.ChainID, account)
	p.CallFn = l.call
	p.SendFn = l.send
	log.Infow("dry run", "account", account.Hex(), "chain_id", cfg.ChainID)
	return p, nil
}

func (l *ledger) call(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	method, args, err := l.decode(msg.Data)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	switch method.Name {
	case "balanceOf":
		return method.Outputs.Pack(l.balance(args[0].(common.Address)))
	case "isRegistered":
		return method.Outputs.Pack(l.registered[args[0].(common.Address)])
	case "decimals":
		return method.Outputs.Pack(l.decimals)
	case "symbol":
		return method.Outputs.Pack(l.symbol)
	}
	return nil, l.revert("%s is not simulated", method.Name)
}

func (l *ledger) send(_ context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	method, args, err := l.decode(msg.Data)
	if err != nil {
		return common.Hash{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	switch method.Name {
	case "register":
		account := args[0].(common.Address)
		if l.registered[account] {
			return common.Hash{}, l.revert("already registered")
		}
		l.registered[account] = true
	case "transfer":
		to, v := args[0].(common.Address), args[1].(*big.Int)
		if err := l.debit(msg.From, v); err != nil {
			return common.Hash{}, err
		}
		l.balances[to] = new(big.Int).Add(l.balance(to), v)
	case "burn":
		if err := l.debit(msg.From, args[0].(*big.Int)); err != nil {
			return common.Hash{}, err
		}
	case "approve":
	default:
		return common.Hash{}, l.revert("%s is not simulated", method.Name)
	}

	l.nonce++
	return crypto.Keccak256Hash(msg.From.Bytes(), new(big.Int).SetUint64(l.nonce).Bytes(), msg.Data), nil
}

func (l *ledger) decode(data []byte) (*abi.Method, []interface{}, error) {
	if len(data) < 4 {
		return nil, nil, l.revert("empty calldata")
	}
	method, err := l.abi.MethodById(data[:4])
	if err != nil {
		return nil, nil, l.revert("unknown selector %x", data[:4])
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, l.revert("bad calldata: %v", err)
	}
	return method, args, nil
}

func (l *ledger) balance(a common.Address) *big.Int {
	if b, ok := l.balances[a]; ok {
		return b
	}
	return new(big.Int)
}

func (l *ledger) debit(from common.Address, v *big.Int) error {
	bal := l.balance(from)
	if bal.Cmp(v) < 0 {
		return l.revert("ERC20: transfer amount exceeds balance")
	}
	l.balances[from] = new(big.Int).Sub(bal, v)
	return nil
}

func (l *ledger) revert(format string, args ...any) error {
	return provider.NewError(callerr.CodeExecutionError, "execution reverted: %s", fmt.Sprintf(format, args...))
}
