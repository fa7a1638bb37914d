package provider

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3reg/internal/logging"
	"github.com/Mohsinsiddi/w3reg/internal/wallet"
)

// Backend is the slice of a node client the local provider needs.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

var _ Backend = (*ethclient.Client)(nil)

// Approval kinds.
const (
	ApproveConnect = "connect"
	ApproveSign    = "sign"
)

// Approval describes what the user is asked to allow.
type Approval struct {
	Kind    string
	From    common.Address
	To      *common.Address
	Data    []byte
	Value   *big.Int
	Gas     uint64
	FeeCap  *big.Int
	ChainID *big.Int
}

// ApproveFunc asks the user to allow a request. Returning false declines it.
type ApproveFunc func(ctx context.Context, a Approval) (bool, error)

// AutoApprove allows every request.
func AutoApprove(context.Context, Approval) (bool, error) { return true, nil }

// Local is a wallet provider backed by the signing wallets in a
// wallet.Manager and a JSON-RPC node.
type Local struct {
	*Emitter

	backend Backend
	wallets *wallet.Manager
	approve ApproveFunc
	log     *zap.SugaredLogger

	authorized atomic.Bool
	lastChain  atomic.Pointer[big.Int]
}

var _ Provider = (*Local)(nil)

// LocalOption configures a Local provider.
type LocalOption func(*Local)

// WithApprover gates account exposure and every signature.
func WithApprover(fn ApproveFunc) LocalOption {
	return func(l *Local) {
		if fn != nil {
			l.approve = fn
		}
	}
}

// WithLogger sets the provider logger.
func WithLogger(log *zap.SugaredLogger) LocalOption {
	return func(l *Local) {
		l.log = logging.OrNop(log).Named("provider")
	}
}

// NewLocal returns a provider over backend and wallets.
func NewLocal(backend Backend, wallets *wallet.Manager, opts ...LocalOption) *Local {
	l := &Local{
		Emitter: NewEmitter(),
		backend: backend,
		wallets: wallets,
		approve: AutoApprove,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DialLocal connects to rpcURL and returns a Local provider over it.
func DialLocal(ctx context.Context, rpcURL string, wallets *wallet.Manager, opts ...LocalOption) (*Local, *ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("dialing %s: %w", rpcURL, err)
	}
	return NewLocal(client, wallets, opts...), client, nil
}

// RequestAccounts exposes the signing wallets after the user allows it.
// With no signing wallets it returns an empty list.
func (l *Local) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	accounts, err := l.signingAccounts()
	if err != nil {
		return nil, NewError(CodeDisconnected, "loading wallets: %v", err)
	}
	if len(accounts) == 0 || l.authorized.Load() {
		return accounts, nil
	}

	ok, err := l.approve(ctx, Approval{Kind: ApproveConnect, From: accounts[0]})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserRejected("account access")
	}
	l.authorized.Store(true)
	l.log.Debugw("accounts exposed", "count", len(accounts), "first", accounts[0].Hex())
	return accounts, nil
}

// Accounts returns the exposed accounts, default wallet first. It is empty
// until RequestAccounts succeeded.
func (l *Local) Accounts(context.Context) ([]common.Address, error) {
	if !l.authorized.Load() {
		return nil, nil
	}
	accounts, err := l.signingAccounts()
	if err != nil {
		return nil, NewError(CodeDisconnected, "loading wallets: %v", err)
	}
	return accounts, nil
}

func (l *Local) ChainID(ctx context.Context) (*big.Int, error) {
	return l.backend.ChainID(ctx)
}

func (l *Local) Call(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	return l.backend.CallContract(ctx, msg, block)
}

func (l *Local) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return l.backend.TransactionReceipt(ctx, hash)
}

// SendTransaction builds, approves, signs and broadcasts msg as msg.From.
func (l *Local) SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	if !l.authorized.Load() {
		return common.Hash{}, NewError(CodeUnauthorized, "accounts have not been requested")
	}
	w, err := l.wallets.ByAddress(msg.From.Hex())
	if err != nil || w.Type != wallet.TypeSigning {
		return common.Hash{}, NewError(CodeUnauthorized, "account %s is not a signing wallet", msg.From.Hex())
	}

	chainID, err := l.backend.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("chain id: %w", err)
	}
	tx, err := l.buildTx(ctx, chainID, msg)
	if err != nil {
		return common.Hash{}, err
	}

	ok, err := l.approve(ctx, Approval{
		Kind:    ApproveSign,
		From:    msg.From,
		To:      tx.To(),
		Data:    tx.Data(),
		Value:   tx.Value(),
		Gas:     tx.Gas(),
		FeeCap:  tx.GasFeeCap(),
		ChainID: chainID,
	})
	if err != nil {
		return common.Hash{}, err
	}
	if !ok {
		return common.Hash{}, ErrUserRejected("signature")
	}

	signer, err := wallet.NewSigner(w, l.wallets.KeyStore())
	if err != nil {
		return common.Hash{}, NewError(CodeUnauthorized, "%v", err)
	}
	signed, err := signer.SignTx(tx, chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("signing: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return common.Hash{}, err
	}
	if err := l.backend.SendTransaction(ctx, signed); err != nil {
		if ctx.Err() != nil {
			return signed.Hash(), err
		}
		return common.Hash{}, err
	}
	l.log.Infow("transaction sent", "hash", signed.Hash().Hex(), "from", msg.From.Hex(), "nonce", signed.Nonce())
	return signed.Hash(), nil
}

// SelectAccount makes wallet name the default and announces the new order.
func (l *Local) SelectAccount(name string) error {
	if err := l.wallets.SetDefault(name); err != nil {
		return err
	}
	if !l.authorized.Load() {
		return nil
	}
	accounts, err := l.signingAccounts()
	if err != nil {
		return err
	}
	l.EmitAccountsChanged(accounts)
	return nil
}

// WatchChain polls the node chain id every interval and emits chainChanged
// when it differs from the last value seen. It returns when ctx is done.
func (l *Local) WatchChain(ctx context.Context, interval time.Duration) error {
	if id, err := l.backend.ChainID(ctx); err == nil {
		l.lastChain.Store(id)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		id, err := l.backend.ChainID(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			l.log.Warnw("chain id poll failed", "err", err)
			continue
		}
		prev := l.lastChain.Swap(id)
		if prev != nil && prev.Cmp(id) == 0 {
			continue
		}
		if prev != nil {
			l.log.Infow("chain changed", "from", prev, "to", id)
			l.EmitChainChanged(id)
		}
	}
}

func (l *Local) buildTx(ctx context.Context, chainID *big.Int, msg ethereum.CallMsg) (*types.Transaction, error) {
	nonce, err := l.backend.PendingNonceAt(ctx, msg.From)
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	// Reverts surface here with the node's revert data attached.
	gas, err := l.backend.EstimateGas(ctx, msg)
	if err != nil {
		return nil, err
	}
	head, err := l.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("latest header: %w", err)
	}

	if head.BaseFee == nil {
		price, err := l.backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("gas price: %w", err)
		}
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: price,
			Gas:      gas,
			To:       msg.To,
			Value:    msg.Value,
			Data:     msg.Data,
		}), nil
	}

	tip, err := l.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas tip: %w", err)
	}
	feeCap := new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), tip)
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        msg.To,
		Value:     msg.Value,
		Data:      msg.Data,
	}), nil
}

func (l *Local) signingAccounts() ([]common.Address, error) {
	list, err := l.wallets.List()
	if err != nil {
		return nil, err
	}
	out := make([]common.Address, 0, len(list))
	for _, w := range list {
		if w.Type == wallet.TypeSigning {
			out = append(out, common.HexToAddress(w.Address))
		}
	}
	return out, nil
}
