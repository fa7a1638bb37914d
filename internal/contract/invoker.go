package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3reg/internal/callerr"
	"github.com/Mohsinsiddi/w3reg/internal/logging"
	"github.com/Mohsinsiddi/w3reg/internal/provider"
	"github.com/Mohsinsiddi/w3reg/internal/token"
)

const defaultPollInterval = 2 * time.Second

// Session supplies the connected account for mutating operations.
type Session interface {
	CurrentAccount() (token.Address, bool)
}

// Invoker runs the six contract operations. Every method returns a Result;
// none returns an error or panics on remote failure.
//
// Invocations are independent and may run concurrently. A mutating call
// completes against the account captured when it started.
type Invoker struct {
	provider provider.Provider
	session  Session
	binding  atomic.Pointer[Binding]

	confirmTimeout time.Duration
	pollInterval   time.Duration
	log            *zap.SugaredLogger
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithConfirmTimeout bounds the wait for a receipt. Zero waits until the
// caller's context ends.
func WithConfirmTimeout(d time.Duration) Option {
	return func(inv *Invoker) { inv.confirmTimeout = d }
}

// WithPollInterval sets how often receipts are polled.
func WithPollInterval(d time.Duration) Option {
	return func(inv *Invoker) {
		if d > 0 {
			inv.pollInterval = d
		}
	}
}

// WithLogger sets the invoker logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(inv *Invoker) {
		inv.log = logging.OrNop(log).Named("invoker")
	}
}

// NewInvoker returns an invoker targeting b. b may be nil until Rebind.
func NewInvoker(p provider.Provider, s Session, b *Binding, opts ...Option) *Invoker {
	inv := &Invoker{
		provider:     p,
		session:      s,
		pollInterval: defaultPollInterval,
		log:          logging.Nop(),
	}
	inv.binding.Store(b)
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Rebind swaps the target binding. nil leaves the invoker unbound: every
// operation then fails with ChainMismatch.
func (inv *Invoker) Rebind(b *Binding) {
	inv.binding.Store(b)
}

// Binding returns the current binding, or nil.
func (inv *Invoker) Binding() *Binding {
	return inv.binding.Load()
}

// Register registers the connected account.
func (inv *Invoker) Register(ctx context.Context) Result {
	return inv.send(ctx, OpRegister, func(b *Binding, from token.Address) ([]byte, error) {
		return b.ABI.Pack("register", from.Common())
	})
}

// Approve lets spender move amount of the caller's tokens.
func (inv *Invoker) Approve(ctx context.Context, spender, amount string) Result {
	return inv.send(ctx, OpApprove, func(b *Binding, _ token.Address) ([]byte, error) {
		addr, err := token.ParseAddress(spender)
		if err != nil {
			return nil, fmt.Errorf("spender: %w", err)
		}
		v, err := token.ParsePositiveAmount(amount, b.Decimals)
		if err != nil {
			return nil, err
		}
		return b.ABI.Pack("approve", addr.Common(), v)
	})
}

// Transfer sends amount to to. The balance is checked by the contract.
func (inv *Invoker) Transfer(ctx context.Context, to, amount string) Result {
	return inv.send(ctx, OpTransfer, func(b *Binding, _ token.Address) ([]byte, error) {
		addr, err := token.ParseAddress(to)
		if err != nil {
			return nil, fmt.Errorf("recipient: %w", err)
		}
		v, err := token.ParsePositiveAmount(amount, b.Decimals)
		if err != nil {
			return nil, err
		}
		return b.ABI.Pack("transfer", addr.Common(), v)
	})
}

// Burn destroys amount of the caller's tokens.
func (inv *Invoker) Burn(ctx context.Context, amount string) Result {
	return inv.send(ctx, OpBurn, func(b *Binding, _ token.Address) ([]byte, error) {
		v, err := token.ParsePositiveAmount(amount, b.Decimals)
		if err != nil {
			return nil, err
		}
		return b.ABI.Pack("burn", v)
	})
}

// BalanceOf reads account's balance in base units.
func (inv *Invoker) BalanceOf(ctx context.Context, account string) Result {
	return inv.read(ctx, OpBalanceOf, account, func(b *Binding, out []interface{}) (Value, error) {
		v, ok := out[0].(*big.Int)
		if !ok {
			return nil, fmt.Errorf("balanceOf returned %T", out[0])
		}
		return Balance{Amount: v, Decimals: b.Decimals, Symbol: b.Symbol}, nil
	})
}

// IsRegistered reads whether account is registered.
func (inv *Invoker) IsRegistered(ctx context.Context, account string) Result {
	return inv.read(ctx, OpIsRegistered, account, func(_ *Binding, out []interface{}) (Value, error) {
		v, ok := out[0].(bool)
		if !ok {
			return nil, fmt.Errorf("isRegistered returned %T", out[0])
		}
		return Registered(v), nil
	})
}

// --- internal ---

type encodeFunc func(b *Binding, from token.Address) ([]byte, error)

type decodeFunc func(b *Binding, out []interface{}) (Value, error)

func (inv *Invoker) send(ctx context.Context, op Op, encode encodeFunc) Result {
	log := inv.log.With("req", uuid.NewString(), "op", op)

	from, ok := inv.session.CurrentAccount()
	if !ok {
		return fail(op, callerr.New(callerr.NotConnected, "connect a wallet first"))
	}
	b := inv.binding.Load()
	if b == nil {
		return fail(op, callerr.New(callerr.ChainMismatch, "no contract deployment for the current chain"))
	}
	data, err := encode(b, from)
	if err != nil {
		return fail(op, callerr.Wrap(callerr.InvalidInput, err))
	}
	if f, ok := inv.checkChain(ctx, op, b); !ok {
		return f
	}

	to := b.Address.Common()
	msg := ethereum.CallMsg{From: from.Common(), To: &to, Data: data}

	log.Infow("submitting", "from", from.String(), "to", b.Address.String())
	hash, err := inv.provider.SendTransaction(ctx, msg)
	if err != nil && hash != (common.Hash{}) {
		log.Warnw("broadcast outcome unknown", "tx", hash.Hex(), "err", err)
		f := fail(op, callerr.New(callerr.Unknown, "transaction %s may have been broadcast: %v", hash.Hex(), err))
		f.TxHash = &hash
		return f
	}
	if err != nil {
		ce := callerr.Classify(err)
		if ce.Kind == callerr.Reverted {
			ce.Message = b.RevertReason(err)
		}
		log.Warnw("submission failed", "kind", ce.Kind, "err", err)
		return fail(op, ce)
	}
	log.Infow("submitted", "tx", hash.Hex())

	receipt, err := inv.waitReceipt(ctx, hash)
	if err != nil {
		log.Warnw("confirmation unknown", "tx", hash.Hex(), "err", err)
		f := fail(op, callerr.New(callerr.Unknown, "transaction %s submitted but not confirmed: %v", hash.Hex(), err))
		f.TxHash = &hash
		return f
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		reason := inv.replayRevert(ctx, b, msg, receipt.BlockNumber)
		log.Warnw("reverted", "tx", hash.Hex(), "block", receipt.BlockNumber, "reason", reason)
		f := fail(op, callerr.New(callerr.Reverted, "%s", reason))
		f.TxHash = &hash
		return f
	}

	var block uint64
	if receipt.BlockNumber != nil {
		block = receipt.BlockNumber.Uint64()
	}
	log.Infow("confirmed", "tx", hash.Hex(), "block", block, "gas", receipt.GasUsed)
	return Success{Op: op, Value: Receipt{
		TxHash:      hash,
		BlockNumber: block,
		GasUsed:     receipt.GasUsed,
		Explorer:    b.TxURL(hash),
	}}
}

func (inv *Invoker) read(ctx context.Context, op Op, account string, decode decodeFunc) Result {
	log := inv.log.With("req", uuid.NewString(), "op", op)

	if inv.provider == nil {
		return fail(op, callerr.New(callerr.ProviderUnavailable, "no wallet provider is installed"))
	}
	b := inv.binding.Load()
	if b == nil {
		return fail(op, callerr.New(callerr.ChainMismatch, "no contract deployment for the current chain"))
	}
	addr, err := token.ParseAddress(account)
	if err != nil {
		return fail(op, callerr.Wrap(callerr.InvalidInput, err))
	}
	data, err := b.ABI.Pack(string(op), addr.Common())
	if err != nil {
		return fail(op, callerr.Wrap(callerr.InvalidInput, err))
	}
	if f, ok := inv.checkChain(ctx, op, b); !ok {
		return f
	}

	to := b.Address.Common()
	msg := ethereum.CallMsg{To: &to, Data: data}
	if from, ok := inv.session.CurrentAccount(); ok {
		msg.From = from.Common()
	}

	out, err := inv.provider.Call(ctx, msg, nil)
	if err != nil {
		ce := callerr.Classify(err)
		if ce.Kind == callerr.Reverted {
			ce.Message = b.RevertReason(err)
		} else {
			ce = callerr.Wrap(callerr.NetworkError, err)
		}
		log.Warnw("call failed", "kind", ce.Kind, "err", err)
		return fail(op, ce)
	}

	vals, err := b.ABI.Unpack(string(op), out)
	if err == nil && len(vals) == 0 {
		err = errors.New("empty result")
	}
	if err != nil {
		log.Warnw("undecodable result", "raw", common.Bytes2Hex(out), "err", err)
		return fail(op, callerr.New(callerr.NetworkError, "decoding %s result: %v", op, err))
	}
	v, err := decode(b, vals)
	if err != nil {
		return fail(op, callerr.Wrap(callerr.NetworkError, err))
	}
	log.Debugw("read", "account", addr.String())
	return Success{Op: op, Value: v}
}

func (inv *Invoker) checkChain(ctx context.Context, op Op, b *Binding) (Failure, bool) {
	if b.ChainID == nil {
		return Failure{}, true
	}
	id, err := inv.provider.ChainID(ctx)
	if err != nil {
		return fail(op, callerr.Wrap(callerr.NetworkError, err)), false
	}
	if id.Cmp(b.ChainID) != 0 {
		return fail(op, callerr.New(callerr.ChainMismatch,
			"wallet is on chain %s, contract %s is bound to chain %s", id, b.Address.Short(), b.ChainID)), false
	}
	return Failure{}, true
}

// waitReceipt polls until the receipt exists, the confirm timeout elapses or
// ctx ends. Lookup errors other than the context's are retried.
func (inv *Invoker) waitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if inv.confirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.confirmTimeout)
		defer cancel()
	}

	for {
		r, err := inv.provider.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && r != nil:
			return r, nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			inv.log.Debugw("receipt lookup failed, retrying", "tx", hash.Hex(), "err", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(inv.pollInterval):
		}
	}
}

// replayRevert re-executes msg at block to recover the revert reason.
func (inv *Invoker) replayRevert(ctx context.Context, b *Binding, msg ethereum.CallMsg, block *big.Int) string {
	_, err := inv.provider.Call(ctx, msg, block)
	if err == nil {
		return "transaction reverted"
	}
	return b.RevertReason(err)
}
