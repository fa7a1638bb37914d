// Package contract binds the registration token contract and runs its six
// operations through a wallet provider.
package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/Mohsinsiddi/w3reg/internal/callerr"
	"github.com/Mohsinsiddi/w3reg/internal/provider"
	"github.com/Mohsinsiddi/w3reg/internal/token"
)

// Errors.
var (
	ErrABINotFound   = errors.New("ABI not found")
	ErrMissingMethod = errors.New("ABI lacks a required method")
)

// requiredMethods must all be present in a binding's ABI.
var requiredMethods = []string{"register", "approve", "transfer", "burn", "balanceOf", "isRegistered"}

// Binding is the fixed (address, interface) pair the invoker targets on one
// chain. It is immutable once built.
type Binding struct {
	Address  token.Address
	ABI      abi.ABI
	ChainID  *big.Int // nil skips the chain check
	Decimals uint8
	Symbol   string
	Explorer string // base URL for tx links, may be empty
}

// NewBinding validates address and abiDef and returns a binding.
func NewBinding(address string, abiDef abi.ABI, chainID *big.Int, decimals uint8, symbol string) (*Binding, error) {
	addr, err := token.ParseAddress(address)
	if err != nil {
		return nil, fmt.Errorf("contract address: %w", err)
	}
	for _, m := range requiredMethods {
		if _, ok := abiDef.Methods[m]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingMethod, m)
		}
	}
	return &Binding{
		Address:  addr,
		ABI:      abiDef,
		ChainID:  chainID,
		Decimals: decimals,
		Symbol:   symbol,
	}, nil
}

// WithExplorer returns a copy of b linking receipts to explorer.
func (b *Binding) WithExplorer(explorer string) *Binding {
	cp := *b
	cp.Explorer = strings.TrimRight(explorer, "/")
	return &cp
}

// TxURL returns the explorer link for hash, or "".
func (b *Binding) TxURL(hash common.Hash) string {
	if b.Explorer == "" {
		return ""
	}
	return b.Explorer + "/tx/" + hash.Hex()
}

// WithMetadata returns a copy of b with decimals and symbol read from the
// contract. Methods the ABI does not declare are left as configured.
func (b *Binding) WithMetadata(ctx context.Context, p provider.Provider) (*Binding, error) {
	cp := *b
	if _, ok := b.ABI.Methods["decimals"]; ok {
		out, err := b.read(ctx, p, "decimals")
		if err != nil {
			return nil, fmt.Errorf("decimals: %w", err)
		}
		d, ok := out[0].(uint8)
		if !ok {
			return nil, fmt.Errorf("decimals: unexpected type %T", out[0])
		}
		cp.Decimals = d
	}
	if _, ok := b.ABI.Methods["symbol"]; ok {
		out, err := b.read(ctx, p, "symbol")
		if err != nil {
			return nil, fmt.Errorf("symbol: %w", err)
		}
		if s, ok := out[0].(string); ok {
			cp.Symbol = s
		}
	}
	return &cp, nil
}

// RevertReason decodes a revert carried by err. Custom errors declared in the
// ABI render as Name(arg, ...); anything else falls back to Error(string) or
// the node's message.
func (b *Binding) RevertReason(err error) string {
	var de rpc.DataError
	if errors.As(err, &de) {
		if s, ok := de.ErrorData().(string); ok {
			if reason, ok := b.decodeCustomError(common.FromHex(s)); ok {
				return reason
			}
		}
	}
	return callerr.RevertReason(err)
}

func (b *Binding) decodeCustomError(data []byte) (string, bool) {
	if len(data) < 4 {
		return "", false
	}
	var id [4]byte
	copy(id[:], data[:4])
	abiErr, err := b.ABI.ErrorByID(id)
	if err != nil || !bytes.Equal(abiErr.ID[:4], id[:]) {
		return "", false
	}
	vals, err := abiErr.Unpack(data)
	if err != nil {
		return abiErr.Name, true
	}
	args, _ := vals.([]interface{})
	parts := make([]string, len(args))
	for i, v := range args {
		parts[i] = fmt.Sprint(v)
	}
	return abiErr.Name + "(" + strings.Join(parts, ", ") + ")", true
}

func (b *Binding) read(ctx context.Context, p provider.Provider, method string, args ...interface{}) ([]interface{}, error) {
	data, err := b.ABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	to := b.Address.Common()
	out, err := p.Call(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	return b.ABI.Unpack(method, out)
}
