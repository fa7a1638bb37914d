package session

import (
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3reg/internal/callerr"
	"github.com/Mohsinsiddi/w3reg/internal/token"
)

// Status is the connection status.
type Status int

const (
	Disconnected Status = iota
	Connecting
	Connected
	Failed
)

func (s Status) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// State is one connection state. Account is set only when Connected; Kind
// and Reason only when Failed. ChainID is the last chain id the provider
// reported, nil if none yet.
type State struct {
	Status  Status
	Account token.Address
	Kind    callerr.Kind
	Reason  string
	ChainID *big.Int
}

// Equal reports whether s and o describe the same state.
func (s State) Equal(o State) bool {
	if s.Status != o.Status || s.Account.String() != o.Account.String() || s.Kind != o.Kind || s.Reason != o.Reason {
		return false
	}
	if s.ChainID == nil || o.ChainID == nil {
		return s.ChainID == nil && o.ChainID == nil
	}
	return s.ChainID.Cmp(o.ChainID) == 0
}

func (s State) String() string {
	switch s.Status {
	case Connected:
		return "connected(" + s.Account.String() + ")"
	case Failed:
		return fmt.Sprintf("failed(%s: %s)", s.Kind, s.Reason)
	}
	return s.Status.String()
}

func disconnected(chainID *big.Int) State {
	return State{Status: Disconnected, ChainID: chainID}
}

func connected(account token.Address, chainID *big.Int) State {
	return State{Status: Connected, Account: account, ChainID: chainID}
}

func failed(err *callerr.Error, chainID *big.Int) State {
	return State{Status: Failed, Kind: err.Kind, Reason: err.Message, ChainID: chainID}
}
