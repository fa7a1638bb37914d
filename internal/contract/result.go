package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/w3reg/internal/callerr"
)

// Op names one of the six contract operations.
type Op string

const (
	OpRegister     Op = "register"
	OpApprove      Op = "approve"
	OpTransfer     Op = "transfer"
	OpBurn         Op = "burn"
	OpBalanceOf    Op = "balanceOf"
	OpIsRegistered Op = "isRegistered"
)

// Mutates reports whether op changes chain state and needs a signer.
func (o Op) Mutates() bool {
	switch o {
	case OpRegister, OpApprove, OpTransfer, OpBurn:
		return true
	}
	return false
}

// Result is the outcome of one invocation: Success or Failure.
type Result interface {
	Operation() Op
	isResult()
}

// Value is the payload of a Success: Balance, Registered or Receipt.
type Value interface {
	isValue()
}

// Success is a completed invocation.
type Success struct {
	Op    Op
	Value Value
}

// Failure is a classified failed invocation. TxHash is set when a
// transaction was submitted, notably for Unknown outcomes.
type Failure struct {
	Op      Op
	Kind    callerr.Kind
	Message string
	TxHash  *common.Hash
}

func (s Success) Operation() Op { return s.Op }
func (Success) isResult()       {}

func (f Failure) Operation() Op { return f.Op }
func (Failure) isResult()       {}

// Err returns f as a classified error.
func (f Failure) Err() error {
	return &callerr.Error{Kind: f.Kind, Message: f.Message}
}

// Balance is a token balance in base units.
type Balance struct {
	Amount   *big.Int
	Decimals uint8
	Symbol   string
}

// Registered is the answer of isRegistered.
type Registered bool

// Receipt confirms a mined, successful transaction.
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	Explorer    string // tx link, may be empty
}

func (Balance) isValue()    {}
func (Registered) isValue() {}
func (Receipt) isValue()    {}

func fail(op Op, err *callerr.Error) Failure {
	return Failure{Op: op, Kind: err.Kind, Message: err.Message}
}
