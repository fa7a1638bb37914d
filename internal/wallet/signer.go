package wallet

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer errors.
var (
	ErrWatchOnly   = errors.New("watch-only wallet cannot sign")
	ErrKeyMismatch = errors.New("stored key does not belong to the wallet address")
)

// Signer signs transactions as one signing wallet. The key is fetched from
// the key store for each signature and dropped afterwards.
type Signer struct {
	name    string
	address common.Address
	keyRef  string
	keys    KeyStore
}

// NewSigner returns a signer for w. Watch-only wallets are rejected.
func NewSigner(w *Wallet, keys KeyStore) (*Signer, error) {
	if w.Type != TypeSigning || w.KeyRef == "" {
		return nil, fmt.Errorf("%w: %s", ErrWatchOnly, w.Name)
	}
	return &Signer{
		name:    w.Name,
		address: common.HexToAddress(w.Address),
		keyRef:  w.KeyRef,
		keys:    keys,
	}, nil
}

// Address is the account the signer signs for.
func (s *Signer) Address() common.Address { return s.address }

// SignTx signs tx for chainID with the latest signer the chain id allows:
// EIP-1559 for dynamic fee transactions, EIP-155 for legacy ones.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	hexKey, err := s.keys.Retrieve(s.keyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key for %s: %w", s.name, err)
	}
	key, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key for %s: %w", s.name, err)
	}
	if crypto.PubkeyToAddress(key.PublicKey) != s.address {
		return nil, fmt.Errorf("%w: %s", ErrKeyMismatch, s.name)
	}
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
}
