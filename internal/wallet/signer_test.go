package wallet

import (
	"math/big"
	"testing"

	"github.com/99designs/keyring"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Anvil test account #0.
const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// testKeystore returns a file-backed Keystore isolated to a temp directory.
func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "w3reg-test",
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: func(string) (string, error) { return "testpass", nil },
	})
	require.NoError(t, err)
	return NewKeystore(ring)
}

func testTx() *types.Transaction {
	to := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(31337),
		Nonce:     7,
		GasTipCap: big.NewInt(1_000_000_000),
		GasFeeCap: big.NewInt(3_000_000_000),
		Gas:       60_000,
		To:        &to,
		Data:      []byte{0x4e, 0x71, 0xd9, 0x2d},
	})
}

func TestNewSignerRejectsWatchOnly(t *testing.T) {
	w := &Wallet{Name: "watch", Address: testSignerAddr, Type: TypeWatchOnly}
	_, err := NewSigner(w, NewInMemoryKeystore())
	assert.ErrorIs(t, err, ErrWatchOnly)
}

func TestSignerAddress(t *testing.T) {
	w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning, KeyRef: "w3reg.w"}
	s, err := NewSigner(w, NewKeystore(nil))
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), s.Address())
}

func TestSignTxKeyErrors(t *testing.T) {
	mem := NewInMemoryKeystore()
	badRef, err := mem.Store("bad", "zzzz")
	require.NoError(t, err)
	// Anvil account #1 stored under account #0's wallet.
	otherRef, err := mem.Store("other", "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d")
	require.NoError(t, err)

	tests := []struct {
		name string
		ks   KeyStore
		ref  string
		want string
	}{
		{"no keystore", NewKeystore(nil), "w3reg.w", "keystore not available"},
		{"missing key", mem, "w3reg.missing", "retrieving key"},
		{"bad key", mem, badRef, "parsing private key"},
		{"other account", mem, otherRef, ErrKeyMismatch.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning, KeyRef: tt.ref}
			s, err := NewSigner(w, tt.ks)
			require.NoError(t, err)
			_, err = s.SignTx(testTx(), big.NewInt(31337))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSignTxRecoversSender(t *testing.T) {
	ks := testKeystore(t)
	ref, err := ks.Store("anvil", "0x"+testPrivKeyHex)
	require.NoError(t, err)

	w := &Wallet{Name: "anvil", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}
	s, err := NewSigner(w, ks)
	require.NoError(t, err)

	chainID := big.NewInt(31337)
	signed, err := s.SignTx(testTx(), chainID)
	require.NoError(t, err)

	from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), from)
	assert.Equal(t, uint64(7), signed.Nonce())
}

func TestSignLegacyTxUsesEIP155(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, err := ks.Store("anvil", testPrivKeyHex)
	require.NoError(t, err)
	s, err := NewSigner(&Wallet{Name: "anvil", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}, ks)
	require.NoError(t, err)

	to := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	signed, err := s.SignTx(types.NewTx(&types.LegacyTx{Nonce: 1, GasPrice: big.NewInt(1), Gas: 60_000, To: &to}), big.NewInt(137))
	require.NoError(t, err)
	assert.True(t, signed.Protected())
	assert.Equal(t, big.NewInt(137), signed.ChainId())
}

func TestKeystoreRoundTrip(t *testing.T) {
	ks := testKeystore(t)
	ref, err := ks.Store("alice", testPrivKeyHex)
	require.NoError(t, err)
	assert.Equal(t, "w3reg.alice", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.NoError(t, ks.Delete(ref), "deleting twice")
}

func TestManagerRemoveWithKeyAlreadyGone(t *testing.T) {
	ks := testKeystore(t)
	mgr := NewManager(WithKeyStore(ks))
	w, err := mgr.AddWithKey("alice", testPrivKeyHex)
	require.NoError(t, err)

	// The key vanished outside the manager.
	require.NoError(t, ks.ring.Remove(w.KeyRef))

	require.NoError(t, mgr.Remove("alice"))
	_, err = mgr.Get("alice")
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestNilKeystore(t *testing.T) {
	ks := NewKeystore(nil)
	_, err := ks.Store("alice", testPrivKeyHex)
	assert.ErrorIs(t, err, ErrKeystoreUnavailable)
	_, err = ks.Retrieve("w3reg.alice")
	assert.ErrorIs(t, err, ErrKeystoreUnavailable)
	assert.NoError(t, ks.Delete("w3reg.any"))
}

func TestInMemoryKeystoreMissing(t *testing.T) {
	_, err := NewInMemoryKeystore().Retrieve("w3reg.nobody")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
