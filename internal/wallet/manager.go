// Package wallet is the local wallet provider's account store: wallet metadata
// in a JSON file, private keys in the OS keychain, and a transaction signer.
package wallet

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet types.
const (
	TypeWatchOnly = "watch-only"
	TypeSigning   = "signing"
)

// Errors.
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidKey     = errors.New("invalid private key")
)

// Wallet is one account the local provider can expose. Only signing wallets
// are offered to a session; watch-only ones are kept for lookups.
type Wallet struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Type      string `json:"type"`
	KeyRef    string `json:"key_ref,omitempty"`
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
}

// Manager owns the wallet set. It loads the store lazily on first use and
// writes it back after every change. Safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	store   Store
	keys    KeyStore
	wallets map[string]*Wallet
	loaded  bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithInMemoryStore keeps wallets in memory only.
func WithInMemoryStore() Option {
	return func(m *Manager) { m.store = &memStore{} }
}

// WithStore sets where wallet metadata is persisted.
func WithStore(s Store) Option {
	return func(m *Manager) { m.store = s }
}

// WithKeyStore sets where private keys of signing wallets are kept.
func WithKeyStore(ks KeyStore) Option {
	return func(m *Manager) { m.keys = ks }
}

// NewManager returns a manager backed by memory unless options say otherwise.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		store:   &memStore{},
		keys:    NewInMemoryKeystore(),
		wallets: make(map[string]*Wallet),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// KeyStore returns the key store backing signing wallets.
func (m *Manager) KeyStore() KeyStore { return m.keys }

// Add stores a pre-built wallet, typically watch-only, under name.
func (m *Manager) Add(name string, w *Wallet) error {
	return m.mutate(func() error {
		if _, exists := m.wallets[name]; exists {
			return ErrWalletExists
		}
		w.Name = name
		if w.CreatedAt == "" {
			w.CreatedAt = now()
		}
		m.wallets[name] = w
		return nil
	})
}

// AddWithKey derives the address of hexKey and stores a signing wallet. The
// key goes to the key store, never to the wallets file. The first signing
// wallet becomes the default.
func (m *Manager) AddWithKey(name, hexKey string) (*Wallet, error) {
	var added *Wallet
	err := m.mutate(func() error {
		if _, exists := m.wallets[name]; exists {
			return ErrWalletExists
		}
		key, err := crypto.HexToECDSA(stripHexPrefix(strings.TrimSpace(hexKey)))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		ref, err := m.keys.Store(name, hexKey)
		if err != nil {
			return fmt.Errorf("storing key: %w", err)
		}
		added = &Wallet{
			Name:      name,
			Address:   crypto.PubkeyToAddress(key.PublicKey).Hex(),
			Type:      TypeSigning,
			KeyRef:    ref,
			IsDefault: len(m.wallets) == 0,
			CreatedAt: now(),
		}
		m.wallets[name] = added
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// Get returns the wallet called name.
func (m *Manager) Get(name string) (*Wallet, error) {
	return m.find(func(w *Wallet) bool { return w.Name == name })
}

// ByAddress returns the wallet holding address, compared case-insensitively.
func (m *Manager) ByAddress(address string) (*Wallet, error) {
	return m.find(func(w *Wallet) bool { return strings.EqualFold(w.Address, address) })
}

// Remove deletes a wallet together with its stored key.
func (m *Manager) Remove(name string) error {
	return m.mutate(func() error {
		w, ok := m.wallets[name]
		if !ok {
			return ErrWalletNotFound
		}
		if w.KeyRef != "" {
			if err := m.keys.Delete(w.KeyRef); err != nil {
				return fmt.Errorf("deleting key: %w", err)
			}
		}
		delete(m.wallets, name)
		return nil
	})
}

// List returns all wallets, the default first and the rest by name.
func (m *Manager) List() ([]*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(); err != nil {
		return nil, err
	}
	out := m.sorted()
	sort.SliceStable(out, func(i, j int) bool { return out[i].IsDefault && !out[j].IsDefault })
	return out, nil
}

// SetDefault marks name as the default wallet and clears the others.
func (m *Manager) SetDefault(name string) error {
	return m.mutate(func() error {
		if _, ok := m.wallets[name]; !ok {
			return ErrWalletNotFound
		}
		for _, w := range m.wallets {
			w.IsDefault = w.Name == name
		}
		return nil
	})
}

// --- internal ---

// mutate runs fn on the loaded set and persists the result if fn succeeds.
func (m *Manager) mutate(fn func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	return m.store.Save(m.sorted())
}

func (m *Manager) find(match func(*Wallet) bool) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(); err != nil {
		return nil, err
	}
	for _, w := range m.sorted() {
		if match(w) {
			return w, nil
		}
	}
	return nil, ErrWalletNotFound
}

func (m *Manager) load() error {
	if m.loaded {
		return nil
	}
	wallets, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("loading wallets: %w", err)
	}
	for _, w := range wallets {
		m.wallets[w.Name] = w
	}
	m.loaded = true
	return nil
}

// sorted returns the wallets ordered by name.
func (m *Manager) sorted() []*Wallet {
	out := make([]*Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func stripHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}
