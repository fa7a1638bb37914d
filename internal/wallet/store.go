package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Store persists wallet metadata. It never sees private keys.
type Store interface {
	Load() ([]*Wallet, error)
	Save([]*Wallet) error
}

type memStore struct {
	mu      sync.Mutex
	wallets []*Wallet
}

func (s *memStore) Load() ([]*Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallets, nil
}

func (s *memStore) Save(wallets []*Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets = wallets
	return nil
}

// JSONStore keeps wallets in one JSON file, readable only by the owner.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store for the file at path. The file is created on
// the first save.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load returns no wallets when the file does not exist yet.
func (s *JSONStore) Load() ([]*Wallet, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var wallets []*Wallet
	if err := json.Unmarshal(data, &wallets); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return wallets, nil
}

// Save replaces the file through a rename so readers never see a partial
// write.
func (s *JSONStore) Save(wallets []*Wallet) error {
	data, err := json.MarshalIndent(wallets, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".wallets-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
