// Package chain is a static registry of the EVM networks w3reg knows by name.
package chain

import (
	"errors"
	"strings"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Chain holds the metadata for a single network.
type Chain struct {
	Name           string `json:"name"`
	DisplayName    string `json:"display_name"`
	ChainID        int64  `json:"chain_id"`
	NativeCurrency string `json:"native_currency"`
	RPC            string `json:"rpc"`
	Explorer       string `json:"explorer,omitempty"`
	Testnet        bool   `json:"testnet"`
}

// Registry is the chain registry.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// NewRegistry creates and returns the registry of known networks.
func NewRegistry() *Registry {
	chains := allChains()
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.ChainID] = c
	}
	return r
}

// All returns every chain in the registry.
func (r *Registry) All() []Chain {
	return r.chains
}

// GetByName finds a chain by its slug name (e.g. "base", "sepolia").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByChainID finds a chain by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// TxURL returns the explorer page for a transaction hash, or "" when the
// chain has no explorer.
func (c *Chain) TxURL(hash string) string {
	if c.Explorer == "" {
		return ""
	}
	return strings.TrimRight(c.Explorer, "/") + "/tx/" + hash
}

// --- chain data ---

func allChains() []Chain {
	return []Chain{
		{
			Name: "ethereum", DisplayName: "Ethereum", ChainID: 1, NativeCurrency: "ETH",
			RPC: "https://ethereum-rpc.publicnode.com", Explorer: "https://etherscan.io",
		},
		{
			Name: "sepolia", DisplayName: "Sepolia", ChainID: 11155111, NativeCurrency: "ETH",
			RPC: "https://ethereum-sepolia-rpc.publicnode.com", Explorer: "https://sepolia.etherscan.io",
			Testnet: true,
		},
		{
			Name: "base", DisplayName: "Base", ChainID: 8453, NativeCurrency: "ETH",
			RPC: "https://mainnet.base.org", Explorer: "https://basescan.org",
		},
		{
			Name: "base-sepolia", DisplayName: "Base Sepolia", ChainID: 84532, NativeCurrency: "ETH",
			RPC: "https://sepolia.base.org", Explorer: "https://sepolia.basescan.org",
			Testnet: true,
		},
		{
			Name: "polygon", DisplayName: "Polygon", ChainID: 137, NativeCurrency: "POL",
			RPC: "https://polygon-bor-rpc.publicnode.com", Explorer: "https://polygonscan.com",
		},
		{
			Name: "amoy", DisplayName: "Polygon Amoy", ChainID: 80002, NativeCurrency: "POL",
			RPC: "https://rpc-amoy.polygon.technology", Explorer: "https://amoy.polygonscan.com",
			Testnet: true,
		},
		{
			Name: "arbitrum", DisplayName: "Arbitrum", ChainID: 42161, NativeCurrency: "ETH",
			RPC: "https://arb1.arbitrum.io/rpc", Explorer: "https://arbiscan.io",
		},
		{
			Name: "arbitrum-sepolia", DisplayName: "Arb Sepolia", ChainID: 421614, NativeCurrency: "ETH",
			RPC: "https://sepolia-rollup.arbitrum.io/rpc", Explorer: "https://sepolia.arbiscan.io",
			Testnet: true,
		},
		{
			Name: "optimism", DisplayName: "Optimism", ChainID: 10, NativeCurrency: "ETH",
			RPC: "https://mainnet.optimism.io", Explorer: "https://optimistic.etherscan.io",
		},
		{
			Name: "optimism-sepolia", DisplayName: "OP Sepolia", ChainID: 11155420, NativeCurrency: "ETH",
			RPC: "https://sepolia.optimism.io", Explorer: "https://sepolia-optimism.etherscan.io",
			Testnet: true,
		},
		{
			Name: "bnb", DisplayName: "BNB Chain", ChainID: 56, NativeCurrency: "BNB",
			RPC: "https://bsc-dataseed.binance.org", Explorer: "https://bscscan.com",
		},
		{
			Name: "bnb-testnet", DisplayName: "BSC Testnet", ChainID: 97, NativeCurrency: "BNB",
			RPC: "https://data-seed-prebsc-1-s1.binance.org:8545", Explorer: "https://testnet.bscscan.com",
			Testnet: true,
		},
		{
			Name: "anvil", DisplayName: "Anvil (local)", ChainID: 31337, NativeCurrency: "ETH",
			RPC: "http://127.0.0.1:8545", Testnet: true,
		},
	}
}
