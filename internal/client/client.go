// Package client wires the session manager, the contract invoker and the
// presenter into the object the CLI and the studio console drive.
package client

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3reg/internal/chain"
	"github.com/Mohsinsiddi/w3reg/internal/config"
	"github.com/Mohsinsiddi/w3reg/internal/contract"
	"github.com/Mohsinsiddi/w3reg/internal/logging"
	"github.com/Mohsinsiddi/w3reg/internal/present"
	"github.com/Mohsinsiddi/w3reg/internal/provider"
	"github.com/Mohsinsiddi/w3reg/internal/session"
)

// Client is one wallet session plus the contract bound for its chain.
type Client struct {
	cfg      *config.Config
	provider provider.Provider
	chains   *chain.Registry
	abi      abi.ABI
	log      *zap.SugaredLogger
	metadata bool

	session *session.Manager
	invoker *contract.Invoker

	mu          sync.Mutex
	boundChain  int64
	stopNetwork func()
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger handed to every component.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = log }
}

// WithChains sets the registry used to resolve explorer links.
func WithChains(r *chain.Registry) Option {
	return func(c *Client) { c.chains = r }
}

// WithContractMetadata makes every rebind read decimals and symbol from the
// contract instead of trusting the config.
func WithContractMetadata() Option {
	return func(c *Client) { c.metadata = true }
}

// New builds a client for cfg. p may be nil, which every connect attempt
// reports as ProviderUnavailable. The initial binding targets cfg.ChainID.
func New(cfg *config.Config, p provider.Provider, opts ...Option) (*Client, error) {
	c := &Client{
		cfg:      cfg,
		provider: p,
		chains:   chain.NewRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.OrNop(c.log)

	parsed, err := contract.LoadABI(cfg.ABI)
	if err != nil {
		return nil, err
	}
	c.abi = parsed

	b, err := c.bindingFor(cfg.ChainID)
	if err != nil {
		return nil, err
	}
	c.boundChain = cfg.ChainID

	c.session = session.New(p, session.WithLogger(c.log))
	c.invoker = contract.NewInvoker(p, c.session, b,
		contract.WithConfirmTimeout(cfg.ConfirmTimeout.Std()),
		contract.WithPollInterval(cfg.PollInterval.Std()),
		contract.WithLogger(c.log),
	)
	c.stopNetwork = c.session.OnNetworkChange(c.onNetworkChange)
	return c, nil
}

// Session returns the session manager.
func (c *Client) Session() *session.Manager { return c.session }

// Invoker returns the contract invoker.
func (c *Client) Invoker() *contract.Invoker { return c.invoker }

// Binding returns the active binding, nil when the current chain has none.
func (c *Client) Binding() *contract.Binding { return c.invoker.Binding() }

// BoundChain returns the chain id the last (re)bind targeted.
func (c *Client) BoundChain() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.boundChain
}

// Connect connects the wallet and, once connected, rebinds to the chain the
// wallet is actually on.
func (c *Client) Connect(ctx context.Context) session.State {
	s := c.session.Connect(ctx)
	if s.Status == session.Connected && s.ChainID != nil && s.ChainID.Int64() != c.BoundChain() {
		if err := c.rebind(ctx, s.ChainID.Int64()); err != nil {
			c.log.Warnw("rebind after connect failed", "chain_id", s.ChainID, "err", err)
		}
	}
	return s
}

// Disconnect stops listening to the wallet.
func (c *Client) Disconnect() session.State {
	return c.session.Disconnect()
}

// Status renders the connection state for display.
func (c *Client) Status() string {
	return present.Status(c.session.State())
}

// Reinitialize rebinds the invoker to the chain the provider currently
// reports. With no deployment for that chain the invoker is left unbound and
// every operation fails with ChainMismatch.
func (c *Client) Reinitialize(ctx context.Context) error {
	if c.provider == nil {
		return c.rebind(ctx, c.cfg.ChainID)
	}
	id, err := c.provider.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("reading chain id: %w", err)
	}
	return c.rebind(ctx, id.Int64())
}

// Close unregisters from the session and stops listening to the wallet.
func (c *Client) Close() {
	c.stopNetwork()
	c.session.Disconnect()
}

// --- internal ---

func (c *Client) onNetworkChange(ctx context.Context, id *big.Int) {
	if err := c.rebind(ctx, id.Int64()); err != nil {
		c.log.Errorw("rebinding after chain change", "chain_id", id, "err", err)
	}
}

func (c *Client) rebind(ctx context.Context, chainID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.bindingFor(chainID)
	if err != nil {
		c.invoker.Rebind(nil)
		return err
	}
	if b != nil && c.metadata && c.provider != nil {
		if withMeta, err := b.WithMetadata(ctx, c.provider); err != nil {
			c.log.Warnw("token metadata unavailable, using config", "err", err)
		} else {
			b = withMeta
		}
	}
	c.invoker.Rebind(b)
	c.boundChain = chainID
	if b == nil {
		c.log.Warnw("no deployment for chain, operations disabled", "chain_id", chainID)
	} else {
		c.log.Infow("bound", "chain_id", chainID, "contract", b.Address.String())
	}
	return nil
}

// bindingFor returns nil, nil when chainID has no configured deployment.
func (c *Client) bindingFor(chainID int64) (*contract.Binding, error) {
	addr, ok := c.cfg.Deployment(chainID)
	if !ok {
		return nil, nil
	}
	b, err := contract.NewBinding(addr, c.abi, big.NewInt(chainID), c.cfg.Decimals, c.cfg.Symbol)
	if err != nil {
		return nil, fmt.Errorf("chain %d: %w", chainID, err)
	}
	if ch, err := c.chains.GetByChainID(chainID); err == nil && ch.Explorer != "" {
		b = b.WithExplorer(ch.Explorer)
	}
	return b, nil
}
