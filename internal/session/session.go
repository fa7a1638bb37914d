// Package session owns the connection to the wallet provider: the single
// ConnectionState cell, the connect/disconnect lifecycle, and the
// accountsChanged/chainChanged subscriptions.
//
// Only the Manager writes state. Transitions are serialized and applied in
// the order the provider emits events; State() never blocks.
package session

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3reg/internal/callerr"
	"github.com/Mohsinsiddi/w3reg/internal/logging"
	"github.com/Mohsinsiddi/w3reg/internal/provider"
	"github.com/Mohsinsiddi/w3reg/internal/token"
)

const defaultEventTimeout = 30 * time.Second

// NetworkHandler runs after a chainChanged event was recorded. ctx is bounded
// by the manager's event timeout.
type NetworkHandler func(ctx context.Context, chainID *big.Int)

// Manager tracks the connection to one wallet provider.
type Manager struct {
	provider     provider.Provider
	log          *zap.SugaredLogger
	eventTimeout time.Duration

	state    atomic.Pointer[State]
	chainSeq atomic.Uint64 // bumped by every recorded chainChanged

	connectMu sync.Mutex // one Connect at a time
	writeMu   sync.Mutex // guards transitions and change listeners

	subMu      sync.Mutex
	subscribed bool
	accountsID provider.ListenerID
	chainID    provider.ListenerID

	listenerMu sync.Mutex
	nextHandle int
	onChange   map[int]func(State)
	onNetwork  map[int]NetworkHandler
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the session logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(m *Manager) {
		m.log = logging.OrNop(log).Named("session")
	}
}

// WithEventTimeout bounds the context handed to network handlers.
func WithEventTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.eventTimeout = d
		}
	}
}

// New returns a Disconnected manager. A nil p models a missing wallet.
func New(p provider.Provider, opts ...Option) *Manager {
	m := &Manager{
		provider:     p,
		log:          logging.Nop(),
		eventTimeout: defaultEventTimeout,
		onChange:     make(map[int]func(State)),
		onNetwork:    make(map[int]NetworkHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	initial := disconnected(nil)
	m.state.Store(&initial)
	return m
}

// State returns the current connection state.
func (m *Manager) State() State {
	return *m.state.Load()
}

// CurrentAccount returns the connected account.
func (m *Manager) CurrentAccount() (token.Address, bool) {
	s := m.State()
	if s.Status != Connected {
		return token.Address{}, false
	}
	return s.Account, true
}

// Connect requests account access and returns the resulting state. It never
// returns an error: failures are reported as a Failed state.
//
// While already Connected it re-checks the provider's account list without
// prompting and follows a silent account switch.
func (m *Manager) Connect(ctx context.Context) State {
	if m.provider == nil {
		return m.transition(func(prev State) State {
			return failed(callerr.New(callerr.ProviderUnavailable, "no wallet provider is installed"), prev.ChainID)
		})
	}

	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	if m.State().Status == Connected {
		return m.revalidate(ctx)
	}

	m.transition(func(prev State) State {
		return State{Status: Connecting, ChainID: prev.ChainID}
	})

	accounts, err := m.provider.RequestAccounts(ctx)
	if err != nil {
		ce := callerr.Classify(err)
		m.log.Warnw("account request failed", "kind", ce.Kind, "err", err)
		return m.transition(func(prev State) State { return failed(ce, prev.ChainID) })
	}

	m.subscribe()
	seq := m.chainSeq.Load()
	chainID := m.readChainID(ctx)

	return m.transition(func(prev State) State {
		// A chainChanged recorded after the read is newer than chainID.
		if chainID == nil || m.chainSeq.Load() != seq {
			chainID = prev.ChainID
		}
		if len(accounts) == 0 {
			return disconnected(chainID)
		}
		return connected(token.FromCommon(accounts[0]), chainID)
	})
}

// Disconnect stops listening to the provider and resets to Disconnected.
// Access granted in the wallet itself is not revoked.
func (m *Manager) Disconnect() State {
	m.unsubscribe()
	return m.transition(func(prev State) State { return disconnected(prev.ChainID) })
}

// OnChange registers fn to run after every state transition, in order. fn
// runs with transitions blocked and must not call Connect or Disconnect.
// The returned func unregisters it.
func (m *Manager) OnChange(fn func(State)) (remove func()) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.nextHandle++
	h := m.nextHandle
	m.onChange[h] = fn
	return func() {
		m.listenerMu.Lock()
		defer m.listenerMu.Unlock()
		delete(m.onChange, h)
	}
}

// OnNetworkChange registers fn to run after a chainChanged event. The
// manager does not reload anything itself; re-binding is up to fn.
func (m *Manager) OnNetworkChange(fn NetworkHandler) (remove func()) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.nextHandle++
	h := m.nextHandle
	m.onNetwork[h] = fn
	return func() {
		m.listenerMu.Lock()
		defer m.listenerMu.Unlock()
		delete(m.onNetwork, h)
	}
}

// --- internal ---

func (m *Manager) revalidate(ctx context.Context) State {
	accounts, err := m.provider.Accounts(ctx)
	if err != nil {
		m.log.Warnw("account re-check failed, keeping session", "err", err)
		return m.State()
	}
	return m.applyAccounts(accounts)
}

func (m *Manager) applyAccounts(accounts []common.Address) State {
	return m.transition(func(prev State) State {
		if len(accounts) == 0 {
			return disconnected(prev.ChainID)
		}
		return connected(token.FromCommon(accounts[0]), prev.ChainID)
	})
}

func (m *Manager) handleAccounts(accounts []common.Address) {
	m.log.Debugw("accountsChanged", "count", len(accounts))
	m.applyAccounts(accounts)
}

func (m *Manager) handleChain(id *big.Int) {
	m.log.Infow("chainChanged", "chain_id", id)
	m.transition(func(prev State) State {
		m.chainSeq.Inc()
		next := prev
		next.ChainID = id
		return next
	})

	m.listenerMu.Lock()
	handlers := make([]NetworkHandler, 0, len(m.onNetwork))
	for _, fn := range m.onNetwork {
		handlers = append(handlers, fn)
	}
	m.listenerMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.eventTimeout)
	defer cancel()
	for _, fn := range handlers {
		fn(ctx, id)
	}
}

func (m *Manager) readChainID(ctx context.Context) *big.Int {
	id, err := m.provider.ChainID(ctx)
	if err != nil {
		m.log.Warnw("chain id unavailable", "err", err)
		return nil
	}
	return id
}

func (m *Manager) subscribe() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	if m.subscribed {
		return
	}

	accountsID, err := m.provider.On(provider.EventAccountsChanged, provider.AccountsHandler(m.handleAccounts))
	if err != nil {
		m.log.Errorw("subscribing to accountsChanged", "err", err)
		return
	}
	chainID, err := m.provider.On(provider.EventChainChanged, provider.ChainHandler(m.handleChain))
	if err != nil {
		m.log.Errorw("subscribing to chainChanged", "err", err)
		_ = m.provider.RemoveListener(provider.EventAccountsChanged, accountsID)
		return
	}
	m.accountsID, m.chainID, m.subscribed = accountsID, chainID, true
}

func (m *Manager) unsubscribe() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	if !m.subscribed || m.provider == nil {
		return
	}
	if err := m.provider.RemoveListener(provider.EventAccountsChanged, m.accountsID); err != nil {
		m.log.Warnw("removing accountsChanged listener", "err", err)
	}
	if err := m.provider.RemoveListener(provider.EventChainChanged, m.chainID); err != nil {
		m.log.Warnw("removing chainChanged listener", "err", err)
	}
	m.subscribed = false
}

func (m *Manager) transition(next func(prev State) State) State {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	prev := *m.state.Load()
	s := next(prev)
	m.state.Store(&s)
	if s.Equal(prev) {
		return s
	}
	m.log.Debugw("state", "from", prev.String(), "to", s.String())

	m.listenerMu.Lock()
	handlers := make([]func(State), 0, len(m.onChange))
	for _, fn := range m.onChange {
		handlers = append(handlers, fn)
	}
	m.listenerMu.Unlock()
	for _, fn := range handlers {
		fn(s)
	}
	return s
}
