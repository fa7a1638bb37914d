package provider_test

import (
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3reg/internal/provider"
)

var (
	alice = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	bob   = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

func TestEmitterDeliversInOrder(t *testing.T) {
	e := provider.NewEmitter()

	var got [][]common.Address
	_, err := e.On(provider.EventAccountsChanged, func(a []common.Address) { got = append(got, a) })
	require.NoError(t, err)

	e.EmitAccountsChanged([]common.Address{alice})
	e.EmitAccountsChanged([]common.Address{bob})
	e.EmitAccountsChanged(nil)

	require.Len(t, got, 3)
	assert.Equal(t, alice, got[0][0])
	assert.Equal(t, bob, got[1][0])
	assert.Empty(t, got[2])
}

func TestEmitterRemoveListenerRemovesOnlyThatHandler(t *testing.T) {
	e := provider.NewEmitter()

	var first, second int
	mk := func(n *int) provider.ChainHandler { return func(*big.Int) { *n++ } }

	id1, err := e.On(provider.EventChainChanged, mk(&first))
	require.NoError(t, err)
	_, err = e.On(provider.EventChainChanged, mk(&second))
	require.NoError(t, err)
	assert.Equal(t, 2, e.ListenerCount(provider.EventChainChanged))

	require.NoError(t, e.RemoveListener(provider.EventChainChanged, id1))
	e.EmitChainChanged(big.NewInt(5))

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 1, e.ListenerCount(provider.EventChainChanged))
}

func TestEmitterRemoveUnknown(t *testing.T) {
	e := provider.NewEmitter()
	err := e.RemoveListener(provider.EventChainChanged, 99)
	assert.ErrorIs(t, err, provider.ErrUnknownListener)
}

func TestEmitterRejectsBadHandlers(t *testing.T) {
	e := provider.NewEmitter()

	_, err := e.On("message", func(string) {})
	assert.ErrorIs(t, err, provider.ErrUnknownEvent)

	_, err = e.On(provider.EventChainChanged, func([]common.Address) {})
	assert.ErrorIs(t, err, provider.ErrHandlerType)

	_, err = e.On(provider.EventAccountsChanged, "not a func")
	assert.ErrorIs(t, err, provider.ErrHandlerType)
}

func TestEmitterHandlerMayUnsubscribeItself(t *testing.T) {
	e := provider.NewEmitter()

	var id provider.ListenerID
	calls := 0
	id, err := e.On(provider.EventChainChanged, func(*big.Int) {
		calls++
		assert.NoError(t, e.RemoveListener(provider.EventChainChanged, id))
	})
	require.NoError(t, err)

	e.EmitChainChanged(big.NewInt(1))
	e.EmitChainChanged(big.NewInt(2))
	assert.Equal(t, 1, calls)
}

func TestEmitterConcurrentEmit(t *testing.T) {
	e := provider.NewEmitter()

	var mu sync.Mutex
	total := 0
	_, err := e.On(provider.EventChainChanged, func(*big.Int) {
		mu.Lock()
		total++
		mu.Unlock()
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e.EmitChainChanged(big.NewInt(int64(i)))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, total)
}
