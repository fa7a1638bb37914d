package provider

import (
	"fmt"
	"math/big"
	"sync"

	evbus "github.com/asaskevich/EventBus"
	"github.com/ethereum/go-ethereum/common"
)

type listener struct {
	id    ListenerID
	topic string
	fn    any
}

// Emitter dispatches provider events through an EventBus. Every listener
// gets its own bus topic so RemoveListener removes exactly that handler.
//
// Emit delivers to listeners one at a time in registration order and returns
// after all of them ran. Handlers may call On/RemoveListener but must not
// call Emit.
type Emitter struct {
	bus evbus.Bus

	mu        sync.Mutex
	nextID    ListenerID
	listeners map[string][]listener

	emitMu sync.Mutex
}

// NewEmitter returns an emitter with no listeners.
func NewEmitter() *Emitter {
	return &Emitter{
		bus:       evbus.New(),
		listeners: make(map[string][]listener),
	}
}

// On registers handler for event. accountsChanged takes an AccountsHandler
// (or a plain func([]common.Address)); chainChanged takes a ChainHandler.
func (e *Emitter) On(event string, handler any) (ListenerID, error) {
	if err := checkHandler(event, handler); err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	l := listener{id: e.nextID, topic: fmt.Sprintf("%s#%d", event, e.nextID), fn: handler}
	if err := e.bus.SubscribeAsync(l.topic, l.fn, false); err != nil {
		return 0, err
	}
	e.listeners[event] = append(e.listeners[event], l)
	return l.id, nil
}

// RemoveListener unregisters a handler returned by On.
func (e *Emitter) RemoveListener(event string, id ListenerID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ls := e.listeners[event]
	for i, l := range ls {
		if l.id != id {
			continue
		}
		e.listeners[event] = append(ls[:i:i], ls[i+1:]...)
		return e.bus.Unsubscribe(l.topic, l.fn)
	}
	return fmt.Errorf("%w: %s #%d", ErrUnknownListener, event, id)
}

// ListenerCount returns the number of handlers registered for event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[event])
}

// EmitAccountsChanged delivers accounts to every accountsChanged listener.
func (e *Emitter) EmitAccountsChanged(accounts []common.Address) {
	e.emit(EventAccountsChanged, accounts)
}

// EmitChainChanged delivers id to every chainChanged listener.
func (e *Emitter) EmitChainChanged(id *big.Int) {
	e.emit(EventChainChanged, id)
}

func (e *Emitter) emit(event string, arg any) {
	e.emitMu.Lock()
	defer e.emitMu.Unlock()

	e.mu.Lock()
	targets := append([]listener(nil), e.listeners[event]...)
	e.mu.Unlock()

	for _, l := range targets {
		// Async delivery keeps the bus lock free while the handler runs.
		e.bus.Publish(l.topic, arg)
		e.bus.WaitAsync()
	}
}

func checkHandler(event string, handler any) error {
	switch event {
	case EventAccountsChanged:
		switch handler.(type) {
		case AccountsHandler, func([]common.Address):
			return nil
		}
	case EventChainChanged:
		switch handler.(type) {
		case ChainHandler, func(*big.Int):
			return nil
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	return fmt.Errorf("%w %s: %T", ErrHandlerType, event, handler)
}
