// Package eventbus is the in-process broadcast used to tell balance views
// that the wallet changed.
package eventbus

import (
	"sync"
	"time"

	"voltage_wallet_demo/models"
)

// WalletRefresh is published after a payment completes or when a user asks
// for fresh balances.
const WalletRefresh = "wallet:refresh"

type Event struct {
	Topic     string
	PaymentID string
	Status    models.PaymentStatus
	At        time.Time
}

const subscriberBuffer = 32

// Bus delivers every published event to every subscriber. Publish never
// blocks: a subscriber whose buffer is full misses the event.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

func New() *Bus {
	return &Bus{
		subscribers: make(map[chan Event]struct{}),
	}
}

func (b *Bus) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe returns the event channel and a func that unsubscribes and
// closes it. Calling the func more than once is safe.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, ch)
			close(ch)
			b.mu.Unlock()
		})
	}
	return ch, unsubscribe
}
