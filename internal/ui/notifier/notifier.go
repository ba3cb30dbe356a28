// Package notifier tells the open dashboard pages that new coverage data was
// stored.
package notifier

import "sync"

// Notifier fans a data-changed ping out to every subscriber. A ping carries
// no payload; subscribers re-read what they show. Pings to a subscriber that
// has not consumed the previous one are coalesced.
type Notifier struct {
	mu          sync.Mutex
	subscribers map[*subscription]struct{}
}

type subscription struct {
	ch   chan struct{}
	once sync.Once
}

// New creates a Notifier without subscribers.
func New() *Notifier {
	return &Notifier{subscribers: make(map[*subscription]struct{})}
}

// Subscribe registers a subscriber. The returned function unsubscribes and
// closes the channel; it may be called more than once.
func (n *Notifier) Subscribe() (<-chan struct{}, func()) {
	sub := &subscription{ch: make(chan struct{}, 1)}

	n.mu.Lock()
	n.subscribers[sub] = struct{}{}
	n.mu.Unlock()

	return sub.ch, func() {
		sub.once.Do(func() {
			n.mu.Lock()
			delete(n.subscribers, sub)
			n.mu.Unlock()
			close(sub.ch)
		})
	}
}

// Broadcast pings every subscriber without blocking and returns the number of
// subscribers.
func (n *Notifier) Broadcast() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	for sub := range n.subscribers {
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
	return len(n.subscribers)
}

// Len returns the number of subscribers.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subscribers)
}
