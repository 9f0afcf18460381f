package router

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-stomp/stomp/v3/frame"

	"github.com/rickgao/intraday-client/internal/subscription"
)

// Errors
var (
	ErrDuplicateSubscription = errors.New("duplicate subscription id")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
)

// defaultQueueCapacity is the initial ring size of a delivery queue.
const defaultQueueCapacity = 64

// FrameQueue is the delivery queue type owned by one subscription.
type FrameQueue = Queue[*frame.Frame]

type entry struct {
	sub   subscription.Subscription
	queue *FrameQueue
}

// Registry maps subscription ids to their delivery queues.
// All operations are serialized by a single mutex.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

// Register allocates a delivery queue for sub.
func (r *Registry) Register(sub subscription.Subscription) (*FrameQueue, error) {
	if sub.ID == "" {
		return nil, fmt.Errorf("register: empty subscription id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[sub.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSubscription, sub.ID)
	}

	q := NewQueue[*frame.Frame](defaultQueueCapacity)
	r.entries[sub.ID] = &entry{sub: sub, queue: q}
	return q, nil
}

// Unregister removes id and closes its queue. Frames already buffered stay
// available to the worker.
func (r *Registry) Unregister(id string) (subscription.Subscription, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()

	if !ok {
		return subscription.Subscription{}, fmt.Errorf("%w: %s", ErrSubscriptionNotFound, id)
	}

	e.queue.Close()
	return e.sub, nil
}

// UnregisterAll detaches every queue and discards its buffered frames.
// Returns the removed subscriptions and the number of dropped frames.
func (r *Registry) UnregisterAll() ([]subscription.Subscription, int) {
	r.mu.Lock()
	old := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	subs := make([]subscription.Subscription, 0, len(old))
	dropped := 0
	for _, e := range old {
		dropped += e.queue.Discard()
		subs = append(subs, e.sub)
	}
	return subs, dropped
}

// Lookup returns the queue registered under id.
func (r *Registry) Lookup(id string) (*FrameQueue, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.queue, true
}

// Len returns the number of registered subscriptions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
