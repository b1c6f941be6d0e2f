// Package notify provides change notification for configuration updates.
//
// Components subscribe to a Notifier and receive an explicit Change value when
// the configuration record is re-applied, instead of re-reading shared state.
// Delivery is synchronous on the publishing goroutine; a panicking observer is
// isolated from the other observers and from the publisher.
package notify

import (
	"sort"
	"sync"
)

// ChangeType represents the type of configuration change.
type ChangeType int

const (
	// ChangeSet indicates a single key was written to the durable record.
	ChangeSet ChangeType = iota

	// ChangeReload indicates the entire configuration was re-applied.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change represents a configuration change event.
type Change[T any] struct {
	// Type is the type of change.
	Type ChangeType

	// Key is the record key written by a set. Empty for reload events.
	Key string

	// Previous is the configuration before the change.
	Previous T

	// Current is the configuration after the change.
	Current T

	// Source identifies where the change came from.
	Source string
}

// Observer is called when configuration changes occur.
type Observer[T any] func(change Change[T])

// Subscription represents an active observer subscription.
type Subscription[T any] struct {
	id       uint64
	notifier *Notifier[T]
}

// Unsubscribe removes this subscription. Safe to call more than once.
func (s *Subscription[T]) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier manages configuration change subscriptions.
type Notifier[T any] struct {
	mu sync.RWMutex

	observers map[uint64]Observer[T]
	nextID    uint64

	// OnPanic is called with the recovered value when an observer panics.
	onPanic func(recovered any)

	closed bool
}

// Option configures a Notifier.
type Option[T any] func(*Notifier[T])

// WithPanicHandler sets the function called when an observer panics.
func WithPanicHandler[T any](fn func(recovered any)) Option[T] {
	return func(n *Notifier[T]) {
		n.onPanic = fn
	}
}

// New creates a new Notifier.
func New[T any](opts ...Option[T]) *Notifier[T] {
	n := &Notifier[T]{
		observers: make(map[uint64]Observer[T]),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscribe registers an observer for all changes.
func (n *Notifier[T]) Subscribe(observer Observer[T]) *Subscription[T] {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.observers[id] = observer

	return &Subscription[T]{id: id, notifier: n}
}

// Notify delivers a change to every observer in subscription order.
func (n *Notifier[T]) Notify(change Change[T]) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	ids := make([]uint64, 0, len(n.observers))
	for id := range n.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	observers := make([]Observer[T], 0, len(ids))
	for _, id := range ids {
		observers = append(observers, n.observers[id])
	}
	n.mu.RUnlock()

	// Call observers outside the lock
	for _, obs := range observers {
		n.deliver(obs, change)
	}
}

// NotifyReload is a convenience method for reload events.
func (n *Notifier[T]) NotifyReload(previous, current T, source string) {
	n.Notify(Change[T]{
		Type:     ChangeReload,
		Previous: previous,
		Current:  current,
		Source:   source,
	})
}

// NotifySet is a convenience method for set changes.
func (n *Notifier[T]) NotifySet(key string, current T, source string) {
	n.Notify(Change[T]{
		Type:     ChangeSet,
		Key:      key,
		Previous: current,
		Current:  current,
		Source:   source,
	})
}

// Len returns the number of active subscriptions.
func (n *Notifier[T]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

// Close drops all observers. Further notifications are ignored.
// It is safe to call Close multiple times.
func (n *Notifier[T]) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	n.observers = make(map[uint64]Observer[T])
}

func (n *Notifier[T]) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

func (n *Notifier[T]) deliver(obs Observer[T], change Change[T]) {
	defer func() {
		if r := recover(); r != nil && n.onPanic != nil {
			n.onPanic(r)
		}
	}()
	obs(change)
}
