// Package watcher implements the in-process change-notification mechanism
// for vault entities. Delivery is synchronous, on the caller's goroutine,
// in subscription order; there is no persistence and no cross-process
// delivery.
package watcher

import "sync"

// Listener receives entity mutation events from a ContentWatcher.
type Listener[T any] interface {
	// OnEntryInserted is called after an entity was added.
	OnEntryInserted(entity T)

	// OnEntryRemoved is called after an entity was removed.
	OnEntryRemoved(entity T)

	// OnEntryChanged is called after an entity was updated.
	OnEntryChanged(oldEntity, newEntity T)
}

// ContentWatcher fans out mutation events to subscribed listeners.
// The zero value is not usable; construct with New.
type ContentWatcher[T any] struct {
	mu        sync.Mutex
	listeners []Listener[T]
}

func New[T any]() *ContentWatcher[T] {
	return &ContentWatcher[T]{}
}

// Subscribe registers a listener. Subscribing the same listener twice
// delivers events twice.
func (w *ContentWatcher[T]) Subscribe(l Listener[T]) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, l)
}

// Unsubscribe removes the first registration of the given listener.
func (w *ContentWatcher[T]) Unsubscribe(l Listener[T]) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, existing := range w.listeners {
		if existing == l {
			w.listeners = append(w.listeners[:i], w.listeners[i+1:]...)
			return
		}
	}
}

// NotifyEntryInserted delivers an insertion event to every listener.
func (w *ContentWatcher[T]) NotifyEntryInserted(entity T) {
	for _, l := range w.snapshot() {
		l.OnEntryInserted(entity)
	}
}

// NotifyEntryRemoved delivers a removal event to every listener.
func (w *ContentWatcher[T]) NotifyEntryRemoved(entity T) {
	for _, l := range w.snapshot() {
		l.OnEntryRemoved(entity)
	}
}

// NotifyEntryChanged delivers a change event to every listener.
func (w *ContentWatcher[T]) NotifyEntryChanged(oldEntity, newEntity T) {
	for _, l := range w.snapshot() {
		l.OnEntryChanged(oldEntity, newEntity)
	}
}

func (w *ContentWatcher[T]) snapshot() []Listener[T] {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Listener[T], len(w.listeners))
	copy(out, w.listeners)
	return out
}
