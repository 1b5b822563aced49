// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package capi

import "sync"

// Handle is an opaque object reference handed across the boundary.
// Zero is never issued and means "no object".
type Handle uintptr

// table maps handles to Go objects. Handles are never reused within one
// table, so a stale handle can only miss.
type table struct {
	mu      sync.RWMutex
	objects map[Handle]any
	next    Handle
}

func newTable() *table {
	return &table{objects: make(map[Handle]any), next: 1}
}

// register stores v and returns its handle.
func (t *table) register(v any) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.next
	t.next++
	t.objects[h] = v
	return h
}

// lookup returns the object for h, or nil.
func (t *table) lookup(h Handle) any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.objects[h]
}

// unregister removes h and returns what it referenced.
func (t *table) unregister(h Handle) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.objects[h]
	delete(t.objects, h)
	return v, ok
}

// count returns the number of live handles.
func (t *table) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.objects)
}

// lookupAs returns the object for h if it has type T.
func lookupAs[T any](t *table, h Handle) (T, bool) {
	v, ok := t.lookup(h).(T)
	return v, ok
}
