// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package grcontext

// lruNode links one cache entry into the recency list.
type lruNode struct {
	entry *cacheEntry
	prev  *lruNode
	next  *lruNode
}

// lruList orders cache entries by use. The head is the most recently
// used, the tail the least.
type lruList struct {
	head *lruNode
	tail *lruNode
	len  int
}

// Len returns the number of nodes in the list.
func (l *lruList) Len() int { return l.len }

// PushFront links e as most recently used and returns its node.
func (l *lruList) PushFront(e *cacheEntry) *lruNode {
	node := &lruNode{entry: e}
	l.linkFront(node)
	return node
}

// MoveToFront marks node as most recently used.
func (l *lruList) MoveToFront(node *lruNode) {
	if node == nil || node == l.head {
		return
	}
	l.unlink(node)
	l.linkFront(node)
}

// Remove unlinks node.
func (l *lruList) Remove(node *lruNode) {
	if node == nil {
		return
	}
	l.unlink(node)
}

// Clear drops every node.
func (l *lruList) Clear() {
	l.head = nil
	l.tail = nil
	l.len = 0
}

func (l *lruList) linkFront(node *lruNode) {
	node.prev = nil
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.len++
}

// unlink removes node and clears its links.
func (l *lruList) unlink(node *lruNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
	l.len--
}
