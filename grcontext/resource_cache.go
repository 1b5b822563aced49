// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package grcontext

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggctx/driver"
)

// DefaultCacheLimit is the default resource cache budget (256 MB).
const DefaultCacheLimit uint64 = 256 << 20

// CacheStats contains resource cache statistics.
type CacheStats struct {
	// LimitBytes is the advisory budget.
	LimitBytes uint64

	// UsedBytes is the memory held by all tracked resources.
	UsedBytes uint64

	// PurgeableBytes is the part of UsedBytes no surface is using.
	PurgeableBytes uint64

	// Resources is the number of tracked resources.
	Resources int

	// Purged is the total number of resources released by cleanup.
	Purged uint64
}

// String returns a human-readable summary.
func (s CacheStats) String() string {
	return fmt.Sprintf("Cache[%d/%d MB used, %d MB purgeable, %d resources, %d purged]",
		s.UsedBytes/(1024*1024),
		s.LimitBytes/(1024*1024),
		s.PurgeableBytes/(1024*1024),
		s.Resources,
		s.Purged)
}

// scratchKey identifies interchangeable render targets.
type scratchKey struct {
	width   int
	height  int
	format  gputypes.TextureFormat
	samples int
}

func keyOf(desc driver.TargetDesc) scratchKey {
	samples := desc.SampleCount
	if samples < 1 {
		samples = 1
	}
	return scratchKey{width: desc.Width, height: desc.Height, format: desc.Format, samples: samples}
}

// cacheEntry tracks a resource with LRU information.
type cacheEntry struct {
	target    driver.Target
	key       scratchKey
	sizeBytes uint64
	lastUsed  time.Time
	purgeable bool
	node      *lruNode
}

// ResourceCache tracks budgeted GPU render targets.
//
// Targets in use by a surface are locked. Releasing one makes it a
// purgeable scratch resource that a later allocation with the same key may
// reuse. The limit is advisory: allocation never fails because of it, and
// purgeable resources over the limit are only released by PurgeToLimit,
// PurgeUnusedSince or PurgeAll.
type ResourceCache struct {
	limit     uint64
	usedBytes uint64
	purgeable uint64

	entries map[driver.Target]*cacheEntry

	// lru is ordered by lastUsed, most recent first.
	lru lruList

	purged uint64
	now    func() time.Time
}

func newResourceCache(limit uint64, now func() time.Time) *ResourceCache {
	if now == nil {
		now = time.Now
	}
	return &ResourceCache{
		limit:   limit,
		entries: make(map[driver.Target]*cacheEntry),
		now:     now,
	}
}

// Limit returns the advisory budget in bytes.
func (c *ResourceCache) Limit() uint64 { return c.limit }

// SetLimit updates the advisory budget. Nothing is released until the next
// cleanup call.
func (c *ResourceCache) SetLimit(bytes uint64) { c.limit = bytes }

// Usage returns the bytes held by all tracked resources.
func (c *ResourceCache) Usage() uint64 { return c.usedBytes }

// Stats returns current cache statistics.
func (c *ResourceCache) Stats() CacheStats {
	return CacheStats{
		LimitBytes:     c.limit,
		UsedBytes:      c.usedBytes,
		PurgeableBytes: c.purgeable,
		Resources:      len(c.entries),
		Purged:         c.purged,
	}
}

// insert tracks t as locked.
func (c *ResourceCache) insert(t driver.Target, key scratchKey) {
	e := &cacheEntry{
		target:    t,
		key:       key,
		sizeBytes: t.SizeBytes(),
		lastUsed:  c.now(),
	}
	e.node = c.lru.PushFront(e)
	c.entries[t] = e
	c.usedBytes += e.sizeBytes
}

// findScratch locks and returns the most recently used purgeable resource
// matching key.
func (c *ResourceCache) findScratch(key scratchKey) (driver.Target, bool) {
	for n := c.lru.head; n != nil; n = n.next {
		e := n.entry
		if !e.purgeable || e.key != key {
			continue
		}
		e.purgeable = false
		c.purgeable -= e.sizeBytes
		e.lastUsed = c.now()
		c.lru.MoveToFront(n)
		return e.target, true
	}
	return nil, false
}

// unlock marks t purgeable. Untracked targets are destroyed.
func (c *ResourceCache) unlock(t driver.Target) {
	e, ok := c.entries[t]
	if !ok {
		t.Destroy()
		return
	}
	if e.purgeable {
		return
	}
	e.purgeable = true
	e.lastUsed = c.now()
	c.purgeable += e.sizeBytes
	c.lru.MoveToFront(e.node)
}

// touch updates the last-used time of t.
func (c *ResourceCache) touch(t driver.Target) {
	e, ok := c.entries[t]
	if !ok {
		return
	}
	e.lastUsed = c.now()
	c.lru.MoveToFront(e.node)
}

func (c *ResourceCache) remove(e *cacheEntry) {
	c.lru.Remove(e.node)
	delete(c.entries, e.target)
	c.usedBytes -= e.sizeBytes
	if e.purgeable {
		c.purgeable -= e.sizeBytes
	}
}

// purgeWhere releases purgeable resources, least recently used first,
// until stop returns true. It returns the number released.
func (c *ResourceCache) purgeWhere(stop func(e *cacheEntry) bool) int {
	n := 0
	for node := c.lru.tail; node != nil; {
		prev := node.prev
		e := node.entry
		if stop(e) {
			break
		}
		if e.purgeable {
			c.remove(e)
			e.target.Destroy()
			n++
		}
		node = prev
	}
	c.purged += uint64(n)
	return n
}

// PurgeAll releases every purgeable resource.
func (c *ResourceCache) PurgeAll() int {
	return c.purgeWhere(func(*cacheEntry) bool { return false })
}

// PurgeToLimit releases least recently used purgeable resources until usage
// is within the limit.
func (c *ResourceCache) PurgeToLimit() int {
	return c.purgeWhere(func(*cacheEntry) bool { return c.usedBytes <= c.limit })
}

// PurgeUnusedSince releases purgeable resources not used for at least d.
func (c *ResourceCache) PurgeUnusedSince(d time.Duration) int {
	cutoff := c.now().Add(-d)
	// The list is ordered by lastUsed, so the walk stops at the first
	// resource newer than the cutoff.
	return c.purgeWhere(func(e *cacheEntry) bool { return e.lastUsed.After(cutoff) })
}

// close destroys every tracked resource, locked ones included.
func (c *ResourceCache) close() {
	for node := c.lru.head; node != nil; node = node.next {
		node.entry.target.Destroy()
	}
	c.entries = make(map[driver.Target]*cacheEntry)
	c.lru.Clear()
	c.usedBytes = 0
	c.purgeable = 0
}
