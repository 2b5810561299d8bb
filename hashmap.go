// Copyright (c) 2026 Ersel Seyit. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds

import (
	"hash/maphash"
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"github.com/ErselSeyit/concurrent-data-structures/internal/epoch"
)

// Map is a lock-free hash map with separate chaining and per-bucket
// concurrency.
//
// The table is a fixed array of buckets chosen at construction; it never
// resizes. Each bucket is an atomic head pointer to a singly-linked chain
// of entries, padded to its own cache line. Readers walk chains with atomic
// loads and never wait; writers publish and unlink with compare-and-swap
// retry loops.
//
// Removal is a two-step protocol: the eraser first claims the entry by a
// tombstone CAS, making it invisible to every lookup, then physically
// unlinks it from the chain. Unlinked entries and replaced value holders
// are retired through an epoch domain and released only once no concurrent
// operation can still observe them.
type Map[K comparable, V any] struct {
	buckets []mbucket[K, V]
	mask    uint64
	hasher  func(K) uint64
	reclaim *epoch.Domain
	_       pad
	size    atomix.Int64
	_       pad
}

// mbucket is an atomic chain head on its own cache line.
type mbucket[K comparable, V any] struct {
	head atomic.Pointer[mentry[K, V]]
	_    padPtr
}

// mentry is a chain cell. The value lives behind an atomically swappable
// holder so that same-key inserts replace it without touching the chain.
// dead is the tombstone: 0 live, 1 logically removed.
type mentry[K comparable, V any] struct {
	key  K
	hash uint64
	val  atomic.Pointer[V]
	next atomic.Pointer[mentry[K, V]]
	dead atomix.Int32
}

// NewMap creates a map with the default bucket count (1024) and a
// hash/maphash-based hasher seeded per map. Both are configurable through
// [MapOption] values.
func NewMap[K comparable, V any](opts ...MapOption[K]) *Map[K, V] {
	cfg := mapConfig[K]{buckets: defaultBuckets}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.hasher == nil {
		seed := maphash.MakeSeed()
		cfg.hasher = func(k K) uint64 {
			return maphash.Comparable(seed, k)
		}
	}
	n := uint64(roundToPow2(cfg.buckets))
	return &Map[K, V]{
		buckets: make([]mbucket[K, V], n),
		mask:    n - 1,
		hasher:  cfg.hasher,
		reclaim: epoch.NewDomain(0),
	}
}

// Insert adds or replaces the value for key. It reports true when the key
// was absent (a new entry was created) and false when an existing entry's
// value holder was replaced.
//
// Two concurrent inserts of a previously absent key linearize so that one
// reports true and the other false; the surviving value is the one whose
// publication completed last.
func (m *Map[K, V]) Insert(key K, value V) bool {
	h := m.hasher(key)
	b := &m.buckets[h&m.mask]
	g := m.reclaim.Pin()
	defer g.Unpin()

	holder := &value
	if e := m.find(b, h, key); e != nil {
		g.Retire(e.val.Swap(holder))
		return false
	}

	n := &mentry[K, V]{key: key, hash: h}
	n.val.Store(holder)
	sw := spin.Wait{}
	for {
		head := b.head.Load()
		n.next.Store(head)
		if b.head.CompareAndSwap(head, n) {
			break
		}
		// Contention: another writer changed the chain. It may have been a
		// racing insert of this very key, so look again before retrying.
		if e := m.find(b, h, key); e != nil {
			g.Retire(e.val.Swap(holder))
			return false
		}
		sw.Once()
	}
	m.size.AddAcqRel(1)

	// A racing insert of the same key can have published its own entry
	// between our chain walk and our CAS. Re-walk and resolve: the entry
	// nearer the head is the later publication and wins; older duplicates
	// past our own entry are tombstoned and unlinked here.
	if m.sweepOlderDuplicates(b, n, g) {
		return false
	}
	return true
}

// sweepOlderDuplicates tombstones and unlinks live same-key entries that
// sit beyond n in its chain. It reports whether any were removed, in which
// case n superseded an existing entry and the insert counts as an update.
func (m *Map[K, V]) sweepOlderDuplicates(b *mbucket[K, V], n *mentry[K, V], g epoch.Guard) bool {
	removed := false
	past := false
	for e := b.head.Load(); e != nil; e = e.next.Load() {
		if e == n {
			past = true
			continue
		}
		if !past || e.hash != n.hash || e.key != n.key {
			continue
		}
		if e.dead.LoadAcquire() != 0 {
			continue
		}
		if e.dead.CompareAndSwapAcqRel(0, 1) {
			m.unlink(b, e)
			m.size.AddAcqRel(-1)
			g.Retire(e.val.Load())
			g.Retire(e)
			removed = true
		}
	}
	return removed
}

// Get returns a snapshot copy of the current value for key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	h := m.hasher(key)
	b := &m.buckets[h&m.mask]
	g := m.reclaim.Pin()
	e := m.find(b, h, key)
	if e == nil {
		g.Unpin()
		var zero V
		return zero, false
	}
	v := *e.val.Load()
	g.Unpin()
	return v, true
}

// Contains reports whether a live entry for key exists.
func (m *Map[K, V]) Contains(key K) bool {
	h := m.hasher(key)
	b := &m.buckets[h&m.mask]
	g := m.reclaim.Pin()
	found := m.find(b, h, key) != nil
	g.Unpin()
	return found
}

// Erase removes the entry for key. It reports true iff the key was live at
// the linearization point, which is the successful tombstone CAS.
func (m *Map[K, V]) Erase(key K) bool {
	h := m.hasher(key)
	b := &m.buckets[h&m.mask]
	g := m.reclaim.Pin()
	defer g.Unpin()

	sw := spin.Wait{}
	for {
		e := m.find(b, h, key)
		if e == nil {
			return false
		}
		if e.dead.CompareAndSwapAcqRel(0, 1) {
			m.unlink(b, e)
			m.size.AddAcqRel(-1)
			g.Retire(e.val.Load())
			g.Retire(e)
			return true
		}
		// Another thread claimed this entry between our walk and the CAS;
		// search again from the head.
		sw.Once()
	}
}

// Size returns the live-entry count, up to transient skew from in-flight
// inserts and erases.
func (m *Map[K, V]) Size() int {
	n := m.size.LoadRelaxed()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Empty reports Size() == 0.
func (m *Map[K, V]) Empty() bool {
	return m.Size() == 0
}

// find walks the bucket chain for a live entry matching key. Tombstoned
// entries are invisible.
func (m *Map[K, V]) find(b *mbucket[K, V], h uint64, key K) *mentry[K, V] {
	for e := b.head.Load(); e != nil; e = e.next.Load() {
		if e.hash != h || e.key != key {
			continue
		}
		if e.dead.LoadAcquire() != 0 {
			continue
		}
		return e
	}
	return nil
}

// unlink removes a claimed (tombstoned) entry from its chain. A successful
// CAS is not proof of removal: the predecessor may itself have been
// unlinked concurrently, leaving e reachable through an older link. Each
// pass therefore re-walks from the head and retries until e is no longer
// reachable.
func (m *Map[K, V]) unlink(b *mbucket[K, V], e *mentry[K, V]) {
	sw := spin.Wait{}
	for {
		var prev *mentry[K, V]
		cur := b.head.Load()
		for cur != nil && cur != e {
			prev = cur
			cur = cur.next.Load()
		}
		if cur == nil {
			return
		}
		next := e.next.Load()
		if prev == nil {
			if b.head.CompareAndSwap(e, next) {
				continue
			}
		} else if prev.next.CompareAndSwap(e, next) {
			continue
		}
		sw.Once()
	}
}
