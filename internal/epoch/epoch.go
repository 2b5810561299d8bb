// Copyright (c) 2026 Ersel Seyit. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package epoch

import (
	"runtime"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
	"github.com/gammazero/deque"
)

// epochs is the number of retirement bags per slot. A bag from epoch e is
// reused at epoch e+3, by which time the global epoch is at least e+2 and
// the bag's contents are releasable.
const epochs = 3

// collectThreshold is the number of retirements a slot accumulates before
// its owner attempts an epoch advance on unpin.
const collectThreshold = 64

// minSlots keeps small domains usable when many goroutines outnumber Ps.
const minSlots = 64

// Domain is an epoch-based reclamation domain.
//
// A Domain is typically owned by one data structure. Operations bracket
// their shared-memory access with Pin/Unpin and hand unlinked cells to
// Guard.Retire.
type Domain struct {
	_      pad
	global atomix.Uint64
	_      pad
	slots  []slot
}

// slot field order matters: epoch (8-byte aligned) leads so the atomic
// header packs into 12 bytes and padShort fills the rest of the line.
type slot struct {
	epoch  atomix.Uint64
	active atomix.Int32
	_      padShort

	// Owner-only state: written only between a successful acquisition of
	// active and its release.
	retires  uint64
	bags     [epochs]deque.Deque[any]
	bagEpoch [epochs]uint64
}

// Guard represents a pinned operation. The zero value is not a valid guard.
//
// A Guard is a value, not a pointer: it lives on the operation's stack and
// holds no state beyond the slot it owns.
type Guard struct {
	d *Domain
	s *slot
	e uint64
}

// NewDomain creates a reclamation domain with the given number of
// participant slots. Zero or negative selects a default scaled from
// GOMAXPROCS. The slot count rounds up to the next power of 2.
//
// Pinning spins when all slots are held, so the slot count bounds the
// number of concurrently pinned operations, not the number of goroutines
// that may use the domain.
func NewDomain(participants int) *Domain {
	if participants <= 0 {
		participants = 8 * runtime.GOMAXPROCS(0)
		if participants < minSlots {
			participants = minSlots
		}
	}
	n := roundToPow2(participants)
	d := &Domain{slots: make([]slot, n)}
	d.global.StoreRelaxed(1)
	return d
}

// Pin acquires a participant slot and records the current global epoch,
// keeping the global epoch from advancing more than one past it until
// Unpin. Pin spins only when every slot is held.
func (d *Domain) Pin() Guard {
	sw := spin.Wait{}
	for {
		for i := range d.slots {
			s := &d.slots[i]
			if s.active.LoadRelaxed() != 0 {
				continue
			}
			if !s.active.CompareAndSwapAcqRel(0, 1) {
				continue
			}
			// Publish the observed epoch, then re-read the global: an
			// advance between the load and the publish would otherwise
			// leave this slot pinned in a stale epoch unnoticed.
			e := d.global.LoadAcquire()
			for {
				s.epoch.StoreRelease(e)
				g := d.global.LoadAcquire()
				if g == e {
					return Guard{d: d, s: s, e: e}
				}
				e = g
			}
		}
		sw.Once()
	}
}

// Retire hands an unlinked cell to the domain. The domain keeps x
// referenced until the global epoch has advanced at least two past the
// current one; after that the reference is dropped and the collector
// reclaims the cell.
//
// Retire may only be called between Pin and Unpin on the same guard.
func (g Guard) Retire(x any) {
	i := g.e % epochs
	b := &g.s.bags[i]
	if g.s.bagEpoch[i] != g.e {
		// Contents are at least three epochs old: releasable.
		b.Clear()
		g.s.bagEpoch[i] = g.e
	}
	b.PushBack(x)
	g.s.retires++
}

// Unpin releases the guard's slot. Periodically it also attempts to advance
// the global epoch so retired cells become releasable.
func (g Guard) Unpin() {
	s := g.s
	collect := s.retires >= collectThreshold
	if collect {
		s.retires = 0
	}
	s.active.StoreRelease(0)
	if collect {
		g.d.tryAdvance()
	}
}

// tryAdvance bumps the global epoch if every pinned slot has observed the
// current value. Failure is benign; a later unpin retries.
func (d *Domain) tryAdvance() {
	g := d.global.LoadAcquire()
	for i := range d.slots {
		s := &d.slots[i]
		if s.active.LoadAcquire() != 0 && s.epoch.LoadAcquire() != g {
			return
		}
	}
	d.global.CompareAndSwapAcqRel(g, g+1)
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after the slot's atomic fields.
type padShort [64 - 12]byte
