// Copyright (c) 2026 Ersel Seyit. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cds provides concurrent data structures for multi-producer
// multi-consumer workloads.
//
// The package offers three components:
//
//   - Queue: an unbounded lock-free FIFO queue
//   - Map: a lock-free hash map with per-bucket chains
//   - Pool: a fixed-size worker pool built on Queue
//
// # Quick Start
//
//	q := cds.NewQueue[Event]()
//	m := cds.NewMap[string, int]()
//	p := cds.NewPool(8)
//	defer p.Close()
//
// # Queue
//
// Queue is a linked FIFO with a dummy head. Enqueue never blocks and never
// fails; Dequeue is non-blocking and returns [ErrWouldBlock] when the queue
// is empty:
//
//	q := cds.NewQueue[int]()
//
//	v := 42
//	_ = q.Enqueue(&v)
//
//	elem, err := q.Dequeue()
//	if cds.IsWouldBlock(err) {
//	    // Queue is empty - try again later
//	}
//
// Enqueue linearizes at the atomic tail exchange; the chain order between
// concurrent producers is the order in which their exchanges completed.
// Dequeue linearizes at the head compare-and-swap, or at the observation of
// a nil successor when the queue is empty.
//
// # Map
//
// Map is a fixed-table hash map with one atomic chain head per bucket. All
// operations are non-blocking; writers retry on contention, readers never
// wait:
//
//	m := cds.NewMap[string, int]()
//
//	m.Insert("a", 1)        // true: key was absent
//	m.Insert("a", 2)        // false: value holder replaced
//	v, ok := m.Get("a")     // 2, true
//	m.Erase("a")            // true
//	m.Contains("a")         // false
//
// The bucket count is fixed at construction (default 1024) and the table
// never resizes. Key distribution is the caller's concern; chains grow
// without bound under a poor hash. Removed entries are tombstoned first and
// physically unlinked second, so lookups observe removal immediately even
// while cleanup is in flight.
//
// Configuration uses options:
//
//	m := cds.NewMap[string, int](
//	    cds.WithBuckets[string](4096),
//	    cds.WithHasher(myHash),
//	)
//
// # Pool
//
// Pool runs a fixed set of worker goroutines that pull work units from a
// shared Queue. Submit is a package-level generic function because the
// result type varies per call site:
//
//	p := cds.NewPool(8)
//	defer p.Close()
//
//	r, err := cds.Submit(p, func() (int, error) {
//	    return compute(), nil
//	})
//	if err != nil {
//	    // pool is shutting down
//	}
//	v, err := r.Wait()
//
// A work unit that returns an error or panics delivers that failure to its
// [Result]; the worker survives. Wait drains the queue as a barrier: every
// unit submitted before Wait began has completed when Wait returns. Close
// waits, stops the workers, and joins them; Submit after Close begins fails
// with [ErrPoolClosed].
//
// # Memory Reclamation
//
// Queue nodes and map entries are shared across goroutines and may still be
// observed by readers after they have been unlinked. Retired cells pass
// through an epoch-based reclamation domain (internal/epoch): operations pin
// the domain on entry, retire unlinked cells, and the domain releases a
// retirement batch only after every operation pinned in its epoch has
// finished. This bounds how long unlinked cells stay referenced while
// guaranteeing that no in-flight operation observes a released cell.
//
// # Error Handling
//
// Dequeue on an empty queue returns [ErrWouldBlock], a control flow signal
// sourced from [code.hybscloud.com/iox] for ecosystem consistency:
//
//	backoff := iox.Backoff{}
//	for {
//	    elem, err := q.Dequeue()
//	    if err == nil {
//	        backoff.Reset()
//	        process(elem)
//	        continue
//	    }
//	    if !cds.IsWouldBlock(err) {
//	        return err // Unexpected error
//	    }
//	    backoff.Wait()
//	}
//
// Absent keys are not errors: Get and Contains report false, and Erase of
// an absent key reports false.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives and
// sync/atomic operations, but cannot observe happens-before relationships
// established through the explicit memory orderings of
// [code.hybscloud.com/atomix]. Stress tests that hammer those paths are
// skipped under the race detector via the RaceEnabled constant.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for integer atomics with explicit memory
// ordering, and [code.hybscloud.com/spin] for CPU pause instructions in
// retry loops.
package cds
