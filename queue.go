// Copyright (c) 2026 Ersel Seyit. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds

import (
	"sync/atomic"

	"code.hybscloud.com/spin"

	"github.com/ErselSeyit/concurrent-data-structures/internal/epoch"
)

// Queue is an unbounded lock-free multi-producer multi-consumer FIFO.
//
// The queue is a singly-linked list with a dummy head: the head node's
// payload has already been handed out, and the oldest live element sits in
// head's successor. Enqueue exchanges the tail with the new node and then
// publishes the previous tail's next link; dequeue advances the head by
// compare-and-swap and moves the payload out of the new head.
//
// Between concurrent producers, chain order is the order in which their
// tail exchanges completed. Between concurrent consumers, the head CAS
// serializes; a loser retries against a fresh head. There is a short window
// after a producer's tail exchange and before its next-link publication in
// which the new element is not yet visible to consumers; a dequeue in that
// window reports empty, which is its linearization point.
//
// Dequeued head nodes are retired through an epoch domain and released only
// once no concurrent operation can still observe them.
type Queue[T any] struct {
	_       pad
	head    atomic.Pointer[qnode[T]]
	_       pad
	tail    atomic.Pointer[qnode[T]]
	_       pad
	reclaim *epoch.Domain
}

type qnode[T any] struct {
	value T
	next  atomic.Pointer[qnode[T]]
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{reclaim: epoch.NewDomain(0)}
	dummy := new(qnode[T])
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

// Enqueue adds an element to the queue. The element is copied into a
// queue-owned node; the caller may reuse *elem afterwards.
//
// Enqueue never blocks and, absent allocation failure, never fails. The
// error return exists to satisfy [Producer]; it is always nil.
func (q *Queue[T]) Enqueue(elem *T) error {
	n := &qnode[T]{value: *elem}
	g := q.reclaim.Pin()
	prev := q.tail.Swap(n) // linearization point
	prev.next.Store(n)
	g.Unpin()
	return nil
}

// Dequeue removes and returns the oldest element.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *Queue[T]) Dequeue() (T, error) {
	g := q.reclaim.Pin()
	sw := spin.Wait{}
	for {
		head := q.head.Load()
		next := head.next.Load()
		if next == nil {
			g.Unpin()
			var zero T
			return zero, ErrWouldBlock
		}
		if q.head.CompareAndSwap(head, next) {
			// next is the new dummy; its payload now belongs to this
			// consumer alone. Clear the cell so referenced objects can be
			// collected.
			elem := next.value
			var zero T
			next.value = zero
			g.Retire(head)
			g.Unpin()
			return elem, nil
		}
		sw.Once()
	}
}

// Empty reports whether the queue held no element at the time of the check.
// The snapshot may be immediately stale.
func (q *Queue[T]) Empty() bool {
	g := q.reclaim.Pin()
	empty := q.head.Load().next.Load() == nil
	g.Unpin()
	return empty
}

// Len counts the elements currently reachable from the head. It is O(n) and
// best-effort: concurrent enqueues and dequeues skew the count, and a node
// mid-publication may or may not be included.
func (q *Queue[T]) Len() int {
	g := q.reclaim.Pin()
	n := 0
	for cur := q.head.Load().next.Load(); cur != nil; cur = cur.next.Load() {
		n++
	}
	g.Unpin()
	return n
}

var _ FIFO[int] = (*Queue[int])(nil)
