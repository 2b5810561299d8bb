// Copyright (c) 2026 Ersel Seyit. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For Queue.Dequeue: the queue is empty (no data available).
//
// ErrWouldBlock is a control flow signal, not a failure. The caller should
// retry the operation later (with backoff or yield) rather than propagating
// the error.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrPoolClosed indicates a submission to a pool whose shutdown has begun.
//
// Submitting after Close is a programmer error; the pool reports it rather
// than silently dropping the work unit.
var ErrPoolClosed = errors.New("cds: pool closed")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// PanicError wraps a panic recovered from a submitted work unit.
//
// The panic is captured into the work unit's [Result] and surfaced from
// Result.Wait; the worker that ran the unit keeps running.
type PanicError struct {
	// Value is the value passed to panic.
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("cds: work unit panicked: %v", e.Value)
}
