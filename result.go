// Copyright (c) 2026 Ersel Seyit. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds

import "code.hybscloud.com/atomix"

const (
	resultPending int32 = iota
	resultDone
)

// Result is a one-shot handle for a submitted work unit.
//
// The worker that runs the unit fulfills the handle exactly once, with
// either a value or a failure; the submitter reads it through Wait. A
// handle that is never waited on costs nothing and never blocks a worker.
type Result[R any] struct {
	done  chan struct{}
	state atomix.Int32
	value R
	err   error
}

func newResult[R any]() *Result[R] {
	return &Result[R]{done: make(chan struct{})}
}

// Wait blocks until the work unit has completed, then returns its value or
// its failure. A unit that panicked surfaces as a [*PanicError].
//
// Wait may be called any number of times; calls after the first return the
// cached outcome.
func (r *Result[R]) Wait() (R, error) {
	<-r.done
	return r.value, r.err
}

// Done returns a channel that is closed once the work unit has completed.
// It allows a Result to participate in select statements.
func (r *Result[R]) Done() <-chan struct{} {
	return r.done
}

// fulfill publishes the outcome. The CAS makes fulfillment one-shot; the
// channel close publishes value and err to waiters.
func (r *Result[R]) fulfill(v R, err error) {
	if !r.state.CompareAndSwapAcqRel(resultPending, resultDone) {
		return
	}
	r.value = v
	r.err = err
	close(r.done)
}
