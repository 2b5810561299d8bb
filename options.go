// Copyright (c) 2026 Ersel Seyit. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds

import "time"

// defaultBuckets is the bucket count used when WithBuckets is not given.
const defaultBuckets = 1024

// defaultIdleInterval bounds the worker idle wait so shutdown signalling
// stays live even if a wake signal is missed.
const defaultIdleInterval = 100 * time.Millisecond

type mapConfig[K comparable] struct {
	buckets int
	hasher  func(K) uint64
}

// MapOption configures map creation.
//
// Options are generic over the key type so that WithHasher can carry a typed
// hash function.
//
// Example:
//
//	m := cds.NewMap[string, int](
//	    cds.WithBuckets[string](4096),
//	)
type MapOption[K comparable] func(*mapConfig[K])

// WithBuckets sets the bucket count of the table, rounded up to the next
// power of 2. The table never resizes. Defaults to 1024.
//
// Panics if n < 2.
func WithBuckets[K comparable](n int) MapOption[K] {
	if n < 2 {
		panic("cds: bucket count must be >= 2")
	}
	return func(c *mapConfig[K]) {
		c.buckets = n
	}
}

// WithHasher replaces the default hash function for keys.
//
// The default hashes any comparable key through hash/maphash with a per-map
// random seed. A caller-supplied hasher is useful when key distribution
// needs tuning; the map makes no guarantees about chain length under a poor
// hash.
func WithHasher[K comparable](h func(K) uint64) MapOption[K] {
	return func(c *mapConfig[K]) {
		c.hasher = h
	}
}

type poolConfig struct {
	idleInterval time.Duration
}

// PoolOption configures pool creation.
type PoolOption func(*poolConfig)

// WithIdleInterval bounds how long an idle worker sleeps between polls of
// the task queue when no wake signal arrives. Defaults to 100ms.
//
// Panics if d <= 0.
func WithIdleInterval(d time.Duration) PoolOption {
	if d <= 0 {
		panic("cds: idle interval must be positive")
	}
	return func(c *poolConfig) {
		c.idleInterval = d
	}
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

// padPtr is padding to fill cache line after a pointer-sized field.
type padPtr [64 - 8]byte
