// Copyright (c) 2026 Ersel Seyit. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds_test

import (
	"sync"
	"testing"

	cds "github.com/ErselSeyit/concurrent-data-structures"
)

// =============================================================================
// Queue
// =============================================================================

func BenchmarkQueueSingleOp(b *testing.B) {
	q := cds.NewQueue[int]()

	b.ResetTimer()
	for i := range b.N {
		v := i
		q.Enqueue(&v)
		q.Dequeue()
	}
}

func BenchmarkQueueMPMC(b *testing.B) {
	if cds.RaceEnabled {
		b.Skip("skip: reclamation slots use atomix memory ordering")
	}
	q := cds.NewQueue[int]()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i%2 == 0 {
				v := i
				q.Enqueue(&v)
			} else {
				q.Dequeue()
			}
			i++
		}
	})
}

// =============================================================================
// Map
// =============================================================================

func BenchmarkMapInsert(b *testing.B) {
	m := cds.NewMap[int, int]()

	b.ResetTimer()
	for i := range b.N {
		m.Insert(i&1023, i)
	}
}

func BenchmarkMapGetHit(b *testing.B) {
	m := cds.NewMap[int, int]()
	for i := range 1024 {
		m.Insert(i, i)
	}

	b.ResetTimer()
	for i := range b.N {
		m.Get(i & 1023)
	}
}

func BenchmarkMapGetMiss(b *testing.B) {
	m := cds.NewMap[int, int]()
	for i := range 1024 {
		m.Insert(i, i)
	}

	b.ResetTimer()
	for i := range b.N {
		m.Get(1024 + i&1023)
	}
}

func BenchmarkMapMixed(b *testing.B) {
	if cds.RaceEnabled {
		b.Skip("skip: reclamation slots use atomix memory ordering")
	}
	m := cds.NewMap[int, int]()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			k := i & 4095
			switch i % 8 {
			case 0:
				m.Insert(k, i)
			case 1:
				m.Erase(k)
			default:
				m.Get(k)
			}
			i++
		}
	})
}

// =============================================================================
// Pool
// =============================================================================

func BenchmarkPoolSubmitWait(b *testing.B) {
	if cds.RaceEnabled {
		b.Skip("skip: reclamation slots use atomix memory ordering")
	}
	p := cds.NewPool(4)
	defer p.Close()

	b.ResetTimer()
	for i := range b.N {
		r, _ := cds.Submit(p, func() (int, error) { return i, nil })
		r.Wait()
	}
}

func BenchmarkPoolThroughput(b *testing.B) {
	if cds.RaceEnabled {
		b.Skip("skip: reclamation slots use atomix memory ordering")
	}
	p := cds.NewPool(8)
	defer p.Close()

	var wg sync.WaitGroup
	b.ResetTimer()
	wg.Add(b.N)
	for range b.N {
		cds.Submit(p, func() (struct{}, error) {
			wg.Done()
			return struct{}{}, nil
		})
	}
	wg.Wait()
}
