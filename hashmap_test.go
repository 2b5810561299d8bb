// Copyright (c) 2026 Ersel Seyit. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds_test

import (
	"math"
	"strings"
	"testing"

	cds "github.com/ErselSeyit/concurrent-data-structures"
)

// =============================================================================
// Map - Basic Operations
// =============================================================================

func TestMapInsertGetErase(t *testing.T) {
	m := cds.NewMap[int, int]()

	if !m.Insert(1, 100) {
		t.Fatal("Insert(1, 100): got updated, want inserted")
	}
	if m.Insert(1, 200) {
		t.Fatal("Insert(1, 200): got inserted, want updated")
	}
	v, ok := m.Get(1)
	if !ok || v != 200 {
		t.Fatalf("Get(1): got (%d, %v), want (200, true)", v, ok)
	}
	if n := m.Size(); n != 1 {
		t.Fatalf("Size: got %d, want 1", n)
	}
	if !m.Erase(1) {
		t.Fatal("Erase(1): got false, want true")
	}
	if m.Contains(1) {
		t.Fatal("Contains(1) after erase: got true, want false")
	}
	if m.Erase(1) {
		t.Fatal("second Erase(1): got true, want false")
	}
	if !m.Empty() {
		t.Fatal("Empty after erase: got false, want true")
	}
}

func TestMapAbsentKey(t *testing.T) {
	m := cds.NewMap[string, int]()

	if _, ok := m.Get("missing"); ok {
		t.Fatal("Get of absent key: got ok, want !ok")
	}
	if m.Contains("missing") {
		t.Fatal("Contains of absent key: got true, want false")
	}
	if m.Erase("missing") {
		t.Fatal("Erase of absent key: got true, want false")
	}
	if n := m.Size(); n != 0 {
		t.Fatalf("Size after absent-key erase: got %d, want 0", n)
	}
}

func TestMapInsertEraseReinsert(t *testing.T) {
	m := cds.NewMap[string, string]()

	if !m.Insert("k", "v1") {
		t.Fatal("first Insert: got updated, want inserted")
	}
	if !m.Erase("k") {
		t.Fatal("Erase: got false, want true")
	}
	if !m.Insert("k", "v2") {
		t.Fatal("Insert after erase: got updated, want inserted")
	}
	v, ok := m.Get("k")
	if !ok || v != "v2" {
		t.Fatalf("Get: got (%q, %v), want (%q, true)", v, ok, "v2")
	}
	if n := m.Size(); n != 1 {
		t.Fatalf("Size: got %d, want 1", n)
	}
}

// TestMapExtremeKeys checks that boundary keys behave like any other key.
func TestMapExtremeKeys(t *testing.T) {
	im := cds.NewMap[int64, int]()
	for i, k := range []int64{0, -1, math.MaxInt64, math.MinInt64} {
		if !im.Insert(k, i) {
			t.Fatalf("Insert(%d): got updated, want inserted", k)
		}
	}
	for i, k := range []int64{0, -1, math.MaxInt64, math.MinInt64} {
		v, ok := im.Get(k)
		if !ok || v != i {
			t.Fatalf("Get(%d): got (%d, %v), want (%d, true)", k, v, ok, i)
		}
	}

	sm := cds.NewMap[string, int]()
	long := strings.Repeat("x", 10*1024)
	if !sm.Insert("", 1) {
		t.Fatal("Insert of empty string key: got updated, want inserted")
	}
	if !sm.Insert(long, 2) {
		t.Fatal("Insert of 10KiB key: got updated, want inserted")
	}
	if v, ok := sm.Get(""); !ok || v != 1 {
		t.Fatalf("Get of empty string key: got (%d, %v)", v, ok)
	}
	if v, ok := sm.Get(long); !ok || v != 2 {
		t.Fatalf("Get of 10KiB key: got (%d, %v)", v, ok)
	}
	if !sm.Erase("") {
		t.Fatal("Erase of empty string key: got false, want true")
	}
	if sm.Contains("") {
		t.Fatal("Contains of erased empty string key: got true, want false")
	}
}

// TestMapSingleBucket pins every key into one chain so lookups, updates and
// unlinks all exercise chain traversal, not hash spread.
func TestMapSingleBucket(t *testing.T) {
	m := cds.NewMap[int, int](
		cds.WithBuckets[int](2),
		cds.WithHasher(func(int) uint64 { return 0 }),
	)

	const n = 64
	for i := range n {
		if !m.Insert(i, i*10) {
			t.Fatalf("Insert(%d): got updated, want inserted", i)
		}
	}
	if got := m.Size(); got != n {
		t.Fatalf("Size: got %d, want %d", got, n)
	}

	// Erase the middle of the chain, then the ends.
	for _, k := range []int{32, 0, n - 1} {
		if !m.Erase(k) {
			t.Fatalf("Erase(%d): got false, want true", k)
		}
	}
	if got := m.Size(); got != n-3 {
		t.Fatalf("Size after erases: got %d, want %d", got, n-3)
	}
	for i := range n {
		wantOK := i != 32 && i != 0 && i != n-1
		v, ok := m.Get(i)
		if ok != wantOK {
			t.Fatalf("Get(%d): got ok=%v, want %v", i, ok, wantOK)
		}
		if ok && v != i*10 {
			t.Fatalf("Get(%d): got %d, want %d", i, v, i*10)
		}
	}
}

func TestMapValueSnapshot(t *testing.T) {
	type rec struct{ n int }
	m := cds.NewMap[string, rec]()

	m.Insert("k", rec{n: 1})
	v, _ := m.Get("k")
	v.n = 99

	got, _ := m.Get("k")
	if got.n != 1 {
		t.Fatalf("Get after mutating snapshot: got %d, want 1", got.n)
	}
}

func TestMapUpdateRetainsSingleEntry(t *testing.T) {
	m := cds.NewMap[int, int]()

	for i := range 100 {
		m.Insert(42, i)
	}
	if n := m.Size(); n != 1 {
		t.Fatalf("Size after repeated updates: got %d, want 1", n)
	}
	v, ok := m.Get(42)
	if !ok || v != 99 {
		t.Fatalf("Get(42): got (%d, %v), want (99, true)", v, ok)
	}
}

func TestMapBucketRounding(t *testing.T) {
	// 1000 rounds to 1024; behavior is indistinguishable, so just verify
	// construction succeeds and operations work.
	m := cds.NewMap[int, int](cds.WithBuckets[int](1000))
	m.Insert(1, 1)
	if v, ok := m.Get(1); !ok || v != 1 {
		t.Fatalf("Get(1): got (%d, %v), want (1, true)", v, ok)
	}
}
