// Copyright (c) 2026 Ersel Seyit. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package epoch implements epoch-based memory reclamation for lock-free
// data structures.
//
// A structure that unlinks shared cells (queue nodes, map entries) cannot
// release them immediately: a concurrent operation that observed a cell
// before the unlink may still be traversing it. The epoch protocol defers
// the release until no such operation can remain:
//
//   - every operation pins the structure's [Domain] on entry and unpins on
//     exit, recording the global epoch it observed;
//   - an unlinked cell is retired into a bag tagged with the current epoch;
//   - the global epoch advances only when every pinned operation has
//     observed the current value;
//   - a bag is released when its slot next retires into the same bag, which
//     happens at least three epochs after the bag's epoch; once the global
//     epoch is two ahead, no pinned operation can have observed its cells
//     while they were still reachable.
//
// Releasing a bag drops the domain's references; the garbage collector
// performs the actual free. The domain's job is to bound how long retired
// cells stay strongly referenced and to keep the unlink-then-release
// protocol explicit, so retired memory stays bounded while producers and
// consumers progress at comparable rates.
//
// Pinning acquires one of a fixed set of participant slots, so the fast
// path is a single CAS with no allocation. Retirement bags are per-slot and
// only ever touched by the slot's current owner, so retiring takes no lock.
package epoch
