// Copyright (c) 2026 Ersel Seyit. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package cds

// RaceEnabled is true when the race detector is active.
// Used by tests to skip stress tests whose synchronization flows through
// atomix memory orderings the detector cannot observe.
const RaceEnabled = true
