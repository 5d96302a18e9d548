/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package regmask interns the 32-bit CPU register bitmasks of every
// safepoint. Unlike the stack-mask table, no common width computation is
// needed: a register mask is always exactly 32 bits.
package regmask

import "sync/atomic"

// HitCount and MissCount tally Intern calls across every Table in the
// process, for debug.GetStats.
var (
	HitCount  uint64
	MissCount uint64
)

// Table is the register-mask dedup table.
type Table struct {
	values []uint32
	index  map[uint32]int
}

// New returns an empty Table.
func New() *Table {
	return &Table{index: make(map[uint32]int)}
}

// Intern interns mask and returns its dedup index.
func (t *Table) Intern(mask uint32) int {
	if idx, ok := t.index[mask]; ok {
		atomic.AddUint64(&HitCount, 1)
		return idx
	}
	atomic.AddUint64(&MissCount, 1)
	idx := len(t.values)
	t.values = append(t.values, mask)
	t.index[mask] = idx
	return idx
}

// NumEntries returns the number of distinct register masks interned.
func (t *Table) NumEntries() int {
	return len(t.values)
}

// Entry returns the register mask stored at dedup index i.
func (t *Table) Entry(i int) uint32 {
	return t.values[i]
}

// Max returns the largest register mask value interned, or 0 for an empty
// table, for the encoding planner's MinimumBitsToStore sizing.
func (t *Table) Max() uint32 {
	var max uint32
	for _, v := range t.values {
		if v > max {
			max = v
		}
	}
	return max
}
