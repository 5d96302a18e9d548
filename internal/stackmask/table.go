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

// Package stackmask interns the padded, byte-packed stack bitmaps of every
// safepoint against a single common width (the highest bit set across the
// whole build, plus one). Keeping every entry at that fixed byte width
// lets the dedup map hold content keys without the entries themselves
// ever moving, which matters because the backing buffer is a single
// preallocated arena.
package stackmask

import (
	"sync/atomic"

	"github.com/bytedance/gopkg/lang/mcache"
)

// HitCount and MissCount tally Intern calls across every Table in the
// process, for debug.GetStats.
var (
	HitCount  uint64
	MissCount uint64
)

// Table is the stack-mask dedup table. Build it with New, feed every
// safepoint's mask through Intern in stack-map order, then read each
// Entry for serialization. Close returns the backing arena buffer.
type Table struct {
	byteWidth int
	buf       []byte // arena: byteWidth * capacity, only [:n*byteWidth] valid
	n         int
	index     map[string]int
}

// New preallocates a Table sized for up to capacity entries of the given
// bit width. The buffer must not need to grow: dedup keys are byte
// strings computed from slices of buf, so relocating buf would leave
// stale keys pointing at moved-away bytes... in Go the fix is simpler
// than in the teacher's C++ (map keys here are copied strings, not
// pointers into the arena), but the arena is still preallocated up front
// to avoid capacity's worth of small allocations.
func New(bitWidth uint32, capacity int) *Table {
	byteWidth := int((bitWidth + 7) / 8)
	if byteWidth == 0 {
		byteWidth = 1
	}
	return &Table{
		byteWidth: byteWidth,
		buf:       mcache.Malloc(byteWidth * capacity),
		index:     make(map[string]int, capacity),
	}
}

// BitWidth returns the common bit width every entry is padded to.
func (t *Table) BitWidth() uint32 {
	return uint32(t.byteWidth) * 8
}

// Intern pads mask (a slice of set-bit positions, as produced by a
// BitSet) to the table's common width and interns it. bits may be nil,
// meaning "no stack slots live" (the padded entry is all zero).
func (t *Table) Intern(bits []uint32) (index int) {
	entry := t.buf[t.n*t.byteWidth : (t.n+1)*t.byteWidth]
	for i := range entry {
		entry[i] = 0
	}
	for _, b := range bits {
		entry[b/8] |= 1 << (b % 8)
	}

	key := string(entry)
	if idx, ok := t.index[key]; ok {
		atomic.AddUint64(&HitCount, 1)
		return idx
	}

	atomic.AddUint64(&MissCount, 1)
	idx := t.n
	t.index[key] = idx
	t.n++
	return idx
}

// NumEntries returns the number of distinct masks interned.
func (t *Table) NumEntries() int {
	return t.n
}

// Entry returns the padded byte-packed mask for dedup index i.
func (t *Table) Entry(i int) []byte {
	return t.buf[i*t.byteWidth : (i+1)*t.byteWidth]
}

// Close releases the backing arena buffer. The Table must not be used
// afterwards.
func (t *Table) Close() {
	mcache.Free(t.buf)
	t.buf = nil
}
