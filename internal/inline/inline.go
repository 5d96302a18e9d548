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

// Package inline accumulates the inline-frame descriptors of every stack
// map in a build. Every stack map owns a contiguous run of
// entries in the buffer, addressed by a start index and a depth; frames
// are never shared or deduplicated across stack maps.
package inline

// NoDexPC marks an inline frame with no source PC of its own.
const NoDexPC = 0xFFFFFFFF

// Method is the tagged method-identity variant carried by an entry. It
// mirrors codeinfo.MethodRef without importing the root package, which
// would create an import cycle.
type Method struct {
	ByHandle bool
	Index    uint32
	Handle   uint64
}

// Entry is one inlined frame belonging to a stack map.
type Entry struct {
	Method                         Method
	DexPC                          uint32
	NumDexRegisters                uint16
	DexRegisterLocationsStartIndex uint32
	LiveDexRegistersMask           []byte // nil when NumDexRegisters == 0
}

// Buffer is the flat, append-only sequence of inline-info entries shared
// by every stack map in a build. A stack map's own run is
// buf.Entries[start : start+depth].
type Buffer struct {
	entries []Entry
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// StartIndex returns the index the next Put call will land at, i.e. the
// start index a caller should record for the run about to be written.
func (b *Buffer) StartIndex() uint32 {
	return uint32(len(b.entries))
}

// Put appends one inline frame and returns its absolute index in the
// buffer.
func (b *Buffer) Put(e Entry) uint32 {
	idx := uint32(len(b.entries))
	b.entries = append(b.entries, e)
	return idx
}

// Len returns the total number of inline-info entries accumulated so
// far, across every stack map.
func (b *Buffer) Len() int {
	return len(b.entries)
}

// Entry returns the entry previously stored at absolute index i.
func (b *Buffer) Entry(i uint32) Entry {
	return b.entries[i]
}

// Entries exposes the full accumulated sequence, in Put order, for the
// encoding planner and serializer to walk by absolute index.
func (b *Buffer) Entries() []Entry {
	return b.entries
}

// MaxMethodIndex and MaxHandle return the largest by-index and by-handle
// method references seen, for the encoding planner's field-width sizing.
// Fields belonging to the other variant are simply skipped.
func (b *Buffer) MaxMethodIndex() uint32 {
	var max uint32
	for _, e := range b.entries {
		if !e.Method.ByHandle && e.Method.Index > max {
			max = e.Method.Index
		}
	}
	return max
}

func (b *Buffer) MaxHandle() uint64 {
	var max uint64
	for _, e := range b.entries {
		if e.Method.ByHandle && e.Method.Handle > max {
			max = e.Method.Handle
		}
	}
	return max
}

// MaxDexPC returns the largest DexPC across entries whose DexPC is not
// NoDexPC, for width sizing; NoDexPC itself is a reserved sentinel and
// must not inflate the field width.
func (b *Buffer) MaxDexPC() uint32 {
	var max uint32
	for _, e := range b.entries {
		if e.DexPC != NoDexPC && e.DexPC > max {
			max = e.DexPC
		}
	}
	return max
}
