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

// Package catalog interns the distinct (kind, value) virtual-register
// Locations seen across an entire build. The set of distinct locations is
// orders of magnitude smaller than the total count of live-register
// slots, so interning shrinks the register-map payload down to
// ceil(log2(catalog size)) bits per live register.
package catalog

import (
	"sync/atomic"

	"github.com/cloudwego/codeinfo/internal/bitio"
)

// HitCount and MissCount tally Intern calls across every Catalog in the
// process, for debug.GetStats. A hit is a Location that was already
// interned; a miss is one that had to be added.
var (
	HitCount  uint64
	MissCount uint64
)

// Kind mirrors the root package's Kind without importing it, to keep
// internal/catalog free of a dependency on the public API surface.
type Kind uint8

// Location is a (kind, value) pair, as accepted by Intern.
type Location struct {
	Kind  Kind
	Value int32
}

const noneKind Kind = 0

// FixedHeaderSize is the byte size of the catalog's own small header
// (entry count), written ahead of the entries themselves.
const FixedHeaderSize = 4

// Catalog is an ordered sequence of distinct Locations plus a companion
// map for O(1) interning. Indices are stable for the lifetime of the
// Catalog: index i always refers to the i-th distinct location ever
// added.
type Catalog struct {
	entries []Location
	index   map[Location]uint32
}

// New returns an empty Catalog.
func New() *Catalog {
	return &Catalog{index: make(map[Location]uint32)}
}

// Intern looks up loc in the catalog, adding it if absent, and returns its
// index. If loc.Kind is the None sentinel, Intern returns (0, false) and
// does not touch the catalog at all: None is never entered into it.
func (c *Catalog) Intern(loc Location) (index uint32, interned bool) {
	if loc.Kind == noneKind {
		return 0, false
	}
	if idx, ok := c.index[loc]; ok {
		atomic.AddUint64(&HitCount, 1)
		return idx, true
	}
	atomic.AddUint64(&MissCount, 1)
	idx := uint32(len(c.entries))
	c.entries = append(c.entries, loc)
	c.index[loc] = idx
	return idx, true
}

// Len returns the number of distinct locations interned so far.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// At returns the location stored at index i.
func (c *Catalog) At(i uint32) Location {
	return c.entries[i]
}

// EntryWidthBits returns the number of bits needed to index into a
// catalog of the given size: ceil(log2(size)), with the convention that a
// catalog of size 0 or 1 needs 0 bits (there is at most one possible
// index, so it never has to be stored).
func EntryWidthBits(catalogSize int) uint {
	if catalogSize <= 1 {
		return 0
	}
	return bitio.MinimumBitsToStore(uint64(catalogSize - 1))
}

// These constants describe the two shapes an entry can take: a 1-byte
// "narrow" form when the value fits in 4 bits, and a 5-byte "wide" form
// otherwise. This is a real narrowing policy, unlike a fixed-size entry,
// and is why EntrySize depends on the entry's value rather than being a
// constant.
const (
	narrowValueBits = 4
	narrowMaxValue  = (1 << narrowValueBits) - 1
)

func fitsNarrow(value int32) bool {
	return value >= 0 && value <= narrowMaxValue
}

// EntrySize returns the number of bytes a single (kind, value) entry
// occupies when serialized: 1 byte for kinds whose value fits in 4 bits,
// 5 bytes otherwise (1 header byte + 4 value bytes).
func EntrySize(loc Location) int {
	if fitsNarrow(loc.Value) {
		return 1
	}
	return 5
}

// EncodedSize is the fixed header size plus the sum of EntrySize over
// every interned entry.
func (c *Catalog) EncodedSize() int {
	size := FixedHeaderSize
	for _, e := range c.entries {
		size += EntrySize(e)
	}
	return size
}

// Entries exposes the catalog contents in interning order, for the
// serializer to walk once while writing.
func (c *Catalog) Entries() []Location {
	return c.entries
}
