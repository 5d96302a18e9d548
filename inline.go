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

package codeinfo

import "github.com/cloudwego/codeinfo/internal/bitio"

// MethodRef identifies an inlined method. It is a tagged variant rather
// than a pointer split into high/low halves: ByHandle picks which of
// Index (a dex method-table index) or Handle (an opaque pointer-identity
// handle) is valid.
type MethodRef struct {
	ByHandle bool
	Index    uint32
	Handle   uint64
}

// ByIndex builds a MethodRef naming a method by its dex method-table
// index.
func ByIndex(index uint32) MethodRef {
	return MethodRef{Index: index}
}

// ByHandle builds a MethodRef naming a method by an opaque pointer-
// identity handle, for methods with no stable dex method-table index
// (e.g. proxy or resolved-at-runtime methods).
func ByHandle(handle uint64) MethodRef {
	return MethodRef{ByHandle: true, Handle: handle}
}

// DexFileID is an opaque, comparable identity token standing in for a
// dex file. codeinfo never opens, parses or otherwise interprets one; it
// only compares them for equality: every inline frame with a real dex PC
// must name the same outer dex file as the first such frame recorded in
// the Stream.
type DexFileID uint64

// BitSet is a growable bitmap of stack slots, e.g. spec.md's variable-
// length sp_mask. It grows on Set as needed and never shrinks.
type BitSet struct {
	bits uint32
	data []byte
}

// NewBitSet returns an empty BitSet.
func NewBitSet() *BitSet {
	return &BitSet{}
}

// Set marks bit i live, growing the backing storage if necessary.
func (b *BitSet) Set(i uint32) {
	if i >= b.bits {
		b.bits = i + 1
		need := bitio.BytesForBits(b.bits)
		for uint32(len(b.data)) < need {
			b.data = append(b.data, 0)
		}
	}
	bitio.SetBit(b.data, i, true)
}

// Test reports whether bit i is set. Bits beyond the current extent are
// always unset.
func (b *BitSet) Test(i uint32) bool {
	if i >= b.bits {
		return false
	}
	return bitio.TestBit(b.data, i)
}

// IsEmpty reports whether no bit has ever been set.
func (b *BitSet) IsEmpty() bool {
	return b.bits == 0
}

// Positions returns the set bit indices in ascending order.
func (b *BitSet) Positions() []uint32 {
	var out []uint32
	for i := uint32(0); i < b.bits; i++ {
		if bitio.TestBit(b.data, i) {
			out = append(out, i)
		}
	}
	return out
}
