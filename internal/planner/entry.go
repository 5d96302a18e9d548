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

// Package planner is the encoding planner: it runs the two-pass sizing
// computation over everything the collect phase accumulated (stack-map
// entries, the location catalog, the dex-register-location sequence, the
// inline-info buffer, and the stack-mask/register-mask dedup tables) and
// produces a Header describing every field's bit width and every
// sub-table's byte offset. internal/codec then only has to follow the
// Header, never recompute a width or an offset itself.
package planner

import "github.com/cloudwego/codeinfo/internal/inline"

// NoMatch marks a stack map that has no earlier entry with an identical
// dex-register map.
const NoMatch = -1

// StackMapEntry is the frozen, Plan-ready record of one safepoint. It is
// built up by the root Stream during Begin/Add/End and handed to Plan
// read-only.
type StackMapEntry struct {
	DexPC                          uint32
	NativePCCompressed             uint32
	RegisterMask                   uint32
	StackMaskBits                  []uint32 // set-bit positions of the sp mask, nil if none
	NumDexRegisters                uint16
	InliningDepth                  uint8
	DexRegisterLocationsStartIndex uint32
	InlineInfosStartIndex          uint32
	LiveDexRegistersMask           []byte // popcount gives the live register count
	DexRegisterMapHash             uint32
	SameDexRegisterMapAs           int // NoMatch if this entry owns its own map

	// RegisterMaskIndex and StackMaskIndex are assigned by the caller's
	// mask interning before Plan runs; HasDexRegisterMap and
	// DexRegisterMapOffset are filled in by Plan. InlineInfoIndex is not
	// written by Plan: the serializer stores InlineInfosStartIndex as the
	// row's inline-info index.
	RegisterMaskIndex    int
	StackMaskIndex       int
	HasDexRegisterMap    bool
	DexRegisterMapOffset uint32
	InlineInfoIndex      uint32
}

// LiveDexRegisterCount returns the number of set bits in
// LiveDexRegistersMask, i.e. how many location-catalog indices this
// entry's slice of the global location sequence actually holds.
func (e *StackMapEntry) LiveDexRegisterCount() int {
	return popcount(e.LiveDexRegistersMask, uint32(e.NumDexRegisters))
}

// InlineFramePlan is the Plan-time output for one entry of the shared
// inline.Buffer: where (if anywhere) its own dex-register map landed.
type InlineFramePlan struct {
	HasDexRegisterMap    bool
	DexRegisterMapOffset uint32
}

// LiveDexRegisterCount mirrors StackMapEntry's helper for an inline.Entry.
func LiveDexRegisterCount(e inline.Entry) int {
	return popcount(e.LiveDexRegistersMask, uint32(e.NumDexRegisters))
}

func popcount(mask []byte, nbits uint32) int {
	n := 0
	for i := uint32(0); i < nbits; i++ {
		if mask[i/8]&(1<<(i%8)) != 0 {
			n++
		}
	}
	return n
}
