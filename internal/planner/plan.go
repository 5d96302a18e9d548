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

package planner

import (
	"github.com/cloudwego/codeinfo/internal/bitio"
	"github.com/cloudwego/codeinfo/internal/catalog"
	"github.com/cloudwego/codeinfo/internal/inline"
)

// Input is everything Plan needs, all of it already produced by the
// Collect phase: the frozen stack-map entries, the shared inline-info
// buffer, and the sizes of the three dedup tables (catalog, stack-mask,
// register-mask).
type Input struct {
	StackMaps     []*StackMapEntry
	InlineEntries []inline.Entry

	CatalogLen         int
	CatalogEncodedSize int

	StackMaskNumEntries int
	StackMaskEntryBytes int
	StackMaskBitsWidth  uint32

	RegisterMaskNumEntries int
	RegisterMaskMax        uint32
}

// Plan runs the measure pass and returns a fully laid-out Header, plus
// the per-inline-entry map placement (InlineFramePlans, parallel to
// in.InlineEntries) that the outer StackMapEntry records don't have room
// for.
//
// Dex-register-map placement is carved out in the same order the
// serializer will walk stack maps: for each stack map, its own outer map
// (or a copy of an earlier one's offset, or the NoDexRegisterMap
// sentinel) is placed first, then each of its inline frames gets a fresh
// sub-region in Begin order. This keeps Plan and the serializer in
// lock-step without either recomputing what the other already decided.
func Plan(in Input) (*Header, []InlineFramePlan) {
	h := &Header{
		NumStackMaps:          uint32(len(in.StackMaps)),
		NumInlineInfos:        uint32(len(in.InlineEntries)),
		CatalogEntryWidthBits: catalog.EntryWidthBits(in.CatalogLen),
		StackMaskBitsWidth:    in.StackMaskBitsWidth,
		RegisterMaskBits:      bitio.MinimumBitsToStore(uint64(in.RegisterMaskMax)),
	}

	inlinePlans := make([]InlineFramePlan, len(in.InlineEntries))

	var (
		maxDexPC        uint64
		maxNativePC     uint64
		maxDepth        uint64
		maxStartIndex   uint64
		anyDepthZero    bool
		anyNoDexMap     bool
		maxMapOffset    uint64
		cursor          uint32
		ownerOffset     = make(map[int]uint32) // stack-map index -> its map offset
		maxMethodIndex  uint64
		maxHandle       uint64
		maxInlineDexPC  uint64
		anyInlineNoPC   bool
		anyInlineNoMap  bool
		maxInlineNumReg uint64
	)

	for i, sm := range in.StackMaps {
		if uint64(sm.DexPC) > maxDexPC {
			maxDexPC = uint64(sm.DexPC)
		}
		if uint64(sm.NativePCCompressed) > maxNativePC {
			maxNativePC = uint64(sm.NativePCCompressed)
		}
		if uint64(sm.InliningDepth) > maxDepth {
			maxDepth = uint64(sm.InliningDepth)
		}
		if sm.InliningDepth == 0 {
			anyDepthZero = true
		} else if uint64(sm.InlineInfosStartIndex) > maxStartIndex {
			maxStartIndex = uint64(sm.InlineInfosStartIndex)
		}

		// Outer dex-register map placement.
		switch {
		case sm.NumDexRegisters == 0 || sm.LiveDexRegisterCount() == 0:
			sm.HasDexRegisterMap = false
			anyNoDexMap = true
		case sm.SameDexRegisterMapAs != NoMatch:
			sm.HasDexRegisterMap = true
			sm.DexRegisterMapOffset = ownerOffset[sm.SameDexRegisterMapAs]
		default:
			sm.HasDexRegisterMap = true
			sm.DexRegisterMapOffset = cursor
			ownerOffset[i] = cursor
			cursor += mapByteSize(sm.NumDexRegisters, sm.LiveDexRegisterCount(), h.CatalogEntryWidthBits)
		}
		if sm.HasDexRegisterMap && uint64(sm.DexRegisterMapOffset) > maxMapOffset {
			maxMapOffset = uint64(sm.DexRegisterMapOffset)
		}

		// This entry's inline frames, in Begin order, each a fresh map.
		if sm.InliningDepth > 0 {
			start := sm.InlineInfosStartIndex
			for d := uint32(0); d < uint32(sm.InliningDepth); d++ {
				fr := in.InlineEntries[start+d]
				plan := &inlinePlans[start+d]

				if !fr.Method.ByHandle && uint64(fr.Method.Index) > maxMethodIndex {
					maxMethodIndex = uint64(fr.Method.Index)
				}
				if fr.Method.ByHandle && fr.Method.Handle > maxHandle {
					maxHandle = fr.Method.Handle
				}
				if fr.DexPC == inline.NoDexPC {
					anyInlineNoPC = true
				} else if uint64(fr.DexPC) > maxInlineDexPC {
					maxInlineDexPC = uint64(fr.DexPC)
				}
				if uint64(fr.NumDexRegisters) > maxInlineNumReg {
					maxInlineNumReg = uint64(fr.NumDexRegisters)
				}

				liveCount := LiveDexRegisterCount(fr)
				if fr.NumDexRegisters == 0 || liveCount == 0 {
					plan.HasDexRegisterMap = false
					anyInlineNoMap = true
					continue
				}
				plan.HasDexRegisterMap = true
				plan.DexRegisterMapOffset = cursor
				if uint64(cursor) > maxMapOffset {
					maxMapOffset = uint64(cursor)
				}
				cursor += mapByteSize(fr.NumDexRegisters, liveCount, h.CatalogEntryWidthBits)
			}
		}
	}

	h.DexPCBits = bitio.MinimumBitsToStore(maxDexPC)
	h.NativePCBits = bitio.MinimumBitsToStore(maxNativePC)
	// A nonzero-width field is always decoded by comparing against its
	// sentinel, so the sentinel must stay distinct from every real value
	// whenever the field has any width at all, not only when some entry
	// actually stores it.
	h.DexRegisterMapOffsetBits = widthWithSentinel(maxMapOffset, anyNoDexMap || anyInlineNoMap || maxMapOffset > 0)
	h.NoDexRegisterMap = sentinelOf(h.DexRegisterMapOffsetBits)

	if h.NumInlineInfos == 0 {
		h.InlineInfoIndexBits = 0
		h.DepthBits = 0
	} else {
		h.InlineInfoIndexBits = widthWithSentinel(maxStartIndex, anyDepthZero || maxStartIndex > 0)
		h.DepthBits = bitio.MinimumBitsToStore(maxDepth)
	}
	h.NoInlineInfo = sentinelOf(h.InlineInfoIndexBits)

	if in.RegisterMaskNumEntries > 0 {
		h.RegisterMaskIndexBits = bitio.MinimumBitsToStore(uint64(in.RegisterMaskNumEntries - 1))
	}
	if in.StackMaskNumEntries > 0 {
		h.StackMaskIndexBits = bitio.MinimumBitsToStore(uint64(in.StackMaskNumEntries - 1))
	}

	h.InlineMethodIndexBits = bitio.MinimumBitsToStore(maxMethodIndex)
	h.InlineMethodHandleBits = bitio.MinimumBitsToStore(maxHandle)
	h.InlineDexPCBits = widthWithSentinel(maxInlineDexPC, anyInlineNoPC || maxInlineDexPC > 0)
	h.NoDexPCInline = sentinelOf(h.InlineDexPCBits)
	h.InlineNumDexRegistersBits = bitio.MinimumBitsToStore(maxInlineNumReg)
	h.InlineDexRegisterMapOffsetBits = h.DexRegisterMapOffsetBits

	// Absolute byte offsets: catalog, dex-register-map region, stack
	// maps, inline-info, stack-mask table, register-mask table, in that
	// order, each following the previous with no padding.
	offset := uint32(FixedHeaderSize)

	h.CatalogOffset = offset
	h.CatalogSize = uint32(in.CatalogEncodedSize)
	offset += h.CatalogSize

	h.DexRegisterMapOffset = offset
	h.DexRegisterMapSize = cursor
	offset += h.DexRegisterMapSize

	h.StackMapsOffset = offset
	h.StackMapsSize = bitio.BytesForBits(uint32(h.StackMapRowBits()) * h.NumStackMaps)
	offset += h.StackMapsSize

	h.InlineInfoOffset = offset
	h.InlineInfoSize = bitio.BytesForBits(uint32(h.InlineRowBits()) * h.NumInlineInfos)
	offset += h.InlineInfoSize

	h.StackMaskTableOffset = offset
	h.StackMaskTableSize = uint32(in.StackMaskNumEntries * in.StackMaskEntryBytes)
	offset += h.StackMaskTableSize

	h.RegisterMaskTableOffset = offset
	h.RegisterMaskTableSize = bitio.BytesForBits(uint32(h.RegisterMaskBits) * uint32(in.RegisterMaskNumEntries))
	offset += h.RegisterMaskTableSize

	h.TotalSize = offset
	return h, inlinePlans
}

// mapByteSize is the byte size of one dex-register map: a byte-aligned
// live bitmask followed by a byte-aligned run of bit-packed catalog
// indices, one per live register. Byte-aligning both halves keeps every
// map's offset a whole byte, which is what the offset field stores.
func mapByteSize(numDexRegisters uint16, liveCount int, catalogEntryWidthBits uint) uint32 {
	maskBytes := bitio.BytesForBits(uint32(numDexRegisters))
	indexBytes := bitio.BytesForBits(uint32(liveCount) * uint32(catalogEntryWidthBits))
	return maskBytes + indexBytes
}
