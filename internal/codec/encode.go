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

package codec

import (
	"github.com/cloudwego/codeinfo/internal/bitio"
	"github.com/cloudwego/codeinfo/internal/catalog"
	"github.com/cloudwego/codeinfo/internal/inline"
	"github.com/cloudwego/codeinfo/internal/planner"
	"github.com/cloudwego/codeinfo/internal/regmask"
	"github.com/cloudwego/codeinfo/internal/stackmask"
)

// EncodeInput bundles every piece of state the Collect and Plan phases
// produced. Encode itself performs no allocation and no dedup logic; it
// only follows the offsets and widths Header already decided.
type EncodeInput struct {
	Header          *planner.Header
	Catalog         *catalog.Catalog
	LocationIndices []uint32
	StackMaps       []*planner.StackMapEntry
	InlineEntries   []inline.Entry
	InlinePlans     []planner.InlineFramePlan
	StackMaskTable  *stackmask.Table
	RegisterMaskTable *regmask.Table
}

// Encode writes the complete serialized region. len(region) must equal
// in.Header.TotalSize; the caller (root Stream.FillIn) is responsible for
// that contract check since it is a programmer error, not a codec
// concern.
func Encode(region []byte, in EncodeInput) {
	h := in.Header
	WriteHeader(region, h)
	encodeCatalog(region[h.CatalogOffset:h.CatalogOffset+h.CatalogSize], in.Catalog)
	encodeStackMapsAndInline(region, in)
	encodeStackMaskTable(region[h.StackMaskTableOffset:h.StackMaskTableOffset+h.StackMaskTableSize], in.StackMaskTable)
	encodeRegisterMaskTable(region[h.RegisterMaskTableOffset:h.RegisterMaskTableOffset+h.RegisterMaskTableSize], h, in.RegisterMaskTable)
}

func encodeCatalog(region []byte, c *catalog.Catalog) {
	entries := c.Entries()
	catalog.WriteHeader(region, uint32(len(entries)))
	cursor := catalog.FixedHeaderSize
	for _, e := range entries {
		cursor += catalog.WriteEntry(region[cursor:], e)
	}
}

func encodeStackMaskTable(region []byte, t *stackmask.Table) {
	entryBytes := int(t.BitWidth() / 8)
	for i := 0; i < t.NumEntries(); i++ {
		copy(region[i*entryBytes:(i+1)*entryBytes], t.Entry(i))
	}
}

func encodeRegisterMaskTable(region []byte, h *planner.Header, t *regmask.Table) {
	for i := 0; i < t.NumEntries(); i++ {
		bitio.PutBits(region, uint64(i)*uint64(h.RegisterMaskBits), h.RegisterMaskBits, uint64(t.Entry(i)))
	}
}

// encodeDexRegisterMap writes one map (a byte-aligned live bitmask
// followed by a byte-aligned run of bit-packed catalog indices) at
// mapRegion[0:]. locIndices is the slice of this frame's own catalog
// indices, in live-register order.
func encodeDexRegisterMap(mapRegion []byte, liveMask []byte, numDexRegisters uint16, locIndices []uint32, catalogEntryWidthBits uint) {
	maskBytes := bitio.BytesForBits(uint32(numDexRegisters))
	copy(mapRegion[:maskBytes], liveMask)
	rest := mapRegion[maskBytes:]
	for i, idx := range locIndices {
		bitio.PutBits(rest, uint64(i)*uint64(catalogEntryWidthBits), catalogEntryWidthBits, uint64(idx))
	}
}

func encodeStackMapsAndInline(region []byte, in EncodeInput) {
	h := in.Header
	smTable := region[h.StackMapsOffset : h.StackMapsOffset+h.StackMapsSize]
	inlTable := region[h.InlineInfoOffset : h.InlineInfoOffset+h.InlineInfoSize]
	mapRegion := region[h.DexRegisterMapOffset : h.DexRegisterMapOffset+h.DexRegisterMapSize]
	rowBits := h.StackMapRowBits()
	inlineRowBits := h.InlineRowBits()

	for i, sm := range in.StackMaps {
		if sm.HasDexRegisterMap && sm.SameDexRegisterMapAs == planner.NoMatch {
			liveCount := sm.LiveDexRegisterCount()
			locs := in.LocationIndices[sm.DexRegisterLocationsStartIndex : sm.DexRegisterLocationsStartIndex+uint32(liveCount)]
			encodeDexRegisterMap(mapRegion[sm.DexRegisterMapOffset:], sm.LiveDexRegistersMask, sm.NumDexRegisters, locs, h.CatalogEntryWidthBits)
		}

		dexRegMapOffset := h.NoDexRegisterMap
		if sm.HasDexRegisterMap {
			dexRegMapOffset = sm.DexRegisterMapOffset
		}
		inlineIndex := h.NoInlineInfo
		if sm.InliningDepth > 0 {
			inlineIndex = sm.InlineInfosStartIndex
		}

		bit := uint64(i) * uint64(rowBits)
		bit = putField(smTable, bit, h.DexPCBits, uint64(sm.DexPC))
		bit = putField(smTable, bit, h.NativePCBits, uint64(sm.NativePCCompressed))
		bit = putField(smTable, bit, h.DexRegisterMapOffsetBits, uint64(dexRegMapOffset))
		bit = putField(smTable, bit, h.InlineInfoIndexBits, uint64(inlineIndex))
		bit = putField(smTable, bit, h.DepthBits, uint64(sm.InliningDepth))
		bit = putField(smTable, bit, h.RegisterMaskIndexBits, uint64(sm.RegisterMaskIndex))
		putField(smTable, bit, h.StackMaskIndexBits, uint64(sm.StackMaskIndex))

		if sm.InliningDepth > 0 {
			start := sm.InlineInfosStartIndex
			for d := uint32(0); d < uint32(sm.InliningDepth); d++ {
				idx := start + d
				fr := in.InlineEntries[idx]
				plan := in.InlinePlans[idx]

				if plan.HasDexRegisterMap {
					liveCount := planner.LiveDexRegisterCount(fr)
					locs := in.LocationIndices[fr.DexRegisterLocationsStartIndex : fr.DexRegisterLocationsStartIndex+uint32(liveCount)]
					encodeDexRegisterMap(mapRegion[plan.DexRegisterMapOffset:], fr.LiveDexRegistersMask, fr.NumDexRegisters, locs, h.CatalogEntryWidthBits)
				}
				fdexRegMapOffset := h.NoDexRegisterMap
				if plan.HasDexRegisterMap {
					fdexRegMapOffset = plan.DexRegisterMapOffset
				}
				fdexPC := fr.DexPC
				if fdexPC == inline.NoDexPC {
					fdexPC = h.NoDexPCInline
				}

				ibit := uint64(idx) * uint64(inlineRowBits)
				tag := uint64(0)
				if fr.Method.ByHandle {
					tag = 1
				}
				ibit = putField(inlTable, ibit, 1, tag)
				ibit = putField(inlTable, ibit, h.InlineMethodIndexBits, uint64(fr.Method.Index))
				ibit = putField(inlTable, ibit, h.InlineMethodHandleBits, fr.Method.Handle)
				ibit = putField(inlTable, ibit, h.InlineDexPCBits, uint64(fdexPC))
				ibit = putField(inlTable, ibit, h.InlineNumDexRegistersBits, uint64(fr.NumDexRegisters))
				putField(inlTable, ibit, h.InlineDexRegisterMapOffsetBits, uint64(fdexRegMapOffset))
			}
		}
	}
}

// putField writes value in nbits bits at bitOffset and returns the offset
// of the next field.
func putField(region []byte, bitOffset uint64, nbits uint, value uint64) uint64 {
	bitio.PutBits(region, bitOffset, nbits, value)
	return bitOffset + uint64(nbits)
}
