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
	"github.com/cloudwego/codeinfo/internal/planner"
)

// decodedStackMap and decodedInlineFrame mirror exactly the fields
// encodeStackMapsAndInline wrote, in the same field order, so Verify can
// walk a region without any state but the Header it read back.
type decodedStackMap struct {
	DexPC                uint32
	NativePCCompressed   uint32
	DexRegisterMapOffset uint32
	HasDexRegisterMap    bool
	InlineInfoIndex      uint32
	HasInlineInfo        bool
	Depth                uint32
	RegisterMaskIndex    uint32
	StackMaskIndex       uint32
}

type decodedInlineFrame struct {
	ByHandle             bool
	MethodIndex          uint32
	MethodHandle         uint64
	DexPC                uint32
	HasDexPC             bool
	NumDexRegisters      uint32
	DexRegisterMapOffset uint32
	HasDexRegisterMap    bool
}

func getField(region []byte, bitOffset uint64, nbits uint) (uint64, uint64) {
	return bitio.GetBits(region, bitOffset, nbits), bitOffset + uint64(nbits)
}

func decodeStackMap(smTable []byte, h *planner.Header, i int) decodedStackMap {
	bit := uint64(i) * uint64(h.StackMapRowBits())
	var d decodedStackMap
	var v uint64

	v, bit = getField(smTable, bit, h.DexPCBits)
	d.DexPC = uint32(v)
	v, bit = getField(smTable, bit, h.NativePCBits)
	d.NativePCCompressed = uint32(v)
	v, bit = getField(smTable, bit, h.DexRegisterMapOffsetBits)
	d.DexRegisterMapOffset = uint32(v)
	d.HasDexRegisterMap = h.DexRegisterMapOffsetBits == 0 || d.DexRegisterMapOffset != h.NoDexRegisterMap
	v, bit = getField(smTable, bit, h.InlineInfoIndexBits)
	d.InlineInfoIndex = uint32(v)
	if h.InlineInfoIndexBits == 0 {
		d.HasInlineInfo = h.NumInlineInfos > 0
	} else {
		d.HasInlineInfo = d.InlineInfoIndex != h.NoInlineInfo
	}
	v, bit = getField(smTable, bit, h.DepthBits)
	d.Depth = uint32(v)
	v, bit = getField(smTable, bit, h.RegisterMaskIndexBits)
	d.RegisterMaskIndex = uint32(v)
	v, _ = getField(smTable, bit, h.StackMaskIndexBits)
	d.StackMaskIndex = uint32(v)
	return d
}

func decodeInlineFrame(inlTable []byte, h *planner.Header, idx uint32) decodedInlineFrame {
	bit := uint64(idx) * uint64(h.InlineRowBits())
	var d decodedInlineFrame
	var v uint64

	v, bit = getField(inlTable, bit, 1)
	d.ByHandle = v != 0
	v, bit = getField(inlTable, bit, h.InlineMethodIndexBits)
	d.MethodIndex = uint32(v)
	v, bit = getField(inlTable, bit, h.InlineMethodHandleBits)
	d.MethodHandle = v
	v, bit = getField(inlTable, bit, h.InlineDexPCBits)
	d.DexPC = uint32(v)
	d.HasDexPC = h.InlineDexPCBits == 0 || d.DexPC != h.NoDexPCInline
	v, bit = getField(inlTable, bit, h.InlineNumDexRegistersBits)
	d.NumDexRegisters = uint32(v)
	v, _ = getField(inlTable, bit, h.InlineDexRegisterMapOffsetBits)
	d.DexRegisterMapOffset = uint32(v)
	d.HasDexRegisterMap = h.InlineDexRegisterMapOffsetBits == 0 || d.DexRegisterMapOffset != h.NoDexRegisterMap
	return d
}

// decodeStackMaskEntry returns the padded byte-packed mask stored at dedup
// index i of the stack-mask table, mirroring encodeStackMaskTable.
func decodeStackMaskEntry(stackMaskTable []byte, entryBytes int, i int) []byte {
	return stackMaskTable[i*entryBytes : (i+1)*entryBytes]
}

// decodeRegisterMaskEntry returns the register-mask value stored at dedup
// index i of the register-mask table, mirroring encodeRegisterMaskTable.
func decodeRegisterMaskEntry(regMaskTable []byte, h *planner.Header, i int) uint32 {
	v, _ := getField(regMaskTable, uint64(i)*uint64(h.RegisterMaskBits), h.RegisterMaskBits)
	return uint32(v)
}

// decodeDexRegisterMap reads back a map's live bitmask and per-live-slot
// catalog indices, mirroring encodeDexRegisterMap.
func decodeDexRegisterMap(mapRegion []byte, offset uint32, numDexRegisters uint16, liveCount int, catalogEntryWidthBits uint) (liveMask []byte, locIndices []uint32) {
	region := mapRegion[offset:]
	maskBytes := bitio.BytesForBits(uint32(numDexRegisters))
	liveMask = region[:maskBytes]
	rest := region[maskBytes:]
	locIndices = make([]uint32, liveCount)
	for i := range locIndices {
		locIndices[i] = uint32(bitio.GetBits(rest, uint64(i)*uint64(catalogEntryWidthBits), catalogEntryWidthBits))
	}
	return
}
