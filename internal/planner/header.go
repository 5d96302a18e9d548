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

import "github.com/cloudwego/codeinfo/internal/bitio"

// FixedHeaderSize is the byte size of the region's own self-describing
// header: every Header field below, serialized as a little-endian
// uint32 by internal/codec, in declaration order.
const FixedHeaderSize = 4 * 33

// Header describes every field's bit width and every sub-table's absolute
// byte offset from the start of the serialized region. internal/codec
// writes exactly this shape at region[0:FixedHeaderSize] and a decoder
// needs only these numbers to read everything that follows.
type Header struct {
	NumStackMaps   uint32
	NumInlineInfos uint32

	// Outer stack-map row field widths, in bits.
	DexPCBits                uint
	NativePCBits             uint
	DexRegisterMapOffsetBits uint
	InlineInfoIndexBits      uint
	DepthBits                uint
	RegisterMaskIndexBits    uint
	StackMaskIndexBits       uint

	// Inline-info row field widths, in bits.
	InlineMethodIndexBits          uint
	InlineMethodHandleBits         uint
	InlineDexPCBits                uint
	InlineNumDexRegistersBits      uint
	InlineDexRegisterMapOffsetBits uint

	// Shared field widths.
	CatalogEntryWidthBits uint
	StackMaskBitsWidth    uint32
	RegisterMaskBits      uint

	// Sentinels, computed alongside the bit widths that must have
	// headroom for them.
	NoDexRegisterMap uint32
	NoInlineInfo     uint32
	NoDexPCInline    uint32

	// Absolute byte offsets and sizes, from region start.
	CatalogOffset           uint32
	CatalogSize             uint32
	DexRegisterMapOffset    uint32
	DexRegisterMapSize      uint32
	StackMapsOffset         uint32
	StackMapsSize           uint32
	InlineInfoOffset        uint32
	InlineInfoSize          uint32
	StackMaskTableOffset    uint32
	StackMaskTableSize      uint32
	RegisterMaskTableOffset uint32
	RegisterMaskTableSize   uint32

	TotalSize uint32
}

// StackMapRowBits is the total bit width of one bit-packed stack-map row.
func (h *Header) StackMapRowBits() uint {
	return h.DexPCBits + h.NativePCBits + h.DexRegisterMapOffsetBits +
		h.InlineInfoIndexBits + h.DepthBits + h.RegisterMaskIndexBits + h.StackMaskIndexBits
}

// InlineRowBits is the total bit width of one bit-packed inline-info row.
func (h *Header) InlineRowBits() uint {
	return 1 + h.InlineMethodIndexBits + h.InlineMethodHandleBits +
		h.InlineDexPCBits + h.InlineNumDexRegistersBits + h.InlineDexRegisterMapOffsetBits
}

// widthWithSentinel returns a bit width wide enough to hold every real
// value in [0, maxReal]. When hasSentinel is true it also leaves the
// all-ones value of that width free to serve as a sentinel distinct from
// every real value. When hasSentinel is false no headroom is reserved:
// the result is plain MinimumBitsToStore(maxReal), which is zero bits for
// maxReal 0.
func widthWithSentinel(maxReal uint64, hasSentinel bool) uint {
	bits := bitio.MinimumBitsToStore(maxReal)
	if !hasSentinel {
		return bits
	}
	if bits == 0 || maxReal == (uint64(1)<<bits)-1 {
		bits++
	}
	return bits
}

func sentinelOf(bits uint) uint32 {
	if bits == 0 {
		return 0
	}
	if bits >= 32 {
		return 0xFFFFFFFF
	}
	return uint32(1)<<bits - 1
}

