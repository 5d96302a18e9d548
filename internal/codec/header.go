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

// Package codec is the Serializer and Verifier: it turns a planner.Header
// plus everything the collect phase accumulated into bytes, and can read
// those bytes back through the same field layout to confirm they
// round-trip.
package codec

import (
	"encoding/binary"

	"github.com/cloudwego/codeinfo/internal/planner"
)

// WriteHeader serializes h as 33 little-endian uint32 words into
// region[0:planner.FixedHeaderSize], in the field order below. ReadHeader
// must decode the same fields in the same order.
func WriteHeader(region []byte, h *planner.Header) {
	vals := [...]uint32{
		h.NumStackMaps,
		h.NumInlineInfos,
		uint32(h.DexPCBits),
		uint32(h.NativePCBits),
		uint32(h.DexRegisterMapOffsetBits),
		uint32(h.InlineInfoIndexBits),
		uint32(h.DepthBits),
		uint32(h.RegisterMaskIndexBits),
		uint32(h.StackMaskIndexBits),
		uint32(h.InlineMethodIndexBits),
		uint32(h.InlineMethodHandleBits),
		uint32(h.InlineDexPCBits),
		uint32(h.InlineNumDexRegistersBits),
		uint32(h.InlineDexRegisterMapOffsetBits),
		uint32(h.CatalogEntryWidthBits),
		h.StackMaskBitsWidth,
		uint32(h.RegisterMaskBits),
		h.NoDexRegisterMap,
		h.NoInlineInfo,
		h.NoDexPCInline,
		h.CatalogOffset,
		h.CatalogSize,
		h.DexRegisterMapOffset,
		h.DexRegisterMapSize,
		h.StackMapsOffset,
		h.StackMapsSize,
		h.InlineInfoOffset,
		h.InlineInfoSize,
		h.StackMaskTableOffset,
		h.StackMaskTableSize,
		h.RegisterMaskTableOffset,
		h.RegisterMaskTableSize,
		h.TotalSize,
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint32(region[i*4:i*4+4], v)
	}
}

// ReadHeader is the inverse of WriteHeader.
func ReadHeader(region []byte) *planner.Header {
	w := func(i int) uint32 { return binary.LittleEndian.Uint32(region[i*4 : i*4+4]) }
	h := &planner.Header{
		NumStackMaps:                   w(0),
		NumInlineInfos:                 w(1),
		DexPCBits:                      uint(w(2)),
		NativePCBits:                   uint(w(3)),
		DexRegisterMapOffsetBits:       uint(w(4)),
		InlineInfoIndexBits:            uint(w(5)),
		DepthBits:                      uint(w(6)),
		RegisterMaskIndexBits:          uint(w(7)),
		StackMaskIndexBits:             uint(w(8)),
		InlineMethodIndexBits:          uint(w(9)),
		InlineMethodHandleBits:         uint(w(10)),
		InlineDexPCBits:                uint(w(11)),
		InlineNumDexRegistersBits:      uint(w(12)),
		InlineDexRegisterMapOffsetBits: uint(w(13)),
		CatalogEntryWidthBits:          uint(w(14)),
		StackMaskBitsWidth:             w(15),
		RegisterMaskBits:               uint(w(16)),
		NoDexRegisterMap:               w(17),
		NoInlineInfo:                   w(18),
		NoDexPCInline:                  w(19),
		CatalogOffset:                  w(20),
		CatalogSize:                    w(21),
		DexRegisterMapOffset:           w(22),
		DexRegisterMapSize:             w(23),
		StackMapsOffset:                w(24),
		StackMapsSize:                  w(25),
		InlineInfoOffset:               w(26),
		InlineInfoSize:                 w(27),
		StackMaskTableOffset:           w(28),
		StackMaskTableSize:             w(29),
		RegisterMaskTableOffset:        w(30),
		RegisterMaskTableSize:          w(31),
		TotalSize:                      w(32),
	}
	return h
}
