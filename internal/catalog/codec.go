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

package catalog

import "encoding/binary"

const wideFlag = 1 << 7

// WriteEntry writes loc at region[0:EntrySize(loc)] and returns the number
// of bytes written. Byte 0 packs the 3-bit kind in the low bits; bit 7
// marks the wide form. The narrow form inlines the value in bits 3..6 of
// the same byte; the wide form follows with 4 little-endian value bytes.
func WriteEntry(region []byte, loc Location) int {
	if fitsNarrow(loc.Value) {
		region[0] = byte(loc.Kind&0x7) | byte(loc.Value)<<3
		return 1
	}
	region[0] = byte(loc.Kind&0x7) | wideFlag
	binary.LittleEndian.PutUint32(region[1:5], uint32(loc.Value))
	return 5
}

// ReadEntry decodes a single entry starting at region[0] and returns the
// location plus the number of bytes consumed.
func ReadEntry(region []byte) (Location, int) {
	b := region[0]
	kind := Kind(b & 0x7)
	if b&wideFlag == 0 {
		return Location{Kind: kind, Value: int32(b >> 3)}, 1
	}
	v := binary.LittleEndian.Uint32(region[1:5])
	return Location{Kind: kind, Value: int32(v)}, 5
}

// WriteHeader writes the catalog's fixed header (currently just the entry
// count) into region[0:FixedHeaderSize].
func WriteHeader(region []byte, numEntries uint32) {
	binary.LittleEndian.PutUint32(region[0:4], numEntries)
}

// ReadHeader reads the entry count back out of a catalog's fixed header.
func ReadHeader(region []byte) uint32 {
	return binary.LittleEndian.Uint32(region[0:4])
}
