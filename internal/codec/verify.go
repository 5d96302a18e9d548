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
	"bytes"
	"fmt"

	"github.com/cloudwego/codeinfo/internal/inline"
	"github.com/cloudwego/codeinfo/internal/isa"
	"github.com/cloudwego/codeinfo/internal/planner"
)

// Mismatch describes one field that failed to round-trip. Verify never
// panics; it is the caller's job (the root Stream) to decide what a
// non-empty mismatch list means for its own API contract.
type Mismatch struct {
	StackMap    int
	InlineDepth int // -1 when the mismatch is not inside an inline frame
	Field       string
	Want, Got   interface{}
}

func (m Mismatch) String() string {
	if m.InlineDepth >= 0 {
		return fmt.Sprintf("stack map %d, inline depth %d: %s: want %v, got %v", m.StackMap, m.InlineDepth, m.Field, m.Want, m.Got)
	}
	return fmt.Sprintf("stack map %d: %s: want %v, got %v", m.StackMap, m.Field, m.Want, m.Got)
}

// VerifyOptions configures the optional native-code sanity check.
type VerifyOptions struct {
	InstructionSet isa.Set
	NativeCode     []byte // nil disables the instruction-boundary check
}

// Verify re-reads region through the same field layout Encode wrote and
// confirms every stack map and every inlined frame decodes back to what
// EncodeInput said it should be. It is the region-level analogue of a
// decoder's read path, used only for debug-time self-checking.
func Verify(region []byte, in EncodeInput, vo VerifyOptions) []Mismatch {
	h := ReadHeader(region)
	var mismatches []Mismatch

	smTable := region[h.StackMapsOffset : h.StackMapsOffset+h.StackMapsSize]
	inlTable := region[h.InlineInfoOffset : h.InlineInfoOffset+h.InlineInfoSize]
	mapRegion := region[h.DexRegisterMapOffset : h.DexRegisterMapOffset+h.DexRegisterMapSize]
	stackMaskTable := region[h.StackMaskTableOffset : h.StackMaskTableOffset+h.StackMaskTableSize]
	regMaskTable := region[h.RegisterMaskTableOffset : h.RegisterMaskTableOffset+h.RegisterMaskTableSize]
	stackMaskEntryBytes := int(in.StackMaskTable.BitWidth() / 8)

	for i, sm := range in.StackMaps {
		got := decodeStackMap(smTable, h, i)

		if got.DexPC != sm.DexPC {
			mismatches = append(mismatches, Mismatch{i, -1, "dex_pc", sm.DexPC, got.DexPC})
		}
		if wantNative := sm.NativePCCompressed; got.NativePCCompressed != wantNative {
			mismatches = append(mismatches, Mismatch{i, -1, "native_pc_compressed", wantNative, got.NativePCCompressed})
		} else if vo.NativeCode != nil && vo.InstructionSet == isa.X86_64 {
			raw := vo.InstructionSet.Decompress(got.NativePCCompressed)
			if !isa.LooksLikeInstructionBoundary(vo.NativeCode, raw) {
				mismatches = append(mismatches, Mismatch{i, -1, "native_pc_instruction_boundary", true, false})
			}
		}
		if got.RegisterMaskIndex != uint32(sm.RegisterMaskIndex) {
			mismatches = append(mismatches, Mismatch{i, -1, "register_mask_index", sm.RegisterMaskIndex, got.RegisterMaskIndex})
		} else if gotRegisterMask := decodeRegisterMaskEntry(regMaskTable, h, sm.RegisterMaskIndex); gotRegisterMask != sm.RegisterMask {
			mismatches = append(mismatches, Mismatch{i, -1, "register_mask", sm.RegisterMask, gotRegisterMask})
		}
		if got.StackMaskIndex != uint32(sm.StackMaskIndex) {
			mismatches = append(mismatches, Mismatch{i, -1, "stack_mask_index", sm.StackMaskIndex, got.StackMaskIndex})
		} else {
			wantStackMask := make([]byte, stackMaskEntryBytes)
			for _, b := range sm.StackMaskBits {
				wantStackMask[b/8] |= 1 << (b % 8)
			}
			if gotStackMask := decodeStackMaskEntry(stackMaskTable, stackMaskEntryBytes, sm.StackMaskIndex); !bytes.Equal(gotStackMask, wantStackMask) {
				mismatches = append(mismatches, Mismatch{i, -1, "stack_mask_bits", wantStackMask, gotStackMask})
			}
		}
		if got.HasDexRegisterMap != sm.HasDexRegisterMap {
			mismatches = append(mismatches, Mismatch{i, -1, "has_dex_register_map", sm.HasDexRegisterMap, got.HasDexRegisterMap})
		} else if sm.HasDexRegisterMap {
			liveCount := sm.LiveDexRegisterCount()
			wantLocs := in.LocationIndices[sm.DexRegisterLocationsStartIndex : sm.DexRegisterLocationsStartIndex+uint32(liveCount)]
			gotMask, gotLocs := decodeDexRegisterMap(mapRegion, got.DexRegisterMapOffset, sm.NumDexRegisters, liveCount, h.CatalogEntryWidthBits)
			if !bytes.Equal(gotMask, sm.LiveDexRegistersMask[:len(gotMask)]) {
				mismatches = append(mismatches, Mismatch{i, -1, "live_dex_registers_mask", sm.LiveDexRegistersMask, gotMask})
			}
			if !equalUint32(wantLocs, gotLocs) {
				mismatches = append(mismatches, Mismatch{i, -1, "dex_register_map_locations", wantLocs, gotLocs})
			}
		}

		wantHasInline := sm.InliningDepth > 0
		if got.HasInlineInfo != wantHasInline {
			mismatches = append(mismatches, Mismatch{i, -1, "has_inline_info", wantHasInline, got.HasInlineInfo})
			continue
		}
		if !wantHasInline {
			continue
		}
		if got.Depth != uint32(sm.InliningDepth) {
			mismatches = append(mismatches, Mismatch{i, -1, "inlining_depth", sm.InliningDepth, got.Depth})
		}

		start := sm.InlineInfosStartIndex
		for d := uint32(0); d < uint32(sm.InliningDepth); d++ {
			idx := start + d
			fr := in.InlineEntries[idx]
			plan := in.InlinePlans[idx]
			gotFr := decodeInlineFrame(inlTable, h, idx)

			if gotFr.ByHandle != fr.Method.ByHandle {
				mismatches = append(mismatches, Mismatch{i, int(d), "inline_method_by_handle", fr.Method.ByHandle, gotFr.ByHandle})
			} else if fr.Method.ByHandle {
				if gotFr.MethodHandle != fr.Method.Handle {
					mismatches = append(mismatches, Mismatch{i, int(d), "inline_method_handle", fr.Method.Handle, gotFr.MethodHandle})
				}
			} else if gotFr.MethodIndex != fr.Method.Index {
				mismatches = append(mismatches, Mismatch{i, int(d), "inline_method_index", fr.Method.Index, gotFr.MethodIndex})
			}

			wantDexPC, wantHasDexPC := fr.DexPC, true
			if wantDexPC == inline.NoDexPC {
				wantHasDexPC = false
			}
			if gotFr.HasDexPC != wantHasDexPC || (wantHasDexPC && gotFr.DexPC != wantDexPC) {
				mismatches = append(mismatches, Mismatch{i, int(d), "inline_dex_pc", fr.DexPC, gotFr.DexPC})
			}

			if gotFr.HasDexRegisterMap != plan.HasDexRegisterMap {
				mismatches = append(mismatches, Mismatch{i, int(d), "inline_has_dex_register_map", plan.HasDexRegisterMap, gotFr.HasDexRegisterMap})
			} else if plan.HasDexRegisterMap {
				liveCount := planner.LiveDexRegisterCount(fr)
				wantLocs := in.LocationIndices[fr.DexRegisterLocationsStartIndex : fr.DexRegisterLocationsStartIndex+uint32(liveCount)]
				gotMask, gotLocs := decodeDexRegisterMap(mapRegion, gotFr.DexRegisterMapOffset, fr.NumDexRegisters, liveCount, h.CatalogEntryWidthBits)
				if !bytes.Equal(gotMask, fr.LiveDexRegistersMask[:len(gotMask)]) {
					mismatches = append(mismatches, Mismatch{i, int(d), "inline_live_dex_registers_mask", fr.LiveDexRegistersMask, gotMask})
				}
				if !equalUint32(wantLocs, gotLocs) {
					mismatches = append(mismatches, Mismatch{i, int(d), "inline_dex_register_map_locations", wantLocs, gotLocs})
				}
			}
		}
	}

	return mismatches
}

func equalUint32(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
