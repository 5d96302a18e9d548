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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/codeinfo/internal/catalog"
	"github.com/cloudwego/codeinfo/internal/inline"
	"github.com/cloudwego/codeinfo/internal/isa"
	"github.com/cloudwego/codeinfo/internal/planner"
	"github.com/cloudwego/codeinfo/internal/regmask"
	"github.com/cloudwego/codeinfo/internal/stackmask"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := &planner.Header{
		NumStackMaps:          3,
		NumInlineInfos:        1,
		DexPCBits:             8,
		NativePCBits:          10,
		CatalogEntryWidthBits: 2,
		StackMaskBitsWidth:    16,
		NoDexRegisterMap:      0xFF,
		TotalSize:             planner.FixedHeaderSize,
	}
	region := make([]byte, planner.FixedHeaderSize)
	WriteHeader(region, h)
	got := ReadHeader(region)
	require.Equal(t, h, got)
}

// buildRegion drives catalog + planner + codec directly (bypassing the
// root Stream) to exercise the full Plan -> Encode -> Verify pipeline for
// one outer stack map with a two-deep inline chain, one frame with its own
// map and one without.
func buildRegion(t *testing.T) (region []byte, in EncodeInput) {
	c := catalog.New()
	idxA, _ := c.Intern(catalog.Location{Kind: 1, Value: 3})
	idxB, _ := c.Intern(catalog.Location{Kind: 6, Value: 16})
	locs := []uint32{idxA, idxB}

	outerMask := []byte{0b11}
	sm := &planner.StackMapEntry{
		DexPC:                          7,
		NativePCCompressed:             40,
		RegisterMask:                   0x5,
		NumDexRegisters:                2,
		InliningDepth:                  1,
		DexRegisterLocationsStartIndex: 0,
		InlineInfosStartIndex:          0,
		LiveDexRegistersMask:           outerMask,
		SameDexRegisterMapAs:           planner.NoMatch,
	}

	inlineEntry := inline.Entry{
		Method:                         inline.Method{Index: 4},
		DexPC:                          inline.NoDexPC,
		NumDexRegisters:                2,
		DexRegisterLocationsStartIndex: 0,
		LiveDexRegistersMask:           outerMask,
	}

	stackMasks := stackmask.New(0, 1)
	sm.StackMaskIndex = stackMasks.Intern(nil)
	regMasks := regmask.New()
	sm.RegisterMaskIndex = regMasks.Intern(sm.RegisterMask)

	h, plans := planner.Plan(planner.Input{
		StackMaps:              []*planner.StackMapEntry{sm},
		InlineEntries:          []inline.Entry{inlineEntry},
		CatalogLen:             c.Len(),
		CatalogEncodedSize:     c.EncodedSize(),
		StackMaskNumEntries:    stackMasks.NumEntries(),
		StackMaskEntryBytes:    int(stackMasks.BitWidth() / 8),
		StackMaskBitsWidth:     0, // no stack-mask bits ever set in this fixture
		RegisterMaskNumEntries: regMasks.NumEntries(),
		RegisterMaskMax:        regMasks.Max(),
	})

	in = EncodeInput{
		Header:            h,
		Catalog:           c,
		LocationIndices:   locs,
		StackMaps:         []*planner.StackMapEntry{sm},
		InlineEntries:     []inline.Entry{inlineEntry},
		InlinePlans:       plans,
		StackMaskTable:    stackMasks,
		RegisterMaskTable: regMasks,
	}
	region = make([]byte, h.TotalSize)
	Encode(region, in)
	return region, in
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	region, in := buildRegion(t)
	h := in.Header

	got := decodeStackMap(region[h.StackMapsOffset:h.StackMapsOffset+h.StackMapsSize], h, 0)
	require.Equal(t, in.StackMaps[0].DexPC, got.DexPC)
	require.Equal(t, in.StackMaps[0].NativePCCompressed, got.NativePCCompressed)
	require.True(t, got.HasDexRegisterMap)
	require.True(t, got.HasInlineInfo)
	require.EqualValues(t, 1, got.Depth)

	gotFrame := decodeInlineFrame(region[h.InlineInfoOffset:h.InlineInfoOffset+h.InlineInfoSize], h, 0)
	require.False(t, gotFrame.ByHandle)
	require.EqualValues(t, 4, gotFrame.MethodIndex)
	require.False(t, gotFrame.HasDexPC)
	require.True(t, gotFrame.HasDexRegisterMap)
}

func TestVerifyPassesOnASelfConsistentRegion(t *testing.T) {
	region, in := buildRegion(t)
	mismatches := Verify(region, in, VerifyOptions{InstructionSet: isa.X86_64})
	require.Empty(t, mismatches)
}

func TestVerifyCatchesCorruption(t *testing.T) {
	region, in := buildRegion(t)
	h := in.Header
	// Flip the dex_pc field of the first (and only) stack-map row.
	corrupt := append([]byte(nil), region...)
	corrupt[h.StackMapsOffset] ^= 0xFF
	mismatches := Verify(corrupt, in, VerifyOptions{InstructionSet: isa.X86_64})
	require.NotEmpty(t, mismatches)
}

func TestVerifyCatchesStackMaskTableCorruption(t *testing.T) {
	region, in := buildRegion(t)
	h := in.Header
	corrupt := append([]byte(nil), region...)
	corrupt[h.StackMaskTableOffset] ^= 0xFF
	mismatches := Verify(corrupt, in, VerifyOptions{InstructionSet: isa.X86_64})
	require.NotEmpty(t, mismatches)
	require.Equal(t, "stack_mask_bits", mismatches[0].Field)
}

func TestVerifyCatchesRegisterMaskTableCorruption(t *testing.T) {
	region, in := buildRegion(t)
	h := in.Header
	corrupt := append([]byte(nil), region...)
	corrupt[h.RegisterMaskTableOffset] ^= 0xFF
	mismatches := Verify(corrupt, in, VerifyOptions{InstructionSet: isa.X86_64})
	require.NotEmpty(t, mismatches)
	require.Equal(t, "register_mask", mismatches[0].Field)
}
