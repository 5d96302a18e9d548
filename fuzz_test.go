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

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/codeinfo/internal/isa"
)

// randDexRegisterKind picks a legal, non-None short Kind: dead registers
// are exercised deliberately (see randStackMap), not via a random None
// draw that would silently thin out live registers.
func randDexRegisterKind() Kind {
	choices := []Kind{InRegister, InRegisterHigh, InFpuRegister, InFpuRegisterHigh, Constant, InStack}
	return choices[gofakeit.Number(0, len(choices)-1)]
}

// randStackMap drives one BeginStackMapEntry/.../EndStackMapEntry cycle
// with randomized but always-legal field values, optionally nesting a
// randomized run of inline frames. Every inline frame names the same
// dexFile.
func randStackMap(t *testing.T, s *Stream, iset isa.Set, dexFile DexFileID) {
	t.Helper()

	numRegs := uint16(gofakeit.Number(0, 6))
	depth := uint8(0)
	if gofakeit.Bool() {
		depth = uint8(gofakeit.Number(1, 3))
	}

	sp := NewBitSet()
	if gofakeit.Bool() {
		for i := 0; i < gofakeit.Number(0, 4); i++ {
			sp.Set(uint32(gofakeit.Number(0, 31)))
		}
	}

	align := iset.CodeAlignment()
	nativePC := uint32(gofakeit.Number(0, 1<<20)) / align * align

	s.BeginStackMapEntry(
		uint32(gofakeit.Number(0, 1<<20)),
		nativePC,
		uint32(gofakeit.Number(0, 1<<16)),
		sp,
		numRegs,
		depth,
	)

	for i := uint16(0); i < numRegs; i++ {
		if gofakeit.Number(0, 3) == 0 {
			s.AddDexRegisterEntry(None, 0)
			continue
		}
		s.AddDexRegisterEntry(randDexRegisterKind(), int32(gofakeit.Number(-1<<20, 1<<20)))
	}

	for d := uint8(0); d < depth; d++ {
		var method MethodRef
		if gofakeit.Bool() {
			method = ByIndex(uint32(gofakeit.Number(0, 1<<16)))
		} else {
			method = ByHandle(uint64(gofakeit.Number(0, 1<<30)))
		}
		inlineNumRegs := uint16(gofakeit.Number(0, 4))
		dexPC := uint32(gofakeit.Number(0, 1<<16))
		if gofakeit.Number(0, 4) == 0 {
			dexPC = inlineNoDexPC()
		}

		s.BeginInlineInfoEntry(method, dexPC, inlineNumRegs, dexFile)
		for i := uint16(0); i < inlineNumRegs; i++ {
			s.AddDexRegisterEntry(randDexRegisterKind(), int32(gofakeit.Number(-1000, 1000)))
		}
		s.EndInlineInfoEntry()
	}

	s.EndStackMapEntry()
}

// TestFuzzRandomLegalSequencesRoundTrip builds many randomized legal call
// sequences, each with the debug Verifier enabled, so a single mismatch
// between what was collected and what got serialized panics the test
// instead of passing silently.
func TestFuzzRandomLegalSequencesRoundTrip(t *testing.T) {
	sets := []isa.Set{isa.X86_64, isa.ARM64, isa.ARM}
	for run := 0; run < 25; run++ {
		iset := sets[gofakeit.Number(0, len(sets)-1)]
		s := New(iset, WithVerify(true))
		dexFile := DexFileID(gofakeit.Number(1, 3))

		numStackMaps := gofakeit.Number(0, 8)
		for i := 0; i < numStackMaps; i++ {
			randStackMap(t, s, iset, dexFile)
		}

		size := s.PrepareForFillIn()
		region := make([]byte, size)

		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Logf("run %d (%s, %d stack maps) panicked:", run, iset, numStackMaps)
					spew.Dump(s.stackMaps)
					t.Fatalf("FillIn panicked: %v", r)
				}
			}()
			s.FillIn(region)
		}()

		require.Equal(t, numStackMaps, len(s.stackMaps))
		s.Close()
	}
}
