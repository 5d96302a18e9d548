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

// Package codeinfo builds the stack-map side table emitted alongside a
// compiled method's native code: one entry per safepoint, describing
// where every live source virtual register currently lives, which CPU
// registers and stack slots hold references, and (when the safepoint is
// inside an inlined callee) the chain of inlined frames above it.
//
// Usage is strictly Begin/Add/End, in program order, for one method's
// compilation:
//
//	s := codeinfo.New(isa.X86_64)
//	s.BeginStackMapEntry(dexPC, nativePC, regMask, spMask, numRegs, depth)
//	s.AddDexRegisterEntry(codeinfo.InRegister, 3)
//	// ... one Add per declared register ...
//	s.EndStackMapEntry()
//	// ... repeat for every safepoint ...
//	size := s.PrepareForFillIn()
//	s.FillIn(make([]byte, size))
//	s.Close()
//
// A Stream is single-writer: it is owned by one compilation and is not
// safe for concurrent use.
package codeinfo

import (
	"github.com/cloudwego/codeinfo/internal/bitio"
	"github.com/cloudwego/codeinfo/internal/catalog"
	"github.com/cloudwego/codeinfo/internal/codec"
	"github.com/cloudwego/codeinfo/internal/dexmap"
	"github.com/cloudwego/codeinfo/internal/inline"
	"github.com/cloudwego/codeinfo/internal/isa"
	"github.com/cloudwego/codeinfo/internal/opts"
	"github.com/cloudwego/codeinfo/internal/planner"
	"github.com/cloudwego/codeinfo/internal/regmask"
	"github.com/cloudwego/codeinfo/internal/stackmask"
)

// frameKind distinguishes an open outer stack-map frame from an open
// inline frame; both share the same live-register bookkeeping.
type frameKind uint8

const (
	frameOuter frameKind = iota
	frameInline
)

// openFrame is the currently-open frame's live state: the per-frame
// register counter and hasher the design notes call out as belonging to
// the frame, not to the Stream as a whole.
type openFrame struct {
	kind             frameKind
	numDexRegisters  uint16
	count            uint16
	liveMask         []byte
	hasher           dexmap.Hasher
	startIndex       uint32

	// outer-only
	dexPC              uint32
	nativePCCompressed uint32
	registerMask       uint32
	stackMaskBits      []uint32
	inliningDepth      uint8
	inlineAdded        uint8
	inlineStartIndex   uint32

	// inline-only
	method      MethodRef
	inlineDexPC uint32
}

// Stream is the streaming stack-map builder. Create one with New, drive
// it through Begin/Add/End calls, then PrepareForFillIn and FillIn.
type Stream struct {
	opts opts.Options

	catalog   *catalog.Catalog
	dexIndex  *dexmap.Index
	inlineBuf *inline.Buffer

	stackMaps       []*planner.StackMapEntry
	locationIndices []uint32

	outer *openFrame
	inl   *openFrame

	dexFileSet bool
	dexFile    DexFileID

	stackMaskTable *stackmask.Table
	regMaskTable   *regmask.Table

	header      *planner.Header
	inlinePlans []planner.InlineFramePlan
	encodeInput codec.EncodeInput
	prepared    bool
	filledIn    bool
}

// New returns an empty Stream targeting the given instruction set.
func New(iset isa.Set, options ...Option) *Stream {
	o := opts.Defaults()
	o.InstructionSet = iset
	for _, opt := range options {
		opt(&o)
	}
	return &Stream{
		opts:      o,
		catalog:   catalog.New(),
		dexIndex:  dexmap.New(),
		inlineBuf: inline.New(),
	}
}

// BeginStackMapEntry opens a new stack-map entry. It fails if an entry is
// already open.
func (s *Stream) BeginStackMapEntry(dexPC uint32, nativePCOffset uint32, registerMask uint32, spMask *BitSet, numDexRegisters uint16, inliningDepth uint8) {
	if s.prepared {
		fail("BeginStackMapEntry", "builder is already prepared for FillIn")
	}
	if s.outer != nil {
		fail("BeginStackMapEntry", "an entry is already open")
	}

	var stackMaskBits []uint32
	if spMask != nil {
		stackMaskBits = spMask.Positions()
	}

	s.outer = &openFrame{
		kind:               frameOuter,
		numDexRegisters:    numDexRegisters,
		liveMask:           make([]byte, bitio.BytesForBits(uint32(numDexRegisters))),
		startIndex:         uint32(len(s.locationIndices)),
		dexPC:              dexPC,
		nativePCCompressed: s.opts.InstructionSet.Compress(nativePCOffset),
		registerMask:       registerMask,
		stackMaskBits:      stackMaskBits,
		inliningDepth:      inliningDepth,
	}
}

// AddDexRegisterEntry appends one virtual-register location to whichever
// frame is currently open (an inline frame if one is open, else the
// outer frame). kind == None means "dead slot": it still advances the
// per-frame register counter but is never interned into the catalog.
func (s *Stream) AddDexRegisterEntry(kind Kind, value int32) {
	f := s.activeFrame()
	if f == nil {
		fail("AddDexRegisterEntry", "no stack-map or inline entry is open")
	}
	if f.count >= f.numDexRegisters {
		fail("AddDexRegisterEntry", "more registers added than the declared num_dex_registers (%d)", f.numDexRegisters)
	}

	position := uint32(f.count)
	if kind != None {
		idx, _ := s.catalog.Intern(catalog.Location{Kind: catalog.Kind(kind), Value: value})
		s.locationIndices = append(s.locationIndices, idx)
		bitio.SetBit(f.liveMask, position, true)
		f.hasher.Add(int(position), uint8(kind), value)
	}
	f.count++
}

// EndStackMapEntry closes the outer frame. It fails if the number of
// registers added does not equal the Begin call's num_dex_registers, or
// if fewer inline frames were added than the declared inlining_depth.
func (s *Stream) EndStackMapEntry() {
	f := s.outer
	if f == nil {
		fail("EndStackMapEntry", "no stack-map entry is open")
	}
	if f.count != f.numDexRegisters {
		fail("EndStackMapEntry", "added %d registers, declared %d", f.count, f.numDexRegisters)
	}
	if f.inlineAdded != f.inliningDepth {
		fail("EndStackMapEntry", "added %d inline frames, declared %d", f.inlineAdded, f.inliningDepth)
	}

	sameAs := dexmap.NoMatch
	if f.numDexRegisters > 0 {
		currentID := len(s.stackMaps)
		hash := f.hasher.Sum()
		sameAs = s.dexIndex.FindOrRecord(hash, currentID, func(candidateID int) bool {
			return s.dexMapsEqual(candidateID, f)
		})
	}

	s.stackMaps = append(s.stackMaps, &planner.StackMapEntry{
		DexPC:                          f.dexPC,
		NativePCCompressed:             f.nativePCCompressed,
		RegisterMask:                   f.registerMask,
		StackMaskBits:                  f.stackMaskBits,
		NumDexRegisters:                f.numDexRegisters,
		InliningDepth:                  f.inliningDepth,
		DexRegisterLocationsStartIndex: f.startIndex,
		InlineInfosStartIndex:          f.inlineStartIndex,
		LiveDexRegistersMask:           f.liveMask,
		DexRegisterMapHash:             f.hasher.Sum(),
		SameDexRegisterMapAs:           sameAs,
	})
	s.outer = nil
}

// dexMapsEqual reports whether stack map candidateID's outer dex-register
// map is bit-for-bit identical to the currently open outer frame f: same
// declared register count, same live bitmask, and pointwise-equal
// catalog indices for every live register.
func (s *Stream) dexMapsEqual(candidateID int, f *openFrame) bool {
	cand := s.stackMaps[candidateID]
	if cand.NumDexRegisters != f.numDexRegisters {
		return false
	}
	for i, b := range cand.LiveDexRegistersMask {
		if b != f.liveMask[i] {
			return false
		}
	}
	liveCount := cand.LiveDexRegisterCount()
	candLocs := s.locationIndices[cand.DexRegisterLocationsStartIndex : cand.DexRegisterLocationsStartIndex+uint32(liveCount)]
	curLocs := s.locationIndices[f.startIndex : f.startIndex+uint32(liveCount)]
	for i := range candLocs {
		if candLocs[i] != curLocs[i] {
			return false
		}
	}
	return true
}

// BeginInlineInfoEntry opens a new inline frame nested inside the
// currently open outer stack-map entry. It fails if no stack-map entry
// is open, if another inline frame is already open, or if depth or
// dex-file consistency checks fail.
func (s *Stream) BeginInlineInfoEntry(method MethodRef, dexPC uint32, numDexRegisters uint16, outerDexFile DexFileID) {
	if s.outer == nil {
		fail("BeginInlineInfoEntry", "must be opened inside a stack-map entry")
	}
	if s.inl != nil {
		fail("BeginInlineInfoEntry", "inline entries may not nest inside one another")
	}
	if s.opts.MaxInlineDepth > 0 && int(s.outer.inlineAdded) >= s.opts.MaxInlineDepth {
		fail("BeginInlineInfoEntry", "inline depth exceeds configured maximum (%d)", s.opts.MaxInlineDepth)
	}
	if dexPC != inline.NoDexPC {
		if !s.dexFileSet {
			s.dexFile, s.dexFileSet = outerDexFile, true
		} else if s.dexFile != outerDexFile {
			fail("BeginInlineInfoEntry", "cross-dex-file inlining is not supported")
		}
	}

	s.inl = &openFrame{
		kind:            frameInline,
		numDexRegisters: numDexRegisters,
		liveMask:        make([]byte, bitio.BytesForBits(uint32(numDexRegisters))),
		startIndex:      uint32(len(s.locationIndices)),
		method:          method,
		inlineDexPC:     dexPC,
	}
}

// EndInlineInfoEntry closes the currently open inline frame.
func (s *Stream) EndInlineInfoEntry() {
	f := s.inl
	if f == nil {
		fail("EndInlineInfoEntry", "no inline entry is open")
	}
	if f.count != f.numDexRegisters {
		fail("EndInlineInfoEntry", "added %d registers, declared %d", f.count, f.numDexRegisters)
	}

	if s.outer.inlineAdded == 0 {
		s.outer.inlineStartIndex = s.inlineBuf.StartIndex()
	}
	s.inlineBuf.Put(inline.Entry{
		Method: inline.Method{
			ByHandle: f.method.ByHandle,
			Index:    f.method.Index,
			Handle:   f.method.Handle,
		},
		DexPC:                          f.inlineDexPC,
		NumDexRegisters:                f.numDexRegisters,
		DexRegisterLocationsStartIndex: f.startIndex,
		LiveDexRegistersMask:           f.liveMask,
	})
	s.outer.inlineAdded++
	s.inl = nil
}

func (s *Stream) activeFrame() *openFrame {
	if s.inl != nil {
		return s.inl
	}
	return s.outer
}

// PrepareForFillIn runs the Plan phase: it dedups stack and register
// masks, computes every field's bit width and every sub-table's byte
// offset, and returns the exact size FillIn's region argument must be.
// It must be called exactly once, with no entry left open.
func (s *Stream) PrepareForFillIn() int {
	if s.prepared {
		fail("PrepareForFillIn", "already called")
	}
	if s.outer != nil || s.inl != nil {
		fail("PrepareForFillIn", "an entry is still open")
	}

	var maxStackMaskBit uint32
	for _, sm := range s.stackMaps {
		for _, pos := range sm.StackMaskBits {
			if pos+1 > maxStackMaskBit {
				maxStackMaskBit = pos + 1
			}
		}
	}

	s.stackMaskTable = stackmask.New(maxStackMaskBit, len(s.stackMaps))
	s.regMaskTable = regmask.New()
	for _, sm := range s.stackMaps {
		sm.StackMaskIndex = s.stackMaskTable.Intern(sm.StackMaskBits)
		sm.RegisterMaskIndex = s.regMaskTable.Intern(sm.RegisterMask)
	}

	h, plans := planner.Plan(planner.Input{
		StackMaps:              s.stackMaps,
		InlineEntries:          s.inlineBuf.Entries(),
		CatalogLen:             s.catalog.Len(),
		CatalogEncodedSize:     s.catalog.EncodedSize(),
		StackMaskNumEntries:    s.stackMaskTable.NumEntries(),
		StackMaskEntryBytes:    int(s.stackMaskTable.BitWidth() / 8),
		StackMaskBitsWidth:     maxStackMaskBit,
		RegisterMaskNumEntries: s.regMaskTable.NumEntries(),
		RegisterMaskMax:        s.regMaskTable.Max(),
	})

	s.header = h
	s.inlinePlans = plans
	s.prepared = true
	return int(h.TotalSize)
}

// FillIn serializes the built stream into region, which must be exactly
// PrepareForFillIn's return value in length. It must be called exactly
// once, after PrepareForFillIn.
func (s *Stream) FillIn(region []byte) {
	if !s.prepared {
		fail("FillIn", "PrepareForFillIn must be called first")
	}
	if s.filledIn {
		fail("FillIn", "already called")
	}
	if uint32(len(region)) != s.header.TotalSize {
		fail("FillIn", "region size %d does not match PrepareForFillIn's return value %d", len(region), s.header.TotalSize)
	}

	s.encodeInput = codec.EncodeInput{
		Header:            s.header,
		Catalog:           s.catalog,
		LocationIndices:   s.locationIndices,
		StackMaps:         s.stackMaps,
		InlineEntries:     s.inlineBuf.Entries(),
		InlinePlans:       s.inlinePlans,
		StackMaskTable:    s.stackMaskTable,
		RegisterMaskTable: s.regMaskTable,
	}
	codec.Encode(region, s.encodeInput)
	s.filledIn = true

	if s.opts.Verify {
		if errs := s.Verify(region); len(errs) > 0 {
			fail("FillIn", "%s", errs[0].Error())
		}
	}
}

// Verify decodes region (as built by FillIn) back through the same
// contract a runtime decoder would use and reports every field that
// fails to round-trip, rather than panicking on the first one. It is the
// data-returning counterpart to WithVerify(true), for a caller's own
// test or CI harness to inspect the full list of mismatches. It must be
// called after FillIn.
func (s *Stream) Verify(region []byte) []VerifyError {
	if !s.filledIn {
		fail("Verify", "FillIn must be called first")
	}

	mismatches := codec.Verify(region, s.encodeInput, codec.VerifyOptions{InstructionSet: s.opts.InstructionSet})
	if len(mismatches) == 0 {
		return nil
	}
	errs := make([]VerifyError, len(mismatches))
	for i, m := range mismatches {
		errs[i] = VerifyError{StackMap: m.StackMap, InlineDepth: m.InlineDepth, Field: m.Field, Want: m.Want, Got: m.Got}
	}
	return errs
}

// Close releases the Stream's backing buffers. The Stream must not be
// used afterwards.
func (s *Stream) Close() {
	if s.stackMaskTable != nil {
		s.stackMaskTable.Close()
		s.stackMaskTable = nil
	}
}
