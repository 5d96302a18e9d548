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

// Package isa describes the target instruction sets a Stream can be built
// for. The only thing that varies per instruction set at this layer is the
// code-alignment quantum used to compress native PC offsets.
package isa

import "fmt"

// Set identifies a target instruction set.
type Set uint8

const (
	X86 Set = iota
	X86_64
	ARM
	ARM64
	MIPS
	MIPS64
)

var _names = [...]string{
	X86:    "x86",
	X86_64: "x86_64",
	ARM:    "arm",
	ARM64:  "arm64",
	MIPS:   "mips",
	MIPS64: "mips64",
}

func (s Set) String() string {
	if int(s) < len(_names) && _names[s] != "" {
		return _names[s]
	}
	return fmt.Sprintf("isa.Set(%d)", uint8(s))
}

// alignment is the code-alignment quantum (in bytes) for each instruction
// set: native PC offsets are always a multiple of this value, so they are
// stored divided down by it ("compressed").
var _alignment = [...]uint32{
	X86:    1,
	X86_64: 1,
	ARM:    2,
	ARM64:  4,
	MIPS:   4,
	MIPS64: 4,
}

// Lookup resolves a Set by name. Unlike a contract violation on the Stream
// API, an unknown instruction-set name is ordinary caller-decidable data:
// it does not indicate a bug in the calling compiler by itself.
func Lookup(name string) (Set, error) {
	for s, n := range _names {
		if n == name {
			return Set(s), nil
		}
	}
	return 0, fmt.Errorf("isa: unknown instruction set %q", name)
}

// CodeAlignment returns the code-alignment quantum for the instruction set,
// in bytes.
func (s Set) CodeAlignment() uint32 {
	if int(s) >= len(_alignment) {
		panic(fmt.Sprintf("isa: invalid instruction set %d", uint8(s)))
	}
	return _alignment[s]
}

// Compress divides a raw native PC offset down by the code-alignment
// quantum. The maximum used for stack-map field-width sizing is always
// this compressed value, never the raw offset.
func (s Set) Compress(nativePCOffset uint32) uint32 {
	a := s.CodeAlignment()
	if nativePCOffset%a != 0 {
		panic(fmt.Sprintf("isa: native pc offset %d is not aligned to %d bytes for %s", nativePCOffset, a, s))
	}
	return nativePCOffset / a
}

// Decompress is the inverse of Compress, used by the Verifier to round-trip
// a stored compressed offset back to a raw native PC offset.
func (s Set) Decompress(compressed uint32) uint32 {
	return compressed * s.CodeAlignment()
}
