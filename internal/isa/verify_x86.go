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

package isa

import (
	"golang.org/x/arch/x86/x86asm"
)

// LooksLikeInstructionBoundary reports whether code[offset:] decodes as a
// valid x86-64 instruction. It is a best-effort sanity check used by the
// Verifier when the caller supplies the generated machine code alongside
// the stack-map table: a safepoint recorded mid-instruction is a compiler
// bug that pure round-trip decoding of the stack-map table itself can
// never catch, since the table only ever stores what the compiler told it.
//
// This is not part of any hot path; it runs only when codec.Verify is
// given native code through VerifyOptions.NativeCode. Stream.Verify and
// FillIn never supply native code, so they do not run this check.
func LooksLikeInstructionBoundary(code []byte, offset uint32) bool {
	if int(offset) >= len(code) {
		return false
	}
	_, err := x86asm.Decode(code[offset:], 64)
	return err == nil
}
