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

import "fmt"

// ContractError is the panic payload for every API-contract violation:
// mismatched Begin/End pairs, a register count that disagrees with the
// Begin call, inline entries opened outside a stack map or nested inside
// one another, and a FillIn region of the wrong size. These can only
// happen because of a bug in the calling compiler, never because of
// malformed external input, so they are panics rather than returned
// errors.
type ContractError struct {
	Op     string
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("codeinfo: %s: %s", e.Op, e.Reason)
}

func fail(op, format string, args ...interface{}) {
	panic(&ContractError{Op: op, Reason: fmt.Sprintf(format, args...)})
}

// VerifyError is returned by Verify (never panicked) when a built region
// fails to round-trip through the decode contract. Unlike ContractError,
// this indicates a bug in the encoder itself, not in the caller, so it is
// reported as data for the caller's test or CI harness to act on.
type VerifyError struct {
	StackMap    int
	InlineDepth int // -1 when the mismatch is not inside an inline frame
	Field       string
	Want, Got   interface{}
}

func (e *VerifyError) Error() string {
	if e.InlineDepth >= 0 {
		return fmt.Sprintf("codeinfo: verify: stack map %d, inline depth %d: %s: want %v, got %v",
			e.StackMap, e.InlineDepth, e.Field, e.Want, e.Got)
	}
	return fmt.Sprintf("codeinfo: verify: stack map %d: %s: want %v, got %v",
		e.StackMap, e.Field, e.Want, e.Got)
}
