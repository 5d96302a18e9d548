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

// Package opts holds the tunables of a Stream, set through codeinfo's
// functional options. Kept as its own internal package, mirroring the
// teacher's internal/opts, so both the root package and internal/codec
// can see the resolved configuration without an import cycle.
package opts

import "github.com/cloudwego/codeinfo/internal/isa"

const (
	// DefaultMaxInlineDepth bounds how many inline frames a single stack
	// map may carry before BeginInlineInfoEntry panics. Zero disables
	// the limit.
	DefaultMaxInlineDepth = 32
)

// Options collects every Stream tunable.
type Options struct {
	InstructionSet isa.Set
	Verify         bool
	MaxInlineDepth int
}

// Defaults returns the baseline configuration used when codeinfo.New is
// called with no options.
func Defaults() Options {
	return Options{
		InstructionSet: isa.Host(),
		Verify:         false,
		MaxInlineDepth: DefaultMaxInlineDepth,
	}
}
