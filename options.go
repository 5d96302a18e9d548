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
	"fmt"

	"github.com/cloudwego/codeinfo/internal/opts"
)

// Option is the property setter function for a Stream's configuration.
type Option func(*opts.Options)

// WithVerify enables the debug Verifier: FillIn will, after writing the
// region, decode every field back through the same contract a runtime
// decoder would use and panic on the first mismatch. This is expensive
// (it walks the whole table a second time) and is meant for compiler
// development, not production builds.
func WithVerify(v bool) Option {
	return func(o *opts.Options) { o.Verify = v }
}

// WithMaxInlineDepth caps how many inline frames a single stack map may
// carry before BeginInlineInfoEntry panics. Set to 0 to disable the
// limit.
//
// The default is opts.DefaultMaxInlineDepth.
func WithMaxInlineDepth(depth int) Option {
	if depth < 0 {
		panic(fmt.Sprintf("codeinfo: invalid max inline depth: %d", depth))
	}
	return func(o *opts.Options) { o.MaxInlineDepth = depth }
}
