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

// Package dexmap deduplicates dex-register maps: the per-safepoint record
// of which source virtual registers are live and, for each live one,
// which location-catalog entry describes it. The hash here is cheap and
// not collision-resistant on purpose; Index tolerates collisions by
// keeping every candidate in a bucket and comparing structurally before
// declaring a match.
package dexmap

const bitsPerByte = 8

// Hasher accumulates the incremental hash of one outer-frame dex-register
// map as registers are added to it, mirroring the accumulation the
// builder performs live during AddDexRegisterEntry rather than hashing
// the whole map in one pass at the end.
type Hasher struct {
	sum uint32
}

// Add mixes register position, kind and value into the running hash. Only
// called for live (non-None) registers; the exact formula is unimportant
// as long as it stays stable within one build, since the hash is only
// ever queried against hashes produced by this same Hasher type.
func (h *Hasher) Add(position int, kind uint8, value int32) {
	h.sum += 1 << (uint(position) % (4 * bitsPerByte))
	h.sum += uint32(value)
	h.sum += uint32(kind)
}

// Sum returns the accumulated hash.
func (h *Hasher) Sum() uint32 {
	return h.sum
}
