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

// Package debug exposes process-wide statistics about the dedup tables
// every Stream builds against: hit/miss counts for the location catalog
// and the three dedup tables (dex-register map, stack mask, register
// mask). The counters are process-global, not per-Stream, since they are
// meant for eyeballing cache effectiveness across a whole build rather
// than for driving any decision the encoder itself makes.
package debug

import (
	"github.com/cloudwego/codeinfo/internal/catalog"
	"github.com/cloudwego/codeinfo/internal/dexmap"
	"github.com/cloudwego/codeinfo/internal/regmask"
	"github.com/cloudwego/codeinfo/internal/stackmask"
)

// Stats records statistics about interning and deduplication across every
// Stream built in this process.
type Stats struct {
	Catalog      CacheStats
	DexMap       CacheStats
	StackMask    CacheStats
	RegisterMask CacheStats
}

// CacheStats records hit/miss counts for one dedup table.
type CacheStats struct {
	Hit  int
	Miss int
}

// GetStats returns statistics for every dedup table codeinfo maintains.
func GetStats() Stats {
	return Stats{
		Catalog: CacheStats{
			Hit:  int(catalog.HitCount),
			Miss: int(catalog.MissCount),
		},
		DexMap: CacheStats{
			Hit:  int(dexmap.HitCount),
			Miss: int(dexmap.MissCount),
		},
		StackMask: CacheStats{
			Hit:  int(stackmask.HitCount),
			Miss: int(stackmask.MissCount),
		},
		RegisterMask: CacheStats{
			Hit:  int(regmask.HitCount),
			Miss: int(regmask.MissCount),
		},
	}
}
