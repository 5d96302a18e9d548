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

package dexmap

import "sync/atomic"

// NoMatch is returned by FindOrRecord when no earlier entry has an
// identical dex-register map.
const NoMatch = -1

// HitCount and MissCount tally FindOrRecord calls across every Index in
// the process, for debug.GetStats. A hit found an earlier entry with an
// identical map; a miss recorded a new one.
var (
	HitCount  uint64
	MissCount uint64
)

// Index maps a dex-register-map hash to the stack-map indices that might
// have produced it. It is deliberately hash-bucketed rather than a single
// hash -> index map, because the hash is not collision-free.
type Index struct {
	buckets map[uint32][]int
}

// New returns an empty Index.
func New() *Index {
	return &Index{buckets: make(map[uint32][]int)}
}

// FindOrRecord looks for a prior entry with the same dex-register map as
// the entry identified by currentID, whose hash is the given hash.
// equal(candidateID) is invoked for every earlier entry recorded under
// this hash, oldest first, and must perform the real structural
// comparison (live-mask equality plus pointwise catalog-index equality)
// since a hash match alone does not prove the maps are identical.
//
// On a hit, the earliest matching index is returned and currentID is NOT
// added to the bucket (later entries should still be able to match the
// original, not a middle link in a chain). On a miss, currentID is
// appended to the bucket for future lookups to consider.
func (ix *Index) FindOrRecord(hash uint32, currentID int, equal func(candidateID int) bool) (match int) {
	bucket, ok := ix.buckets[hash]
	if !ok {
		ix.buckets[hash] = []int{currentID}
		atomic.AddUint64(&MissCount, 1)
		return NoMatch
	}

	for _, id := range bucket {
		if equal(id) {
			atomic.AddUint64(&HitCount, 1)
			return id
		}
	}

	ix.buckets[hash] = append(bucket, currentID)
	atomic.AddUint64(&MissCount, 1)
	return NoMatch
}
