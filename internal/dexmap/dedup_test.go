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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindOrRecordFirstEntryIsAlwaysAMiss(t *testing.T) {
	ix := New()
	match := ix.FindOrRecord(42, 0, func(int) bool { return true })
	require.Equal(t, NoMatch, match)
}

func TestFindOrRecordMatchesEarliestIdenticalEntry(t *testing.T) {
	ix := New()
	maps := map[int]string{0: "A", 1: "B", 2: "A", 3: "A"}
	equalTo := func(id, candidate int) bool { return maps[id] == maps[candidate] }

	require.Equal(t, NoMatch, ix.FindOrRecord(7, 0, func(c int) bool { return equalTo(0, c) }))
	require.Equal(t, NoMatch, ix.FindOrRecord(7, 1, func(c int) bool { return equalTo(1, c) }))
	require.Equal(t, 0, ix.FindOrRecord(7, 2, func(c int) bool { return equalTo(2, c) }))
	require.Equal(t, 0, ix.FindOrRecord(7, 3, func(c int) bool { return equalTo(3, c) }))
}

func TestFindOrRecordCollisionTolerant(t *testing.T) {
	ix := New()
	// Two different maps sharing a hash: the equal callback must reject
	// the false candidate and still allow a miss to be recorded.
	require.Equal(t, NoMatch, ix.FindOrRecord(1, 0, func(int) bool { return false }))
	require.Equal(t, NoMatch, ix.FindOrRecord(1, 1, func(c int) bool { return c == 999 }))
	require.Equal(t, 1, ix.FindOrRecord(1, 2, func(c int) bool { return c == 1 }))
}
