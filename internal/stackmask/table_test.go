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

package stackmask

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternDeduplicatesIdenticalMasks(t *testing.T) {
	tbl := New(18, 4)
	defer tbl.Close()

	a := tbl.Intern([]uint32{3})
	b := tbl.Intern([]uint32{17})
	c := tbl.Intern([]uint32{3})
	d := tbl.Intern(nil)

	require.Equal(t, a, c)
	require.NotEqual(t, a, b)
	require.NotEqual(t, a, d)
	require.Equal(t, 3, tbl.NumEntries())
}

func TestEntryIsZeroExtendedToCommonWidth(t *testing.T) {
	tbl := New(18, 2)
	defer tbl.Close()

	idx := tbl.Intern([]uint32{17})
	entry := tbl.Entry(idx)
	require.EqualValues(t, (18+7)/8, len(entry))
	for b := uint32(0); b < 18; b++ {
		want := b == 17
		got := entry[b/8]&(1<<(b%8)) != 0
		require.Equal(t, want, got, "bit %d", b)
	}
}

func TestNilMaskIsAllZero(t *testing.T) {
	tbl := New(8, 1)
	defer tbl.Close()

	idx := tbl.Intern(nil)
	entry := tbl.Entry(idx)
	for _, b := range entry {
		require.Zero(t, b)
	}
}
