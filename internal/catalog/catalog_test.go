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

package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternDeduplicates(t *testing.T) {
	c := New()
	i1, ok1 := c.Intern(Location{Kind: 1, Value: 3})
	i2, ok2 := c.Intern(Location{Kind: 2, Value: 16})
	i3, ok3 := c.Intern(Location{Kind: 1, Value: 3})

	require.True(t, ok1)
	require.True(t, ok2)
	require.True(t, ok3)
	require.EqualValues(t, 0, i1)
	require.EqualValues(t, 1, i2)
	require.Equal(t, i1, i3, "re-interning an identical location must return the same index")
	require.Equal(t, 2, c.Len())
}

func TestInternNoneIsNeverAdded(t *testing.T) {
	c := New()
	_, ok := c.Intern(Location{Kind: noneKind})
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}

func TestEntryWidthBits(t *testing.T) {
	require.EqualValues(t, 0, EntryWidthBits(0))
	require.EqualValues(t, 0, EntryWidthBits(1))
	require.EqualValues(t, 1, EntryWidthBits(2))
	require.EqualValues(t, 2, EntryWidthBits(3))
	require.EqualValues(t, 2, EntryWidthBits(4))
	require.EqualValues(t, 3, EntryWidthBits(5))
}

func TestEntryRoundTrip(t *testing.T) {
	cases := []Location{
		{Kind: 1, Value: 0},
		{Kind: 1, Value: 15},
		{Kind: 2, Value: 16},
		{Kind: 3, Value: -1},
		{Kind: 6, Value: 1 << 20},
	}
	for _, loc := range cases {
		buf := make([]byte, 5)
		n := WriteEntry(buf, loc)
		require.Equal(t, EntrySize(loc), n)
		got, m := ReadEntry(buf)
		require.Equal(t, n, m)
		require.Equal(t, loc, got)
	}
}

func TestEncodedSizeMatchesEntrySizeSum(t *testing.T) {
	c := New()
	c.Intern(Location{Kind: 1, Value: 3})
	c.Intern(Location{Kind: 2, Value: 1 << 10})

	want := FixedHeaderSize
	for _, e := range c.Entries() {
		want += EntrySize(e)
	}
	require.Equal(t, want, c.EncodedSize())
}
