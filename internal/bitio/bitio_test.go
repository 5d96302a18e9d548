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

package bitio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinimumBitsToStore(t *testing.T) {
	require.EqualValues(t, 0, MinimumBitsToStore(0))
	require.EqualValues(t, 1, MinimumBitsToStore(1))
	require.EqualValues(t, 2, MinimumBitsToStore(2))
	require.EqualValues(t, 2, MinimumBitsToStore(3))
	require.EqualValues(t, 3, MinimumBitsToStore(4))
	require.EqualValues(t, 32, MinimumBitsToStore(0xFFFFFFFF))
}

func TestPutGetBitsRoundTrip(t *testing.T) {
	region := make([]byte, 64)
	offsets := []uint64{0, 1, 3, 7, 8, 9, 31, 63, 127, 200}
	widths := []uint{1, 3, 5, 7, 8, 13, 17, 32}

	bit := uint64(0)
	type field struct {
		off, width uint64
		val        uint64
	}
	var fields []field
	for i, w := range widths {
		off := offsets[i%len(offsets)] + bit
		val := uint64(i*2654435761) & ((uint64(1) << w) - 1)
		PutBits(region, off, uint(w), val)
		fields = append(fields, field{off, uint64(w), val})
		bit += uint64(w) + 3
	}
	for _, f := range fields {
		got := GetBits(region, f.off, uint(f.width))
		require.Equal(t, f.val, got)
	}
}

func TestPutBitsDoesNotClobberNeighbors(t *testing.T) {
	region := make([]byte, 4)
	for i := range region {
		region[i] = 0xFF
	}
	PutBits(region, 4, 4, 0x0)
	require.Equal(t, byte(0x0F), region[0])
	require.Equal(t, byte(0xFF), region[1])
}

func TestSetTestBit(t *testing.T) {
	region := make([]byte, 2)
	SetBit(region, 3, true)
	SetBit(region, 9, true)
	require.True(t, TestBit(region, 3))
	require.True(t, TestBit(region, 9))
	require.False(t, TestBit(region, 4))
	SetBit(region, 3, false)
	require.False(t, TestBit(region, 3))
}

func TestBytesForBits(t *testing.T) {
	require.EqualValues(t, 0, BytesForBits(0))
	require.EqualValues(t, 1, BytesForBits(1))
	require.EqualValues(t, 1, BytesForBits(8))
	require.EqualValues(t, 2, BytesForBits(9))
}
