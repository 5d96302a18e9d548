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

package planner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWidthWithSentinelNoSentinelNeeded(t *testing.T) {
	require.EqualValues(t, 0, widthWithSentinel(0, false))
	require.EqualValues(t, 2, widthWithSentinel(3, false))
}

func TestWidthWithSentinelBumpsForHeadroom(t *testing.T) {
	// maxReal 0 with a sentinel needed: naive width is 0 bits, which
	// leaves no room for a distinct sentinel value, so it must bump to 1.
	require.EqualValues(t, 1, widthWithSentinel(0, true))

	// maxReal 3 needs 2 bits and already exhausts every value of that
	// width (0..3), so a sentinel forces a third bit.
	require.EqualValues(t, 3, widthWithSentinel(3, true))

	// maxReal 2 fits in 2 bits with one value (3) left over for the
	// sentinel, so no bump is needed.
	require.EqualValues(t, 2, widthWithSentinel(2, true))
}

func TestSentinelOfIsAllOnesOfWidth(t *testing.T) {
	require.EqualValues(t, 0, sentinelOf(0))
	require.EqualValues(t, 1, sentinelOf(1))
	require.EqualValues(t, 7, sentinelOf(3))
	require.EqualValues(t, 0xFFFFFFFF, sentinelOf(32))
}

func TestRowBitsSumFields(t *testing.T) {
	h := &Header{
		DexPCBits:                4,
		NativePCBits:             5,
		DexRegisterMapOffsetBits: 6,
		InlineInfoIndexBits:      2,
		DepthBits:                3,
		RegisterMaskIndexBits:    1,
		StackMaskIndexBits:       1,
	}
	require.EqualValues(t, 22, h.StackMapRowBits())

	h2 := &Header{
		InlineMethodIndexBits:          8,
		InlineMethodHandleBits:         0,
		InlineDexPCBits:                10,
		InlineNumDexRegistersBits:      4,
		InlineDexRegisterMapOffsetBits: 6,
	}
	require.EqualValues(t, 1+8+0+10+4+6, h2.InlineRowBits())
}
