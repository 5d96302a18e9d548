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

package regmask

import "strings"

// calleeSavedOrder lists the callee-saved general-purpose x86-64 register
// names in the bit order this package assumes a register mask uses: bit
// i set means calleeSavedOrder[i] holds a live reference.
var calleeSavedOrder = [...]string{"RBX", "RBP", "R12", "R13", "R14", "R15"}

// DescribeX86_64 renders a register mask as the names of the callee-saved
// registers it marks live, for debug logging and test failure output. It
// has no effect on encoding: the mask itself is stored as a plain
// integer, this is purely a human-readable rendering of it.
func DescribeX86_64(mask uint32) string {
	if mask == 0 {
		return "{}"
	}
	var names []string
	for i, name := range calleeSavedOrder {
		if mask&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	for i := len(calleeSavedOrder); i < 32; i++ {
		if mask&(1<<uint(i)) != 0 {
			names = append(names, "?")
		}
	}
	return "{" + strings.Join(names, ", ") + "}"
}
