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

package isa

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// Host returns a reasonable default instruction set for the machine this
// process is running on. It is only a default: a caller compiling for a
// different target must pass an explicit isa.Set to codeinfo.New.
func Host() Set {
	switch runtime.GOARCH {
	case "amd64":
		return X86_64
	case "386":
		return X86
	case "arm64":
		return ARM64
	case "arm":
		return ARM
	case "mips64", "mips64le":
		return MIPS64
	case "mips", "mipsle":
		return MIPS
	default:
		return X86_64
	}
}

// HostDescription returns a short human-readable description of the host
// CPU, for inclusion in diagnostics when a Stream is built with the
// default (host) instruction set. It has no effect on Set selection.
func HostDescription() string {
	c := cpuid.CPU
	if c.BrandName == "" {
		return "unknown CPU"
	}
	return c.BrandName
}
