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

package codeinfo

import "fmt"

// Kind identifies where a source virtual register currently lives. Only
// the "short" (non-compressed) kinds below are accepted by
// Stream.AddDexRegisterEntry; compression to narrower storage kinds
// happens later, inside the location catalog's own entry encoder.
type Kind uint8

const (
	// None marks a dead slot. It is never entered into the location
	// catalog.
	None Kind = iota
	InRegister
	InRegisterHigh
	InFpuRegister
	InFpuRegisterHigh
	Constant
	InStack
)

var _kindNames = [...]string{
	None:               "none",
	InRegister:         "in_register",
	InRegisterHigh:     "in_register_high",
	InFpuRegister:      "in_fpu_register",
	InFpuRegisterHigh:  "in_fpu_register_high",
	Constant:           "constant",
	InStack:            "in_stack",
}

func (k Kind) String() string {
	if int(k) < len(_kindNames) && _kindNames[k] != "" {
		return _kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsShort reports whether k is one of the short (uncompressed) kinds this
// layer accepts. Compressed kinds are an encoder-internal concept and are
// never observed here.
func (k Kind) IsShort() bool {
	return k <= InStack
}

// Location is a (kind, value) pair describing where a source virtual
// register currently resides. Two locations are equal iff both fields are
// equal.
type Location struct {
	Kind  Kind
	Value int32
}

// NoneLocation is the distinguished absent-value sentinel. It is never interned
// into a location catalog.
var NoneLocation = Location{Kind: None}

func (l Location) String() string {
	if l.Kind == None {
		return "none"
	}
	return fmt.Sprintf("%s(%d)", l.Kind, l.Value)
}
