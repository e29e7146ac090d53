// Copyright (c) 2026 The Netcore Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build linux || freebsd || dragonfly || darwin

package netcore

import "fmt"

type terminatorKind uint8

const (
	collectKind terminatorKind = iota
	fixedKind
	delimiterKind
)

// Terminator is the framing rule of a connection. The zero value is
// collect mode: received bytes accumulate in the inbound buffer and the
// application drains them with Peek/Discard. A fixed-length rule emits
// exactly one frame and then reverts to collect mode, so the handler must
// install the next rule (typically from inside OnFrame). A delimiter rule
// emits a frame for every occurrence of the delimiter.
type Terminator struct {
	kind   terminatorKind
	length int
	delim  []byte
}

// Collect returns the rule that frames nothing and only accumulates.
func Collect() Terminator {
	return Terminator{}
}

// FixedLength returns the rule that emits the next n received bytes as a
// single frame. A non-positive n degrades to Collect.
func FixedLength(n int) Terminator {
	if n <= 0 {
		return Terminator{}
	}
	return Terminator{kind: fixedKind, length: n}
}

// Delimiter returns the rule that emits a frame for each occurrence of d,
// with d stripped. An empty delimiter degrades to Collect.
func Delimiter(d []byte) Terminator {
	if len(d) == 0 {
		return Terminator{}
	}
	return Terminator{kind: delimiterKind, delim: append([]byte(nil), d...)}
}

// String describes the rule, for logs.
func (t Terminator) String() string {
	switch t.kind {
	case fixedKind:
		return fmt.Sprintf("fixed(%d)", t.length)
	case delimiterKind:
		return fmt.Sprintf("delimiter(%q)", t.delim)
	default:
		return "collect"
	}
}
