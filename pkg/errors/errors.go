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

// Package errors defines common errors for netcore.
package errors

import "errors"

var (
	// ErrAddressResolution occurs when a host/port lookup yields no usable candidate.
	ErrAddressResolution = errors.New("netcore: address resolution yielded no candidate")
	// ErrUnsupportedProtocol occurs when trying to use a protocol tag other than tcp/tcp6/udp/udp6.
	ErrUnsupportedProtocol = errors.New("netcore: only tcp, tcp6, udp and udp6 are supported")
	// ErrConnClosed occurs when operating on an already closed connection.
	ErrConnClosed = errors.New("netcore: connection is closed")
)
