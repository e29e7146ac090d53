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

// Package netpoll wraps the platform readiness facility (epoll on Linux,
// kqueue on the BSDs and Darwin) behind one small poller API. Unlike a
// self-running poll loop, Poll performs a single bounded wait per call;
// the caller drives the cycle cadence.
package netpoll

// IOEvent is a platform-independent readiness event mask.
type IOEvent uint32

const (
	// EventRead indicates the fd is readable.
	EventRead IOEvent = 1 << iota
	// EventWrite indicates the fd is writable.
	EventWrite
	// EventErr indicates a hangup or error condition on the fd.
	EventErr
)

const initPollEventsCap = 128
