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

// Package netcore is a single-threaded, readiness-driven networking core:
// a reactor multiplexing many TCP/UDP sockets over epoll/kqueue, buffered
// connections with terminator-based message framing, and thin Server and
// Client roles with monitor-driven reconnection.
//
// One goroutine owns a Reactor and everything registered with it. The
// embedding application drives the loop itself:
//
//	r, _ := netcore.NewReactor()
//	...
//	for {
//		r.CheckMonitored()
//		if err := r.RunOnce(time.Second); err != nil {
//			break
//		}
//	}
//
// Connections never block: Send only queues chunks, and the reactor asks
// for write readiness only while a connection has pending output.
package netcore

// Protocol selects the address family and socket type of an endpoint.
type Protocol string

const (
	// TCP is a stream socket over IPv4.
	TCP Protocol = "tcp"
	// TCP6 is a stream socket over IPv6.
	TCP6 Protocol = "tcp6"
	// UDP is a datagram socket over IPv4.
	UDP Protocol = "udp"
	// UDP6 is a datagram socket over IPv6.
	UDP6 Protocol = "udp6"
)

// IsStream reports whether the protocol is connection-oriented.
func (p Protocol) IsStream() bool {
	return p == TCP || p == TCP6
}

// network maps the protocol tag to the resolver network name.
func (p Protocol) network() string {
	if p == TCP {
		return "tcp4"
	}
	if p == UDP {
		return "udp4"
	}
	return string(p)
}

// EventHandler receives the lifecycle callbacks of a connection. All
// callbacks run on the reactor goroutine; they must not block.
type EventHandler interface {
	// OnOpen fires once, right after the connection becomes live.
	OnOpen(c *Conn)

	// OnClose fires once, during Close, before the socket is released.
	OnClose(c *Conn)

	// OnFrame fires once per message extracted by the current terminator
	// rule. The frame is only valid until the next reactor cycle; copy it
	// if you need to keep it.
	OnFrame(c *Conn, frame []byte)
}

// BuiltinEventHandler is a no-op EventHandler. Embed it to implement only
// the callbacks you care about.
type BuiltinEventHandler struct{}

// OnOpen fires once, right after the connection becomes live.
func (*BuiltinEventHandler) OnOpen(_ *Conn) {}

// OnClose fires once, during Close, before the socket is released.
func (*BuiltinEventHandler) OnClose(_ *Conn) {}

// OnFrame fires once per message extracted by the current terminator rule.
func (*BuiltinEventHandler) OnFrame(_ *Conn, _ []byte) {}

// Endpoint is anything the reactor can reconnect on demand: a Server
// rebinds its listening socket, a Client redials its peer.
type Endpoint interface {
	// Connected reports whether the endpoint is currently live.
	Connected() bool

	// Connect attempts to (re-)establish the endpoint. Failures are
	// logged by the endpoint itself; the error is informational for
	// direct callers and ignored by the monitor.
	Connect() error
}
