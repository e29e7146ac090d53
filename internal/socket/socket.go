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

// Package socket creates raw sockets from a host/port/network triple.
// A lookup resolves to exactly one address, the first candidate matching
// the requested family and socket type; no candidate at all surfaces as
// errors.ErrAddressResolution. The networks understood here are tcp4,
// tcp6, udp4 and udp6.
package socket

import (
	"os"

	"golang.org/x/sys/unix"
)

// Listen resolves host:port for the given network, creates a socket,
// sets SO_REUSEADDR, binds it and, for stream networks, starts listening
// with the maximum backlog. The returned fd is non-blocking; addr is the
// textual address actually bound (relevant for ephemeral ports).
func Listen(network, host string, port int) (fd int, addr string, err error) {
	spec, err := resolveSockaddr(network, host, port)
	if err != nil {
		return -1, "", err
	}
	if fd, err = sysSocket(spec.family, spec.sotype); err != nil {
		return -1, "", err
	}
	defer func() {
		if err != nil {
			_ = unix.Close(fd)
			fd = -1
		}
	}()

	if err = setReuseAddr(fd, 1); err != nil {
		return
	}
	if spec.family == unix.AF_INET6 {
		if err = setIPv6Only(fd, 1); err != nil {
			return
		}
	}
	if err = os.NewSyscallError("bind", unix.Bind(fd, spec.sa)); err != nil {
		return
	}
	if spec.sotype == unix.SOCK_STREAM {
		if err = os.NewSyscallError("listen", unix.Listen(fd, listenerBacklogMaxSize)); err != nil {
			return
		}
	}
	if err = os.NewSyscallError("setnonblock", unix.SetNonblock(fd, true)); err != nil {
		return
	}
	if sa, e := unix.Getsockname(fd); e == nil {
		addr = SockaddrToString(sa)
	}
	return
}

// Dial resolves host:port for the given network, creates a socket and
// connects it. The connect itself is blocking so that a failure (e.g.
// connection refused) is reported synchronously; the fd is switched to
// non-blocking afterwards. addr is the textual peer address.
func Dial(network, host string, port int) (fd int, addr string, err error) {
	spec, err := resolveSockaddr(network, host, port)
	if err != nil {
		return -1, "", err
	}
	if fd, err = sysSocket(spec.family, spec.sotype); err != nil {
		return -1, "", err
	}
	defer func() {
		if err != nil {
			_ = unix.Close(fd)
			fd = -1
		}
	}()

	if err = os.NewSyscallError("connect", unix.Connect(fd, spec.sa)); err != nil {
		return
	}
	if err = os.NewSyscallError("setnonblock", unix.SetNonblock(fd, true)); err != nil {
		return
	}
	addr = SockaddrToString(spec.sa)
	return
}
