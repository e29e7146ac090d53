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

package socket

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/homebus/netcore/pkg/errors"
)

func TestListenEphemeralPort(t *testing.T) {
	fd, addr, err := Listen("tcp4", "127.0.0.1", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = unix.Close(fd) })

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
	assert.NotEqual(t, "0", port)
}

func TestDialStream(t *testing.T) {
	lfd, addr, err := Listen("tcp4", "127.0.0.1", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = unix.Close(lfd) })

	tcpAddr, err := net.ResolveTCPAddr("tcp4", addr)
	require.NoError(t, err)

	fd, peer, err := Dial("tcp4", "127.0.0.1", tcpAddr.Port)
	require.NoError(t, err)
	t.Cleanup(func() { _ = unix.Close(fd) })
	assert.Equal(t, addr, peer)
}

func TestDialRefused(t *testing.T) {
	// Bind-then-close leaves a port with nothing listening.
	lfd, addr, err := Listen("tcp4", "127.0.0.1", 0)
	require.NoError(t, err)
	tcpAddr, err := net.ResolveTCPAddr("tcp4", addr)
	require.NoError(t, err)
	require.NoError(t, unix.Close(lfd))

	fd, _, err := Dial("tcp4", "127.0.0.1", tcpAddr.Port)
	require.Error(t, err)
	assert.Equal(t, -1, fd)
}

func TestListenDatagram(t *testing.T) {
	fd, addr, err := Listen("udp4", "127.0.0.1", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = unix.Close(fd) })
	assert.NotEmpty(t, addr)
}

func TestUnsupportedNetwork(t *testing.T) {
	fd, _, err := Listen("unix", "/tmp/sock", 0)
	assert.ErrorIs(t, err, errors.ErrUnsupportedProtocol)
	assert.Equal(t, -1, fd)
}

func TestResolutionFailure(t *testing.T) {
	fd, _, err := Dial("tcp4", "host.invalid", 4711)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAddressResolution)
	assert.Equal(t, -1, fd)
}

func TestFamilyMismatch(t *testing.T) {
	// An IPv4 literal cannot resolve under an IPv6-only network.
	_, _, err := Listen("tcp6", "127.0.0.1", 0)
	require.Error(t, err)
}
