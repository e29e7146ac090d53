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

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freePort grabs an ephemeral port and releases it again, leaving a port
// that very probably stays free for the duration of the test.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestClientConnectRefused(t *testing.T) {
	r, err := NewReactor()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	h := &recordingHandler{}
	cl := NewClient(r, "127.0.0.1", freePort(t), TCP, h)
	require.Error(t, cl.Connect())
	assert.False(t, cl.Connected())
	assert.Equal(t, 0, h.opens)
	assert.Equal(t, 0, h.closes)
}

func TestMonitorRetry(t *testing.T) {
	r, err := NewReactor()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	port := freePort(t)
	h := &recordingHandler{}
	cl := NewClient(r, "127.0.0.1", port, TCP, h, WithMonitor(true))

	// Nothing listening yet: the monitor keeps retrying without effect.
	r.CheckMonitored()
	r.CheckMonitored()
	assert.False(t, cl.Connected())
	assert.Equal(t, 0, h.opens)

	srv := NewServer(r, "127.0.0.1", port, TCP, nil)
	require.NoError(t, srv.Connect())

	r.CheckMonitored()
	assert.True(t, cl.Connected())
	assert.Equal(t, 1, h.opens)

	// Once connected, further checks are no-ops for this client.
	r.CheckMonitored()
	r.CheckMonitored()
	assert.Equal(t, 1, h.opens)
}

func TestClientReconnectAfterClose(t *testing.T) {
	r, err := NewReactor()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	srv := NewServer(r, "127.0.0.1", 0, TCP, nil)
	require.NoError(t, srv.Connect())
	_, portStr, err := net.SplitHostPort(srv.Addr())
	require.NoError(t, err)
	port := atoi(t, portStr)

	h := &recordingHandler{}
	cl := NewClient(r, "127.0.0.1", port, TCP, h, WithMonitor(true))
	r.CheckMonitored()
	require.True(t, cl.Connected())

	cl.Close()
	assert.False(t, cl.Connected())
	assert.Equal(t, 1, h.closes)

	r.CheckMonitored()
	assert.True(t, cl.Connected())
	assert.Equal(t, 2, h.opens)
}
