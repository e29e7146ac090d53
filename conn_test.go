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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	errorx "github.com/homebus/netcore/pkg/errors"
)

// recordingHandler copies every frame it sees and counts lifecycle
// callbacks. onFrame, when set, runs after the frame is recorded.
type recordingHandler struct {
	BuiltinEventHandler
	frames  [][]byte
	opens   int
	closes  int
	onFrame func(c *Conn, frame []byte)
}

func (h *recordingHandler) OnOpen(_ *Conn)  { h.opens++ }
func (h *recordingHandler) OnClose(_ *Conn) { h.closes++ }
func (h *recordingHandler) OnFrame(c *Conn, frame []byte) {
	h.frames = append(h.frames, append([]byte(nil), frame...))
	if h.onFrame != nil {
		h.onFrame(c, frame)
	}
}

func (h *recordingHandler) frameStrings() []string {
	out := make([]string, len(h.frames))
	for i, f := range h.frames {
		out[i] = string(f)
	}
	return out
}

// testPair wires one end of a socketpair into a fresh reactor and hands
// the other end to the test.
func testPair(t *testing.T, h EventHandler, opts ...Option) (*Reactor, *Conn, int) {
	t.Helper()
	r, err := NewReactor()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	require.NoError(t, unix.SetNonblock(fds[0], true))
	require.NoError(t, unix.SetNonblock(fds[1], true))

	c, err := NewConn(r, fds[0], "socketpair", h, opts...)
	require.NoError(t, err)
	peer := fds[1]
	t.Cleanup(func() { _ = unix.Close(peer) })
	return r, c, peer
}

func cycle(t *testing.T, r *Reactor, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, r.RunOnce(10*time.Millisecond))
	}
}

func peerWrite(t *testing.T, peer int, s string) {
	t.Helper()
	n, err := unix.Write(peer, []byte(s))
	require.NoError(t, err)
	require.Equal(t, len(s), n)
}

func peerRead(t *testing.T, r *Reactor, peer, want int) []byte {
	t.Helper()
	got := make([]byte, 0, want)
	deadline := time.Now().Add(5 * time.Second)
	buf := make([]byte, 4096)
	for len(got) < want && time.Now().Before(deadline) {
		cycle(t, r, 1)
		n, err := unix.Read(peer, buf)
		if err == unix.EAGAIN {
			continue
		}
		require.NoError(t, err)
		got = append(got, buf[:n]...)
	}
	return got
}

func TestDelimiterFramingFragmented(t *testing.T) {
	h := &recordingHandler{}
	r, c, peer := testPair(t, h)

	peerWrite(t, peer, "PI")
	cycle(t, r, 1)
	assert.Empty(t, h.frames)

	peerWrite(t, peer, "NG\r\nEX")
	cycle(t, r, 1)
	assert.Equal(t, []string{"PING"}, h.frameStrings())
	assert.Equal(t, 2, c.InboundBuffered())

	peerWrite(t, peer, "TRA\r\n")
	cycle(t, r, 1)
	assert.Equal(t, []string{"PING", "EXTRA"}, h.frameStrings())
	assert.Equal(t, 0, c.InboundBuffered())
}

func TestDelimiterFramingByteByByte(t *testing.T) {
	h := &recordingHandler{}
	r, _, peer := testPair(t, h)

	for _, b := range []string{"A", "B", "\r", "\n"} {
		peerWrite(t, peer, b)
		cycle(t, r, 1)
	}
	assert.Equal(t, []string{"AB"}, h.frameStrings())
}

func TestMultipleFramesInOneReceive(t *testing.T) {
	h := &recordingHandler{}
	r, c, peer := testPair(t, h)

	peerWrite(t, peer, "one\r\ntwo\r\nthree\r\n")
	cycle(t, r, 1)
	assert.Equal(t, []string{"one", "two", "three"}, h.frameStrings())
	assert.Equal(t, 0, c.InboundBuffered())
}

func TestFixedLengthFramingFiresOnce(t *testing.T) {
	h := &recordingHandler{}
	r, c, peer := testPair(t, h, WithTerminator(FixedLength(4)))

	peerWrite(t, peer, "ABCDEFG")
	cycle(t, r, 1)
	assert.Equal(t, []string{"ABCD"}, h.frameStrings())
	assert.Equal(t, 3, c.InboundBuffered())
	assert.Equal(t, Collect(), c.Terminator())

	// Without a new rule the remainder just accumulates.
	peerWrite(t, peer, "H")
	cycle(t, r, 1)
	assert.Equal(t, []string{"ABCD"}, h.frameStrings())
	assert.Equal(t, 4, c.InboundBuffered())

	c.SetTerminator(FixedLength(2))
	peerWrite(t, peer, "I")
	cycle(t, r, 1)
	assert.Equal(t, []string{"ABCD", "EF"}, h.frameStrings())
	assert.Equal(t, 3, c.InboundBuffered())
}

func TestHeaderBodyRuleSwitch(t *testing.T) {
	h := &recordingHandler{}
	h.onFrame = func(c *Conn, frame []byte) {
		if len(h.frames) == 1 {
			// Header names the body length, body follows unframed.
			c.SetTerminator(FixedLength(3))
		}
	}
	r, c, peer := testPair(t, h, WithTerminator(Delimiter([]byte("\n"))))

	peerWrite(t, peer, "3\nabcXY")
	cycle(t, r, 1)
	assert.Equal(t, []string{"3", "abc"}, h.frameStrings())
	assert.Equal(t, 2, c.InboundBuffered())
}

func TestPeerCloseFiresOnCloseOnce(t *testing.T) {
	h := &recordingHandler{}
	r, c, peer := testPair(t, h)

	require.NoError(t, unix.Close(peer))
	cycle(t, r, 2)
	assert.False(t, c.Connected())
	assert.Equal(t, 1, h.closes)
	assert.Equal(t, -1, c.Fd())

	c.Close()
	assert.Equal(t, 1, h.closes)
	assert.ErrorIs(t, c.Send([]byte("late")), errorx.ErrConnClosed)
}

func TestSendChunkingAndOrder(t *testing.T) {
	h := &recordingHandler{}
	r, c, peer := testPair(t, h, WithOutFrameSize(4))

	payload := []byte("0123456789")
	require.NoError(t, c.Send(payload))
	assert.Equal(t, 10, c.OutboundBuffered())
	assert.Equal(t, 3, c.outbuf.Chunks())

	got := peerRead(t, r, peer, len(payload))
	assert.Equal(t, payload, got)
	assert.Equal(t, 0, c.OutboundBuffered())
}

func TestPartialWritePreservesOrder(t *testing.T) {
	h := &recordingHandler{}
	r, c, peer := testPair(t, h, WithOutFrameSize(8192))

	// Tiny kernel buffers force short writes and EAGAIN on the chunk
	// queue while the peer stalls.
	require.NoError(t, unix.SetsockoptInt(c.Fd(), unix.SOL_SOCKET, unix.SO_SNDBUF, 4096))
	require.NoError(t, unix.SetsockoptInt(peer, unix.SOL_SOCKET, unix.SO_RCVBUF, 4096))

	payload := make([]byte, 256*1024)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	require.NoError(t, c.Send(payload))

	// Peer not reading: part of the payload goes out, the unsent
	// remainder stays queued and the connection stays open.
	cycle(t, r, 5)
	queued := c.OutboundBuffered()
	assert.Greater(t, queued, 0)
	assert.Less(t, queued, len(payload))
	assert.True(t, c.Connected())

	got := peerRead(t, r, peer, len(payload))
	assert.Equal(t, payload, got)
	assert.Equal(t, 0, c.OutboundBuffered())
}

func TestBackpressureInterestToggle(t *testing.T) {
	h := &recordingHandler{}
	r, c, peer := testPair(t, h)

	cycle(t, r, 1)
	assert.False(t, c.writeInterest)

	require.NoError(t, c.Send([]byte("hi")))
	got := peerRead(t, r, peer, 2)
	assert.Equal(t, "hi", string(got))

	// Once drained, the next cycle drops write interest again.
	cycle(t, r, 1)
	assert.False(t, c.writeInterest)
	assert.Equal(t, 0, c.OutboundBuffered())
}

func TestCollectModePeekDiscard(t *testing.T) {
	h := &recordingHandler{}
	r, c, peer := testPair(t, h, WithTerminator(Collect()))

	peerWrite(t, peer, "hello")
	cycle(t, r, 1)
	assert.Empty(t, h.frames)
	assert.Equal(t, 5, c.InboundBuffered())
	assert.Equal(t, "hello", string(c.Peek(0)))
	assert.Equal(t, "he", string(c.Peek(2)))

	assert.Equal(t, 2, c.Discard(2))
	assert.Equal(t, "llo", string(c.Peek(0)))

	require.NoError(t, c.Send([]byte("queued")))
	c.DiscardBuffers()
	assert.Equal(t, 0, c.InboundBuffered())
	assert.Equal(t, 0, c.OutboundBuffered())
	assert.True(t, c.Connected())
}
