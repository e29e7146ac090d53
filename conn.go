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
	"bytes"

	"golang.org/x/sys/unix"

	"github.com/homebus/netcore/pkg/buffer/linkedlist"
	"github.com/homebus/netcore/pkg/errors"
	"github.com/homebus/netcore/pkg/logging"
	bbPool "github.com/homebus/netcore/pkg/pool/bytebuffer"
	bsPool "github.com/homebus/netcore/pkg/pool/byteslice"
)

// Conn is one connected socket together with its inbound accumulator and
// outbound chunk queue. It exclusively owns its fd and both buffers; the
// reactor only holds a dispatch reference. All methods must be called
// from the reactor goroutine.
type Conn struct {
	reactor       *Reactor
	fd            int
	addr          string
	connected     bool
	writeInterest bool

	inbuf  *bbPool.ByteBuffer
	outbuf linkedlist.Buffer

	term         Terminator
	inFrameSize  int
	outFrameSize int

	handler EventHandler
	logger  logging.Logger
	ctx     interface{}
}

// NewConn wraps an already connected, non-blocking socket (typically one
// returned by Server.Accept) into a Conn, registers it with the reactor
// and fires OnOpen.
func NewConn(r *Reactor, fd int, addr string, handler EventHandler, opts ...Option) (*Conn, error) {
	options := loadOptions(opts...)
	c := &Conn{
		reactor:      r,
		fd:           -1,
		addr:         addr,
		term:         *options.Terminator,
		inFrameSize:  options.InFrameSize,
		outFrameSize: options.OutFrameSize,
		handler:      handler,
		logger:       options.Logger,
	}
	if c.handler == nil {
		c.handler = &BuiltinEventHandler{}
	}
	if err := c.open(fd); err != nil {
		return nil, err
	}
	return c, nil
}

// open takes ownership of fd, registers with the reactor and fires
// OnOpen. Shared by NewConn and Client.Connect.
func (c *Conn) open(fd int) error {
	c.fd = fd
	c.inbuf = bbPool.Get()
	if err := c.reactor.RegisterConn(fd, c); err != nil {
		bbPool.Put(c.inbuf)
		c.inbuf = nil
		c.fd = -1
		_ = unix.Close(fd)
		return err
	}
	c.connected = true
	c.handler.OnOpen(c)
	return nil
}

// Send splits data into chunks of at most the outbound frame size and
// queues them for transmission. It never blocks and never writes to the
// socket directly; the next reactor cycle requests write readiness and
// drains the queue.
func (c *Conn) Send(data []byte) error {
	if c.fd < 0 {
		return errors.ErrConnClosed
	}
	for len(data) > c.outFrameSize {
		c.outbuf.PushBack(data[:c.outFrameSize])
		data = data[c.outFrameSize:]
	}
	c.outbuf.PushBack(data)
	return nil
}

// handleRead performs one receive and extracts as many frames as the
// current terminator rule allows.
func (c *Conn) handleRead() {
	buf := bsPool.Get(c.inFrameSize)
	n, err := unix.Read(c.fd, buf)
	if err != nil {
		bsPool.Put(buf)
		if err == unix.EAGAIN || err == unix.EINTR {
			return
		}
		c.logger.Errorf("netcore: read on %s: %v", c.addr, err)
		c.Close()
		return
	}
	if n == 0 { // peer closed
		bsPool.Put(buf)
		c.Close()
		return
	}
	_, _ = c.inbuf.Write(buf[:n])
	bsPool.Put(buf)
	c.extractFrames()
}

// extractFrames runs the terminator rule to fixpoint: afterwards the
// accumulator holds no complete frame under the then-current rule. The
// handler may swap the rule between frames, which is how header/body
// protocols alternate fixed-length and delimiter framing.
func (c *Conn) extractFrames() {
	for c.connected {
		switch c.term.kind {
		case collectKind:
			return
		case fixedKind:
			n := c.term.length
			if c.inbuf.Len() < n {
				return
			}
			frame := c.inbuf.B[:n]
			c.inbuf.B = c.inbuf.B[n:]
			// A fixed-length rule fires exactly once; the handler installs
			// the rule for whatever follows.
			c.term = Collect()
			c.handler.OnFrame(c, frame)
		default:
			i := bytes.Index(c.inbuf.B, c.term.delim)
			if i < 0 {
				return
			}
			frame := c.inbuf.B[:i]
			c.inbuf.B = c.inbuf.B[i+len(c.term.delim):]
			c.handler.OnFrame(c, frame)
		}
	}
}

// handleWrite drains the outbound queue, oldest chunk first, one send
// attempt per chunk. A short write puts the unsent tail back at the head
// of the queue so byte order is preserved; a send error leaves the queue
// as is and defers closing to the reactor's hangup/error dispatch.
func (c *Conn) handleWrite() {
	for c.connected && !c.outbuf.IsEmpty() {
		chunk := c.outbuf.PopFront()
		if len(chunk) == 0 {
			bsPool.Put(chunk)
			continue
		}
		n, err := unix.Write(c.fd, chunk)
		if err != nil {
			c.outbuf.PushFront(chunk)
			bsPool.Put(chunk)
			if err != unix.EAGAIN && err != unix.EINTR {
				c.logger.Errorf("netcore: write on %s: %v", c.addr, err)
			}
			return
		}
		if n < len(chunk) {
			c.outbuf.PushFront(chunk[n:])
			bsPool.Put(chunk)
			return
		}
		bsPool.Put(chunk)
	}
}

// Close tears the connection down: marks it disconnected, removes it from
// the reactor, fires OnClose and releases the socket and both buffers.
// Calling Close again is a no-op.
func (c *Conn) Close() {
	if c.fd < 0 {
		return
	}
	fd := c.fd
	c.fd = -1
	c.connected = false
	c.logger.Debugf("netcore: closing socket %s", c.addr)
	c.reactor.Unregister(fd)
	c.handler.OnClose(c)
	_ = unix.Shutdown(fd, unix.SHUT_RDWR)
	_ = unix.Close(fd)
	bbPool.Put(c.inbuf)
	c.inbuf = nil
	c.outbuf.Reset()
}

// DiscardBuffers drops all buffered inbound and outbound bytes without
// touching the connection state. Meant for application-level protocol
// resets mid-stream.
func (c *Conn) DiscardBuffers() {
	if c.inbuf != nil {
		c.inbuf.Reset()
	}
	c.outbuf.Reset()
}

// SetTerminator installs the framing rule applied to subsequently
// buffered bytes. Changing the rule from inside OnFrame takes effect for
// the very next extraction; changing it elsewhere takes effect when the
// next bytes arrive.
func (c *Conn) SetTerminator(t Terminator) {
	c.term = t
}

// Terminator returns the current framing rule.
func (c *Conn) Terminator() Terminator {
	return c.term
}

// Peek returns up to n bytes of the inbound accumulator without consuming
// them; n <= 0 means everything. Useful in collect mode. The returned
// slice is only valid until the next reactor cycle.
func (c *Conn) Peek(n int) []byte {
	if c.inbuf == nil {
		return nil
	}
	if n <= 0 || n > c.inbuf.Len() {
		n = c.inbuf.Len()
	}
	return c.inbuf.B[:n]
}

// Discard consumes n bytes from the head of the inbound accumulator and
// returns how many were dropped.
func (c *Conn) Discard(n int) int {
	if c.inbuf == nil || n <= 0 {
		return 0
	}
	if n > c.inbuf.Len() {
		n = c.inbuf.Len()
	}
	c.inbuf.B = c.inbuf.B[n:]
	return n
}

// InboundBuffered returns the number of unconsumed received bytes.
func (c *Conn) InboundBuffered() int {
	if c.inbuf == nil {
		return 0
	}
	return c.inbuf.Len()
}

// OutboundBuffered returns the number of bytes waiting for transmission.
func (c *Conn) OutboundBuffered() int {
	return c.outbuf.Buffered()
}

// Address returns the textual peer (or bound) address of the connection.
func (c *Conn) Address() string {
	return c.addr
}

// Fd returns the socket handle, -1 when closed.
func (c *Conn) Fd() int {
	return c.fd
}

// Connected reports whether the connection is live.
func (c *Conn) Connected() bool {
	return c.connected
}

// Context returns the user-defined context.
func (c *Conn) Context() interface{} {
	return c.ctx
}

// SetContext sets a user-defined context.
func (c *Conn) SetContext(ctx interface{}) {
	c.ctx = ctx
}
