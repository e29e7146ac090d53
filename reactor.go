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
	"runtime/debug"
	"time"

	"github.com/homebus/netcore/internal/netpoll"
	"github.com/homebus/netcore/pkg/logging"
)

// Reactor owns the readiness multiplexer, the registry mapping socket fds
// to their owning Server or Conn, and the list of monitored endpoints.
//
// A Reactor and everything registered with it belong to a single
// goroutine: the one calling CheckMonitored and RunOnce. Nothing here is
// synchronized; touching a reactor or its connections from another
// goroutine is a data race.
type Reactor struct {
	poller    *netpoll.Poller
	conns     map[int]*Conn
	listeners map[int]*Server
	monitored []Endpoint
	logger    logging.Logger
}

// NewReactor opens the platform poller and returns an empty reactor.
func NewReactor(opts ...Option) (*Reactor, error) {
	options := loadOptions(opts...)
	poller, err := netpoll.OpenPoller()
	if err != nil {
		return nil, err
	}
	return &Reactor{
		poller:    poller,
		conns:     make(map[int]*Conn),
		listeners: make(map[int]*Server),
		logger:    options.Logger,
	}, nil
}

// RegisterListener adds a listening socket to the registry with read-only
// interest. Re-registering an fd overwrites the previous owner.
func (r *Reactor) RegisterListener(fd int, s *Server) error {
	if !r.registered(fd) {
		if err := r.poller.AddRead(fd); err != nil {
			return err
		}
	}
	delete(r.conns, fd)
	r.listeners[fd] = s
	return nil
}

// RegisterConn adds a connected socket to the registry with read-only
// interest. Re-registering an fd overwrites the previous owner; the
// poller is dropped back to read-only so it agrees with the cleared
// write-interest flag even when the previous owner had write interest.
func (r *Reactor) RegisterConn(fd int, c *Conn) error {
	if !r.registered(fd) {
		if err := r.poller.AddRead(fd); err != nil {
			return err
		}
	} else if err := r.poller.ModRead(fd); err != nil {
		return err
	}
	delete(r.listeners, fd)
	r.conns[fd] = c
	c.writeInterest = false
	return nil
}

// Unregister removes the fd from the registry, the listener set and the
// poller. Unregistering an unknown fd is a no-op.
func (r *Reactor) Unregister(fd int) {
	if fd < 0 || !r.registered(fd) {
		return
	}
	if err := r.poller.Delete(fd); err != nil {
		r.logger.Warnf("netcore: removing fd=%d from poller: %v", fd, err)
	}
	delete(r.conns, fd)
	delete(r.listeners, fd)
}

func (r *Reactor) registered(fd int) bool {
	if _, ok := r.conns[fd]; ok {
		return true
	}
	_, ok := r.listeners[fd]
	return ok
}

// Monitor adds an endpoint to the reconnection list.
func (r *Reactor) Monitor(e Endpoint) {
	r.monitored = append(r.monitored, e)
}

// CheckMonitored calls Connect on every monitored endpoint that is not
// currently connected. This is the sole reconnection mechanism; there is
// no backoff, a persistently failing endpoint is retried at whatever
// cadence the caller invokes this.
func (r *Reactor) CheckMonitored() {
	for _, e := range r.monitored {
		if !e.Connected() {
			_ = e.Connect()
		}
	}
}

// RunOnce performs one poll-dispatch cycle. With an empty registry it
// just sleeps up to timeout to avoid a busy spin. Otherwise it recomputes
// every connection's interest set (read+write only while output is
// pending), waits up to timeout for readiness and dispatches each event
// to its owner. A panic inside one handler is logged and does not abort
// the cycle or affect other fds.
func (r *Reactor) RunOnce(timeout time.Duration) error {
	if len(r.conns) == 0 && len(r.listeners) == 0 {
		time.Sleep(timeout)
		return nil
	}

	for fd, c := range r.conns {
		want := !c.outbuf.IsEmpty()
		if want == c.writeInterest {
			continue
		}
		var err error
		if want {
			err = r.poller.ModReadWrite(fd)
		} else {
			err = r.poller.ModRead(fd)
		}
		if err != nil {
			r.logger.Warnf("netcore: adjusting interest of fd=%d: %v", fd, err)
			continue
		}
		c.writeInterest = want
	}

	return r.poller.Poll(timeout, func(fd int, ev netpoll.IOEvent) {
		if s, ok := r.listeners[fd]; ok {
			r.safely(fd, func() { s.handleReadiness() })
			return
		}
		c, ok := r.conns[fd]
		if !ok {
			return
		}
		if ev&netpoll.EventRead != 0 && c.connected {
			r.safely(fd, c.handleRead)
		}
		if ev&netpoll.EventWrite != 0 && c.connected {
			r.safely(fd, c.handleWrite)
		}
		if ev&netpoll.EventErr != 0 && c.connected {
			r.safely(fd, c.Close)
		}
	})
}

// CloseAll closes every registered connection and listener, best effort.
func (r *Reactor) CloseAll() {
	conns := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	for _, c := range conns {
		r.safely(c.fd, c.Close)
	}
	servers := make([]*Server, 0, len(r.listeners))
	for _, s := range r.listeners {
		servers = append(servers, s)
	}
	for _, s := range servers {
		r.safely(s.fd, s.Close)
	}
}

// Close tears the reactor down: closes everything registered and releases
// the poller. The reactor must not be used afterwards.
func (r *Reactor) Close() error {
	r.CloseAll()
	return r.poller.Close()
}

// safely runs one dispatch and keeps a panic in it from taking down the
// poll cycle.
func (r *Reactor) safely(fd int, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Errorf("netcore: handler for fd=%d panicked: %v\n%s", fd, p, debug.Stack())
		}
	}()
	fn()
}
