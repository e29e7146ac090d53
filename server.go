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
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/homebus/netcore/internal/socket"
	"github.com/homebus/netcore/pkg/logging"
)

// Server owns one listening (stream) or bound (datagram) socket. It does
// not own the connections it spawns: each accepted socket is handed to
// the application, which wraps it with NewConn.
type Server struct {
	reactor *Reactor
	host    string
	port    int
	proto   Protocol

	addr      string
	fd        int
	connected bool

	handle func(*Server)
	logger logging.Logger
}

// NewServer creates a server for host:port. handle fires once per
// readiness event on the bound socket — for stream protocols that means
// connections are waiting in Accept, for datagram protocols that
// datagrams are readable on Fd. A nil handle is a no-op. The server
// self-registers as monitored, so a failed or lost binding is retried by
// Reactor.CheckMonitored.
func NewServer(r *Reactor, host string, port int, proto Protocol, handle func(*Server), opts ...Option) *Server {
	options := loadOptions(opts...)
	s := &Server{
		reactor: r,
		host:    host,
		port:    port,
		proto:   proto,
		addr:    net.JoinHostPort(host, strconv.Itoa(port)),
		fd:      -1,
		handle:  handle,
		logger:  options.Logger,
	}
	if s.handle == nil {
		s.handle = func(*Server) {}
	}
	r.Monitor(s)
	return s
}

// Connect binds (and for stream protocols listens on) the server socket
// and registers it with the reactor. On failure the server stays
// disconnected and eligible for monitored retry.
func (s *Server) Connect() error {
	if s.connected {
		return nil
	}
	fd, addr, err := socket.Listen(s.proto.network(), s.host, s.port)
	if err != nil {
		s.logger.Errorf("netcore: problem binding %s (%s): %v", s.addr, s.proto, err)
		s.Close()
		return err
	}
	if addr != "" {
		s.addr = addr
	}
	if err = s.reactor.RegisterListener(fd, s); err != nil {
		s.logger.Errorf("netcore: problem registering %s (%s): %v", s.addr, s.proto, err)
		_ = unix.Close(fd)
		return err
	}
	s.fd = fd
	s.connected = true
	s.logger.Debugf("netcore: binding to %s (%s)", s.addr, s.proto)
	return nil
}

// Accept performs one non-blocking accept and returns the raw socket plus
// the textual peer address. Anything that keeps a connection from being
// handed over — nothing pending, an accept race, a datagram server — is
// reported as ok == false, never as a failure.
func (s *Server) Accept() (fd int, addr string, ok bool) {
	if s.fd < 0 || !s.proto.IsStream() {
		return -1, "", false
	}
	nfd, sa, err := unix.Accept(s.fd)
	if err != nil {
		return -1, "", false
	}
	if err = unix.SetNonblock(nfd, true); err != nil {
		_ = unix.Close(nfd)
		return -1, "", false
	}
	addr = socket.SockaddrToString(sa)
	s.logger.Debugf("netcore: incoming connection from %s to %s", addr, s.addr)
	return nfd, addr, true
}

// Close unbinds the server. The monitored registration stays, so a later
// CheckMonitored rebinds it; stop calling CheckMonitored (or tear the
// reactor down) to keep it closed.
func (s *Server) Close() {
	s.connected = false
	if s.fd < 0 {
		return
	}
	fd := s.fd
	s.fd = -1
	s.reactor.Unregister(fd)
	_ = unix.Close(fd)
}

// handleReadiness dispatches one readiness event on the bound socket to
// the application's handler.
func (s *Server) handleReadiness() {
	s.handle(s)
}

// Addr returns the textual bound address; once connected it reflects the
// actual binding, which matters when port 0 was requested.
func (s *Server) Addr() string {
	return s.addr
}

// Fd returns the bound socket handle, -1 when closed. Datagram servers
// read their traffic directly from this fd.
func (s *Server) Fd() int {
	return s.fd
}

// Connected reports whether the server is bound and listening.
func (s *Server) Connected() bool {
	return s.connected
}
