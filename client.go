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

	"github.com/homebus/netcore/internal/socket"
)

// Client is a Conn that knows how to establish its own outbound socket.
// It is created disconnected; Connect dials the peer, and with the
// Monitor option the reactor redials it whenever it is found
// disconnected.
type Client struct {
	Conn
	host  string
	port  int
	proto Protocol
}

// NewClient creates a disconnected client for host:port.
func NewClient(r *Reactor, host string, port int, proto Protocol, handler EventHandler, opts ...Option) *Client {
	options := loadOptions(opts...)
	cl := &Client{
		Conn: Conn{
			reactor:      r,
			fd:           -1,
			addr:         net.JoinHostPort(host, strconv.Itoa(port)),
			term:         *options.Terminator,
			inFrameSize:  options.InFrameSize,
			outFrameSize: options.OutFrameSize,
			handler:      handler,
			logger:       options.Logger,
		},
		host:  host,
		port:  port,
		proto: proto,
	}
	if cl.handler == nil {
		cl.handler = &BuiltinEventHandler{}
	}
	if options.Monitor {
		r.Monitor(cl)
	}
	return cl
}

// Connect resolves and dials the peer. On success the client becomes a
// live Conn (registered, OnOpen fired); on failure it stays disconnected
// and, when monitored, is retried by Reactor.CheckMonitored.
func (cl *Client) Connect() error {
	if cl.connected {
		return nil
	}
	fd, addr, err := socket.Dial(cl.proto.network(), cl.host, cl.port)
	if err != nil {
		cl.logger.Errorf("netcore: problem connecting to %s (%s): %v", cl.addr, cl.proto, err)
		cl.Close()
		return err
	}
	if addr != "" {
		cl.addr = addr
	}
	if err = cl.open(fd); err != nil {
		cl.logger.Errorf("netcore: problem registering %s (%s): %v", cl.addr, cl.proto, err)
		return err
	}
	cl.logger.Debugf("netcore: connected to %s", cl.addr)
	return nil
}
