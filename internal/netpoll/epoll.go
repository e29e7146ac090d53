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

//go:build linux

package netpoll

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Poller multiplexes readiness notifications over an epoll instance.
type Poller struct {
	fd int // epoll fd
	el *eventList
}

// OpenPoller instantiates a poller.
func OpenPoller() (*Poller, error) {
	epollFD, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, os.NewSyscallError("epoll_create1", err)
	}
	return &Poller{fd: epollFD, el: newEventList(initPollEventsCap)}, nil
}

// Close closes the poller.
func (p *Poller) Close() error {
	return os.NewSyscallError("close", unix.Close(p.fd))
}

// Poll blocks for up to timeout waiting for readiness events and invokes
// fn once per ready fd. A non-positive timeout makes Poll return
// immediately after a single non-blocking check.
func (p *Poller) Poll(timeout time.Duration, fn func(fd int, ev IOEvent)) error {
	msec := 0
	if timeout > 0 {
		msec = int(timeout / time.Millisecond)
	}
	n, err := unix.EpollWait(p.fd, p.el.events, msec)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return os.NewSyscallError("epoll_wait", err)
	}
	for i := 0; i < n; i++ {
		e := p.el.events[i]
		var ev IOEvent
		if e.Events&(unix.EPOLLIN|unix.EPOLLPRI) != 0 {
			ev |= EventRead
		}
		if e.Events&unix.EPOLLOUT != 0 {
			ev |= EventWrite
		}
		if e.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			ev |= EventErr
		}
		fn(int(e.Fd), ev)
	}
	if n == p.el.size {
		p.el.increase()
	}
	return nil
}

// AddRead registers the fd with read-only interest.
func (p *Poller) AddRead(fd int) error {
	return os.NewSyscallError("epoll_ctl add",
		unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Fd: int32(fd), Events: unix.EPOLLIN}))
}

// ModRead shrinks the fd's interest set to read-only.
func (p *Poller) ModRead(fd int) error {
	return os.NewSyscallError("epoll_ctl mod",
		unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{Fd: int32(fd), Events: unix.EPOLLIN}))
}

// ModReadWrite widens the fd's interest set to read+write.
func (p *Poller) ModReadWrite(fd int) error {
	return os.NewSyscallError("epoll_ctl mod",
		unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{Fd: int32(fd), Events: unix.EPOLLIN | unix.EPOLLOUT}))
}

// Delete removes the fd from the poller. Removing an fd that is not
// registered is not an error.
func (p *Poller) Delete(fd int) error {
	err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil)
	if err == unix.ENOENT || err == unix.EBADF {
		err = nil
	}
	return os.NewSyscallError("epoll_ctl del", err)
}
