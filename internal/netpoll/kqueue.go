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

//go:build freebsd || dragonfly || darwin

package netpoll

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Poller multiplexes readiness notifications over a kqueue instance.
type Poller struct {
	fd int // kqueue fd
	el *eventList
}

// OpenPoller instantiates a poller.
func OpenPoller() (*Poller, error) {
	kfd, err := unix.Kqueue()
	if err != nil {
		return nil, os.NewSyscallError("kqueue", err)
	}
	return &Poller{fd: kfd, el: newEventList(initPollEventsCap)}, nil
}

// Close closes the poller.
func (p *Poller) Close() error {
	return os.NewSyscallError("close", unix.Close(p.fd))
}

// Poll blocks for up to timeout waiting for readiness events and invokes
// fn once per delivered kevent. kqueue reports read and write filters as
// separate events, so a single fd may trigger fn more than once per call.
func (p *Poller) Poll(timeout time.Duration, fn func(fd int, ev IOEvent)) error {
	if timeout < 0 {
		timeout = 0
	}
	ts := unix.NsecToTimespec(timeout.Nanoseconds())
	n, err := unix.Kevent(p.fd, nil, p.el.events, &ts)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return os.NewSyscallError("kevent wait", err)
	}
	for i := 0; i < n; i++ {
		e := p.el.events[i]
		var ev IOEvent
		switch e.Filter {
		case unix.EVFILT_READ:
			ev |= EventRead
		case unix.EVFILT_WRITE:
			ev |= EventWrite
		}
		if e.Flags&unix.EV_ERROR != 0 {
			ev |= EventErr
		}
		fn(int(e.Ident), ev)
	}
	if n == p.el.size {
		p.el.increase()
	}
	return nil
}

// AddRead registers the fd with read-only interest.
func (p *Poller) AddRead(fd int) error {
	_, err := unix.Kevent(p.fd, []unix.Kevent_t{
		{Ident: uint64(fd), Flags: unix.EV_ADD, Filter: unix.EVFILT_READ},
	}, nil, nil)
	return os.NewSyscallError("kevent add", err)
}

// ModRead shrinks the fd's interest set to read-only by dropping the
// write filter.
func (p *Poller) ModRead(fd int) error {
	_, err := unix.Kevent(p.fd, []unix.Kevent_t{
		{Ident: uint64(fd), Flags: unix.EV_DELETE, Filter: unix.EVFILT_WRITE},
	}, nil, nil)
	if err == unix.ENOENT {
		err = nil
	}
	return os.NewSyscallError("kevent delete", err)
}

// ModReadWrite widens the fd's interest set to read+write.
func (p *Poller) ModReadWrite(fd int) error {
	_, err := unix.Kevent(p.fd, []unix.Kevent_t{
		{Ident: uint64(fd), Flags: unix.EV_ADD, Filter: unix.EVFILT_WRITE},
	}, nil, nil)
	return os.NewSyscallError("kevent add", err)
}

// Delete removes the fd from the poller. Filters evaporate with the fd on
// close, so stale registrations are not an error.
func (p *Poller) Delete(fd int) error {
	_, err := unix.Kevent(p.fd, []unix.Kevent_t{
		{Ident: uint64(fd), Flags: unix.EV_DELETE, Filter: unix.EVFILT_READ},
		{Ident: uint64(fd), Flags: unix.EV_DELETE, Filter: unix.EVFILT_WRITE},
	}, nil, nil)
	if err == unix.ENOENT || err == unix.EBADF {
		err = nil
	}
	return os.NewSyscallError("kevent delete", err)
}
