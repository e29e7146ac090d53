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
	"fmt"
	"net"
	"os"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/homebus/netcore/pkg/errors"
)

// addrSpec is one concrete creation recipe for a socket: address family,
// socket type and the resolved bind/connect target.
type addrSpec struct {
	family int
	sotype int
	sa     unix.Sockaddr
}

func resolveSockaddr(network, host string, port int) (*addrSpec, error) {
	hostport := net.JoinHostPort(host, strconv.Itoa(port))
	switch network {
	case "tcp4", "tcp6":
		tcpAddr, err := net.ResolveTCPAddr(network, hostport)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errors.ErrAddressResolution, hostport, err)
		}
		return sockaddrFromIP(network, tcpAddr.IP, tcpAddr.Port, tcpAddr.Zone, unix.SOCK_STREAM)
	case "udp4", "udp6":
		udpAddr, err := net.ResolveUDPAddr(network, hostport)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errors.ErrAddressResolution, hostport, err)
		}
		return sockaddrFromIP(network, udpAddr.IP, udpAddr.Port, udpAddr.Zone, unix.SOCK_DGRAM)
	default:
		return nil, errors.ErrUnsupportedProtocol
	}
}

func sockaddrFromIP(network string, ip net.IP, port int, zone string, sotype int) (*addrSpec, error) {
	switch network {
	case "tcp4", "udp4":
		sa, err := ipToSockaddrInet4(ip, port)
		if err != nil {
			return nil, err
		}
		return &addrSpec{family: unix.AF_INET, sotype: sotype, sa: sa}, nil
	default:
		sa, err := ipToSockaddrInet6(ip, port, zone)
		if err != nil {
			return nil, err
		}
		return &addrSpec{family: unix.AF_INET6, sotype: sotype, sa: sa}, nil
	}
}

func ipToSockaddrInet4(ip net.IP, port int) (*unix.SockaddrInet4, error) {
	if len(ip) == 0 {
		ip = net.IPv4zero
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return nil, &net.AddrError{Err: "non-IPv4 address", Addr: ip.String()}
	}
	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], ip4)
	return sa, nil
}

func ipToSockaddrInet6(ip net.IP, port int, zone string) (*unix.SockaddrInet6, error) {
	if len(ip) == 0 || ip.Equal(net.IPv4zero) {
		ip = net.IPv6zero
	}
	ip6 := ip.To16()
	if ip6 == nil {
		return nil, &net.AddrError{Err: "non-IPv6 address", Addr: ip.String()}
	}
	sa := &unix.SockaddrInet6{Port: port}
	copy(sa.Addr[:], ip6)
	if zone != "" {
		iface, err := net.InterfaceByName(zone)
		if err == nil {
			sa.ZoneId = uint32(iface.Index)
		}
	}
	return sa, nil
}

func sysSocket(family, sotype int) (int, error) {
	fd, err := unix.Socket(family, sotype, 0)
	if err != nil {
		return -1, os.NewSyscallError("socket", err)
	}
	unix.CloseOnExec(fd)
	return fd, nil
}

func setReuseAddr(fd, reuseAddr int) error {
	return os.NewSyscallError("setsockopt", unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, reuseAddr))
}

func setIPv6Only(fd, ipv6only int) error {
	return os.NewSyscallError("setsockopt", unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, ipv6only))
}
