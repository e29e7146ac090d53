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

import "github.com/homebus/netcore/pkg/logging"

// DefaultFrameSize is the fallback for both the per-read receive size and
// the outbound chunk size.
const DefaultFrameSize = 4096

// Options are set when creating a reactor, connection, server or client.
type Options struct {
	// Terminator is the initial framing rule of a connection. When left
	// unset it defaults to Delimiter("\r\n").
	Terminator *Terminator

	// InFrameSize caps the bytes read per receive call.
	InFrameSize int

	// OutFrameSize caps the size of one outbound chunk; Send pre-splits
	// larger payloads. For datagram sockets it also bounds the payload of
	// one datagram.
	OutFrameSize int

	// Monitor registers a client with the reactor's reconnection list.
	// Servers are always monitored.
	Monitor bool

	// Logger is the destination for this object's log output; the package
	// default logger when nil.
	Logger logging.Logger
}

// Option is a function that sets up an option.
type Option func(opts *Options)

func loadOptions(options ...Option) *Options {
	opts := new(Options)
	for _, option := range options {
		option(opts)
	}
	if opts.InFrameSize <= 0 {
		opts.InFrameSize = DefaultFrameSize
	}
	if opts.OutFrameSize <= 0 {
		opts.OutFrameSize = DefaultFrameSize
	}
	if opts.Terminator == nil {
		t := Delimiter([]byte("\r\n"))
		opts.Terminator = &t
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetDefaultLogger()
	}
	return opts
}

// WithOptions sets up all options at once.
func WithOptions(options Options) Option {
	return func(opts *Options) {
		*opts = options
	}
}

// WithTerminator sets the initial framing rule.
func WithTerminator(t Terminator) Option {
	return func(opts *Options) {
		opts.Terminator = &t
	}
}

// WithInFrameSize caps the bytes read per receive call.
func WithInFrameSize(size int) Option {
	return func(opts *Options) {
		opts.InFrameSize = size
	}
}

// WithOutFrameSize caps the size of one outbound chunk.
func WithOutFrameSize(size int) Option {
	return func(opts *Options) {
		opts.OutFrameSize = size
	}
}

// WithMonitor registers the endpoint for automatic reconnection.
func WithMonitor(monitor bool) Option {
	return func(opts *Options) {
		opts.Monitor = monitor
	}
}

// WithLogger sets a customized logger.
func WithLogger(logger logging.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}
