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

// Package linkedlist implements a chunk-preserving FIFO of byte slices.
// Unlike a flat ring buffer it never merges chunks, so a partially sent
// chunk can be put back at the head of the pending-send order intact.
package linkedlist

import (
	bsPool "github.com/homebus/netcore/pkg/pool/byteslice"
)

type node struct {
	buf  []byte
	next *node
}

// Buffer is a linked list of byte chunks. The zero value is an empty
// buffer ready for use.
type Buffer struct {
	head  *node
	tail  *node
	size  int
	bytes int
}

// PushBack appends a copy of p as the newest chunk. Empty input is ignored.
func (llb *Buffer) PushBack(p []byte) {
	n := len(p)
	if n == 0 {
		return
	}
	b := bsPool.Get(n)
	copy(b, p)
	llb.pushBack(&node{buf: b})
}

// PushFront inserts a copy of p as the chunk to be popped next.
// Empty input is ignored.
func (llb *Buffer) PushFront(p []byte) {
	n := len(p)
	if n == 0 {
		return
	}
	b := bsPool.Get(n)
	copy(b, p)
	llb.pushFront(&node{buf: b})
}

// PopFront removes and returns the oldest chunk, or nil when the buffer
// is empty. The returned slice comes from the byte-slice pool; hand it
// back with byteslice.Put once it has been fully consumed.
func (llb *Buffer) PopFront() []byte {
	b := llb.pop()
	if b == nil {
		return nil
	}
	return b.buf
}

// Buffered returns the total number of buffered bytes.
func (llb *Buffer) Buffered() int {
	return llb.bytes
}

// Chunks returns the number of queued chunks.
func (llb *Buffer) Chunks() int {
	return llb.size
}

// IsEmpty reports whether the buffer holds no chunks.
func (llb *Buffer) IsEmpty() bool {
	return llb.head == nil
}

// Reset drops all chunks and returns their storage to the pool.
func (llb *Buffer) Reset() {
	for b := llb.pop(); b != nil; b = llb.pop() {
		bsPool.Put(b.buf)
	}
	llb.head, llb.tail = nil, nil
	llb.size, llb.bytes = 0, 0
}

func (llb *Buffer) pushFront(b *node) {
	if b == nil {
		return
	}
	if llb.head == nil {
		b.next = nil
		llb.tail = b
	} else {
		b.next = llb.head
	}
	llb.head = b
	llb.size++
	llb.bytes += len(b.buf)
}

func (llb *Buffer) pushBack(b *node) {
	if b == nil {
		return
	}
	if llb.tail == nil {
		llb.head = b
	} else {
		llb.tail.next = b
	}
	b.next = nil
	llb.tail = b
	llb.size++
	llb.bytes += len(b.buf)
}

func (llb *Buffer) pop() *node {
	if llb.head == nil {
		return nil
	}
	b := llb.head
	llb.head = b.next
	if llb.head == nil {
		llb.tail = nil
	}
	b.next = nil
	llb.size--
	llb.bytes -= len(b.buf)
	return b
}
