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

package socket

import "golang.org/x/sys/unix"

var listenerBacklogMaxSize = maxListenerBacklog()

func maxListenerBacklog() int {
	n, err := unix.SysctlUint32("kern.ipc.somaxconn")
	if err == nil && n > 0 && n < 1<<16 {
		return int(n)
	}
	return unix.SOMAXCONN
}
