// Copyright 2025 go-highway Authors
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

package vextra

import (
	"sync"
	"unsafe"
)

// BufferAlignment is the documented alignment of allocations made by the
// Vextra buffer type.
const BufferAlignment = 32

// Buffer is a host allocation made by BufferType. Base equals the
// allocation's own backing array, never an offset into it, so Base and Data
// always share the same address.
type Buffer struct {
	Data []byte
}

// Base returns the buffer's base pointer conceptually: for a Go byte slice
// this is simply the slice itself, already guaranteed to start at the
// allocation's first byte.
func (b *Buffer) Base() []byte { return b.Data }

// BufferType is the "Vextra" buffer type: a host allocator with 32-byte
// alignment and IsHost true. It is process-wide state with no mutable fields
// after construction, so the singleton returned by the package-level
// VextraBufferType is safe to share across goroutines.
type BufferType struct {
	name string
}

// Name returns the buffer type's registered name.
func (t *BufferType) Name() string { return t.name }

// IsHost reports whether buffers allocated by this type live in
// host-addressable memory. Always true for Vextra.
func (t *BufferType) IsHost() bool { return true }

// Alignment is the guaranteed byte alignment of buffers this type allocates.
func (t *BufferType) Alignment() int { return BufferAlignment }

// AllocBuffer allocates a Buffer of at least size bytes, aligned to
// BufferAlignment. Over-allocating and slicing to the aligned offset keeps
// Data's first byte (and therefore Base) aligned without unsafe pointer
// arithmetic.
func (t *BufferType) AllocBuffer(size int) *Buffer {
	raw := make([]byte, size+BufferAlignment)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	offset := (BufferAlignment - int(addr%BufferAlignment)) % BufferAlignment
	return &Buffer{Data: raw[offset : offset+size : offset+size]}
}

// FreeBuffer releases a Buffer's backing allocation. Go's garbage collector
// does the actual reclamation; this exists to mirror the host runtime's
// buffer-type interface, which expects an explicit free hook.
func (t *BufferType) FreeBuffer(b *Buffer) {
	b.Data = nil
}

var (
	defaultBufferType     *BufferType
	defaultBufferTypeOnce sync.Once
)

// VextraBufferType returns the process-wide Vextra buffer type, constructing
// it on first use.
func VextraBufferType() *BufferType {
	defaultBufferTypeOnce.Do(func() {
		defaultBufferType = &BufferType{name: "Vextra"}
	})
	return defaultBufferType
}
