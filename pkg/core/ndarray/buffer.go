// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ndarray

import (
	"sync"

	"github.com/gomlx/exceptions"
)

// Buffer holds the flat element storage shared by any number of views.
//
// A Buffer is never resized: views derived from one another always point to the same *Buffer, and
// that pointer identity is what defines aliasing.
type Buffer[T any] struct {
	data []T
}

// NewBuffer allocates a zero-initialized buffer with the given number of elements.
func NewBuffer[T any](length int) *Buffer[T] {
	if length < 0 {
		exceptions.Panicf("ndarray.NewBuffer(%d): negative length", length)
	}
	return &Buffer[T]{data: make([]T, length)}
}

// WrapBuffer returns a buffer that uses the given slice as its storage, without copying.
func WrapBuffer[T any](data []T) *Buffer[T] {
	return &Buffer[T]{data: data}
}

// Len returns the number of elements in the buffer.
func (b *Buffer[T]) Len() int {
	return len(b.data)
}

// Data returns the underlying flat storage. Changes to it are visible by all views on the buffer.
func (b *Buffer[T]) Data() []T {
	return b.data
}

// Allocator supplies contiguous, randomly addressable storage for new arrays.
type Allocator[T any] interface {
	// Alloc returns a buffer with exactly length elements. Contents are zero for fresh memory,
	// but may be arbitrary for recycled memory.
	Alloc(length int) *Buffer[T]
}

// HeapAllocator allocates every buffer from the Go heap, and leaves its release to the garbage collector.
type HeapAllocator[T any] struct{}

// Alloc implements Allocator.
func (HeapAllocator[T]) Alloc(length int) *Buffer[T] {
	return NewBuffer[T](length)
}

// PooledAllocator recycles buffers of the same length with a sync.Pool per length.
//
// Buffers are only recycled if explicitly returned with Release, after which no view should use them.
// It is safe for concurrent use.
type PooledAllocator[T any] struct {
	// pools maps length to *sync.Pool.
	pools sync.Map
}

// getPool for the given length.
func (p *PooledAllocator[T]) getPool(length int) *sync.Pool {
	poolInterface, ok := p.pools.Load(length)
	if !ok {
		poolInterface, _ = p.pools.LoadOrStore(length, &sync.Pool{
			New: func() any {
				return NewBuffer[T](length)
			},
		})
	}
	return poolInterface.(*sync.Pool)
}

// Alloc implements Allocator. The contents of a recycled buffer are not cleared.
func (p *PooledAllocator[T]) Alloc(length int) *Buffer[T] {
	return p.getPool(length).Get().(*Buffer[T])
}

// Release returns the buffer to the pool. After this any references to the buffer (and views on it)
// should be dropped.
func (p *PooledAllocator[T]) Release(buffer *Buffer[T]) {
	if buffer == nil {
		return
	}
	p.getPool(buffer.Len()).Put(buffer)
}

// ReleaseArray releases the buffer backing the given array. See Release.
func (p *PooledAllocator[T]) ReleaseArray(array *NdArray[T]) {
	if array == nil {
		return
	}
	p.Release(array.buffer)
}

// Compile-time checks.
var (
	_ Allocator[float32] = HeapAllocator[float32]{}
	_ Allocator[float32] = (*PooledAllocator[float32])(nil)
)
