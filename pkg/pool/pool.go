// Package pool provides typed object pooling for the conversion and raw I/O
// paths.
//
// The package provides:
//   - Generic type-safe object pooling with Pool[T]
//   - Byte slice pooling with size-based buckets (BufferPool)
//   - A shared pool of bytes.Buffer used by encoders and compressors
//
// Example usage:
//
//	buf := pool.GetBuffer()
//	defer pool.PutBuffer(buf)
//
//	scratch := pool.Bytes.Get(4096)
//	defer pool.Bytes.Put(scratch)
package pool

import (
	"bytes"
	"sync"
	"sync/atomic"
)

// Pool represents a generic object pool with type safety.
// It wraps sync.Pool with statistics tracking and an optional reset
// function. The pool is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		gets      int64
	}
}

// New creates a new typed pool with custom allocation and reset functions.
// The reset function is called before an object goes back into the pool.
//
//	p := New(
//	    func() *Buffer { return &Buffer{data: make([]byte, 0, 1024)} },
//	    func(b *Buffer) { b.data = b.data[:0] },
//	)
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return newFn()
	}
	return p
}

// Get retrieves an object from the pool, creating one if the pool is empty.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	atomic.AddInt64(&p.stats.gets, 1)
	return p.pool.Get().(T)
}

// Put returns an object to the pool for reuse.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns the number of objects created by the pool, the number
// currently checked out, and the number of Get calls.
// Gets minus allocated is the number of reuses.
func (p *Pool[T]) Stats() (allocated, inUse, gets int64) {
	return atomic.LoadInt64(&p.stats.allocated),
		atomic.LoadInt64(&p.stats.inUse),
		atomic.LoadInt64(&p.stats.gets)
}

// maxPooledBuffer bounds the capacity of buffers that go back into
// the buffer pool.
const maxPooledBuffer = 4 << 20

var buffers = New(
	func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 4096)) },
	func(b *bytes.Buffer) { b.Reset() },
)

// GetBuffer returns an empty pooled bytes.Buffer.
func GetBuffer() *bytes.Buffer {
	return buffers.Get()
}

// PutBuffer returns a buffer to the pool. Very large buffers are left to
// the garbage collector.
func PutBuffer(b *bytes.Buffer) {
	if b == nil {
		return
	}
	if b.Cap() > maxPooledBuffer {
		atomic.AddInt64(&buffers.stats.inUse, -1)
		return
	}
	buffers.Put(b)
}

// BufferPool manages byte slice pooling with size-based buckets.
type BufferPool struct {
	pools []*Pool[[]byte]
	sizes []int
}

// Bytes is the process-wide byte slice pool.
var Bytes = NewBufferPool()

// NewBufferPool creates a buffer pool with power-of-4 buckets from 512
// bytes to 16MB. Larger requests are allocated directly.
func NewBufferPool() *BufferPool {
	sizes := []int{
		512,
		2048,
		8192,
		32768,
		131072,
		524288,
		2097152,
		8388608,
		16777216,
	}

	pools := make([]*Pool[[]byte], len(sizes))
	for i, size := range sizes {
		pools[i] = New(func() []byte { return make([]byte, size) }, nil)
	}
	return &BufferPool{pools: pools, sizes: sizes}
}

// Get returns a slice of length size. Its capacity may be larger.
//
//	buf := bufferPool.Get(2048)
//	defer bufferPool.Put(buf)
func (p *BufferPool) Get(size int) []byte {
	for i, s := range p.sizes {
		if s >= size {
			return p.pools[i].Get()[:size]
		}
	}
	return make([]byte, size)
}

// Put returns a slice obtained from Get. Slices whose capacity does not
// match a bucket are dropped.
func (p *BufferPool) Put(buf []byte) {
	size := cap(buf)
	for i, s := range p.sizes {
		if s == size {
			p.pools[i].Put(buf[:size])
			return
		}
	}
}
