// Package buf provides a small pooled byte buffer used for TCP, TLS and QUIC
// length-prefixed DNS message framing, avoiding an allocation on every query.
package buf

import (
	"io"
	"sync"

	"github.com/xtls/dnsquery/common/errors"
)

// Size is the capacity of a pooled buffer: large enough for any DNS message
// carried over a stream transport (64KiB length-prefix ceiling plus slack).
const Size = 65 * 1024

var ErrBufferFull = errors.New("buffer is full")

var pool = sync.Pool{
	New: func() interface{} {
		return make([]byte, Size)
	},
}

// Buffer is a recyclable byte buffer. Release() returns it to the pool.
type Buffer struct {
	v     []byte
	start int
	end   int
}

// New creates a Buffer with 0 length and Size capacity, drawn from the pool.
func New() *Buffer {
	v := pool.Get().([]byte)
	if cap(v) < Size {
		v = make([]byte, Size)
	}
	return &Buffer{v: v[:Size]}
}

// FromBytes wraps an existing byte slice without pooling it.
func FromBytes(b []byte) *Buffer {
	return &Buffer{v: b, end: len(b)}
}

// Release returns the backing array to the pool. The Buffer must not be used
// afterward.
func (b *Buffer) Release() {
	if b == nil || b.v == nil {
		return
	}
	if cap(b.v) == Size {
		pool.Put(b.v[:Size])
	}
	b.v = nil
	b.start, b.end = 0, 0
}

// Clear empties the buffer without releasing its backing array.
func (b *Buffer) Clear() {
	b.start, b.end = 0, 0
}

// Bytes returns the buffer's current content.
func (b *Buffer) Bytes() []byte {
	return b.v[b.start:b.end]
}

// Len returns the length of the buffer's content.
func (b *Buffer) Len() int {
	return b.end - b.start
}

// Write implements io.Writer, appending to the content.
func (b *Buffer) Write(p []byte) (int, error) {
	n := copy(b.v[b.end:], p)
	b.end += n
	if n < len(p) {
		return n, ErrBufferFull
	}
	return n, nil
}

// ReadFullFrom reads exactly size bytes from r into the buffer, appending
// after the current content, or returns the underlying error (including
// io.ErrUnexpectedEOF on a short read).
func (b *Buffer) ReadFullFrom(r io.Reader, size int) (int, error) {
	end := b.end + size
	if end > len(b.v) {
		return 0, errors.New("dns message too large for buffer: ", size)
	}
	n, err := io.ReadFull(r, b.v[b.end:end])
	b.end += n
	return n, err
}
