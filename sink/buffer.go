// Package sink provides an in-memory, seekable destination for rendered
// results.
package sink

import (
	"errors"
	"io"
)

var (
	ErrNegativePosition = errors.New("sink: negative position")
	ErrInvalidWhence    = errors.New("sink: invalid whence")
	ErrClosed           = errors.New("sink: buffer closed")
)

// Buffer is an in-memory [io.ReadWriteSeeker]. Writes happen at the
// current offset and overwrite or extend the content, matching the
// behaviour of a file opened for reading and writing.
//
// The zero value is an empty buffer ready to use. A Buffer is not safe
// for concurrent use.
type Buffer struct {
	data   []byte
	off    int64
	closed bool
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// Write writes p at the current offset, growing the buffer as needed.
func (b *Buffer) Write(p []byte) (int, error) {
	if b.closed {
		return 0, ErrClosed
	}

	end := b.off + int64(len(p))
	if end > int64(len(b.data)) {
		if end > int64(cap(b.data)) {
			grown := make([]byte, end, max(end, 2*int64(cap(b.data))))
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:end]
		}
	}

	n := copy(b.data[b.off:end], p)
	b.off += int64(n)

	return n, nil
}

// Read reads from the current offset.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.closed {
		return 0, ErrClosed
	}

	if b.off >= int64(len(b.data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}

	n := copy(p, b.data[b.off:])
	b.off += int64(n)

	return n, nil
}

// Seek implements [io.Seeker]. Seeking beyond the end is allowed; a later
// write fills the gap with zero bytes.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	if b.closed {
		return 0, ErrClosed
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.off + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, ErrInvalidWhence
	}

	if abs < 0 {
		return 0, ErrNegativePosition
	}

	b.off = abs

	return abs, nil
}

// Bytes returns the whole content regardless of the current offset.
// The slice aliases the buffer until the next write.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the total content length.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Close releases the content. Any later operation returns [ErrClosed].
func (b *Buffer) Close() error {
	b.data = nil
	b.off = 0
	b.closed = true

	return nil
}
