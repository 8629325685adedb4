// Package arena implements a simple allocator over a caller-supplied
// buffer. Allocations are bump-allocated 8-byte-aligned chunks; freed
// chunks go on a free list and are handed out again first-fit.
package arena

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"
)

var (
	ErrOutOfMemory   = errors.New("not enough space in the arena")
	ErrInvalidSize   = errors.New("the requested size is invalid")
	ErrInvalidOffset = errors.New("offset does not name an allocated chunk")
)

const alignmentBytes = 8
const alignmentBytesMinusOne = alignmentBytes - 1

// Every chunk is preceded by an 8-byte header holding its payload size, so
// Deallocate needs only the offset. Offsets returned by Allocate point at
// the payload and are therefore never zero; zero doubles as the null
// offset.
const chunkHeaderSize = 8

type Arena struct {
	buffer []byte
	next   uint64
	used   uint64

	// freeHead is the payload offset of the first free chunk; each free
	// chunk stores the offset of the next one in its first 8 bytes.
	freeHead uint64
}

// New creates an arena over buf. The buffer length must be a non-zero
// multiple of 8.
func New(buf []byte) (*Arena, error) {
	if len(buf) == 0 || len(buf)&alignmentBytesMinusOne != 0 {
		return nil, ErrInvalidSize
	}
	return &Arena{buffer: buf}, nil
}

// SetBuffer moves the arena to a larger buffer. The caller must have
// copied the old contents into buf already.
func (a *Arena) SetBuffer(buf []byte) error {
	if uint64(len(buf)) < a.next || len(buf)&alignmentBytesMinusOne != 0 {
		return ErrInvalidSize
	}
	a.buffer = buf
	return nil
}

func align(size uint64) uint64 {
	return (size + alignmentBytesMinusOne) &^ uint64(alignmentBytesMinusOne)
}

// Allocate reserves size bytes and returns their offset. A freed chunk
// large enough is reused before the bump pointer advances.
func (a *Arena) Allocate(size uint64) (uint64, error) {
	if size == 0 {
		return 0, ErrInvalidSize
	}
	size = align(size)

	prev := uint64(0)
	for off := a.freeHead; off != 0; off = a.nextFree(off) {
		if a.chunkSize(off) >= size {
			a.unlinkFree(prev, off)
			a.used += a.chunkSize(off) + chunkHeaderSize
			return off, nil
		}
		prev = off
	}

	p := a.next
	if p+chunkHeaderSize+size > uint64(len(a.buffer)) {
		return 0, ErrOutOfMemory
	}
	binary.LittleEndian.PutUint64(a.buffer[p:], size)
	a.next = p + chunkHeaderSize + size
	a.used += chunkHeaderSize + size
	return p + chunkHeaderSize, nil
}

// Deallocate returns the chunk at off to the free list.
func (a *Arena) Deallocate(off uint64) error {
	if off < chunkHeaderSize || off&alignmentBytesMinusOne != 0 || off >= a.next {
		return ErrInvalidOffset
	}
	a.used -= a.chunkSize(off) + chunkHeaderSize
	binary.LittleEndian.PutUint64(a.buffer[off:], a.freeHead)
	a.freeHead = off
	return nil
}

// GetPtr returns the address of the payload at off.
func (a *Arena) GetPtr(off uint64) unsafe.Pointer {
	return unsafe.Pointer(&a.buffer[off])
}

func (a *Arena) GetCapacity() uint64 {
	return uint64(len(a.buffer))
}

func (a *Arena) GetUsed() uint64 {
	return a.used
}

func (a *Arena) GetFree() uint64 {
	return uint64(len(a.buffer)) - a.used
}

func (a *Arena) PrintFreeChunks() {
	for off := a.freeHead; off != 0; off = a.nextFree(off) {
		fmt.Printf("free chunk at %d size %d\n", off, a.chunkSize(off))
	}
}

func (a *Arena) chunkSize(off uint64) uint64 {
	return binary.LittleEndian.Uint64(a.buffer[off-chunkHeaderSize:])
}

func (a *Arena) nextFree(off uint64) uint64 {
	return binary.LittleEndian.Uint64(a.buffer[off:])
}

func (a *Arena) unlinkFree(prev, off uint64) {
	next := a.nextFree(off)
	if prev == 0 {
		a.freeHead = next
	} else {
		binary.LittleEndian.PutUint64(a.buffer[prev:], next)
	}
}
