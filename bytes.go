package refptr

import (
	"errors"
	"unsafe"

	"github.com/harkal/refptr/arena"
)

var ErrInvalidSize = errors.New("buffer size is invalid")

const maxDataSize = 0x9C4000

// Buffer is a byte region inside an arena, named by offset and size. It is
// shared through the library's own handles: NewBytes wraps a fresh region
// in a Strong whose deleter hands the region back to the arena, so the
// region lives exactly as long as its strong owners.
type Buffer struct {
	Offset uint64
	Size   uint32
}

func (b *Buffer) isNull() bool {
	return b.Offset == 0
}

// Bytes returns the live region. Valid only while a strong owner exists
// and until the arena's buffer is replaced.
func (b *Buffer) Bytes(a *arena.Arena) []byte {
	return unsafe.Slice((*byte)(a.GetPtr(b.Offset)), b.Size)
}

func checkDataLength(size uint32) error {
	if size == 0 || uint64(size) > maxDataSize {
		return ErrInvalidSize
	}
	return nil
}

func arenaDeleter(a *arena.Arena) Deleter[Buffer] {
	return func(b *Buffer) {
		if b.isNull() {
			return
		}
		if err := a.Deallocate(b.Offset); err != nil {
			panic(err)
		}
		b.Offset = 0
		b.Size = 0
	}
}

// NewBytes allocates size bytes in the arena and returns an owning handle
// over them. The last Release returns the region to the arena.
func NewBytes(a *arena.Arena, size uint32) (Strong[Buffer], error) {
	if err := checkDataLength(size); err != nil {
		return Strong[Buffer]{}, err
	}
	off, err := a.Allocate(uint64(size))
	if err != nil {
		return Strong[Buffer]{}, err
	}
	return NewStrong(&Buffer{Offset: off, Size: size}, arenaDeleter(a)), nil
}

// AttachBytes takes ownership of a region the caller already allocated in
// the arena. Ownership transfers immediately: if the region is rejected,
// it is deallocated before the error is returned, so the caller never
// leaks it.
func AttachBytes(a *arena.Arena, off uint64, size uint32) (Strong[Buffer], error) {
	buf := &Buffer{Offset: off, Size: size}
	del := arenaDeleter(a)
	if err := checkDataLength(size); err != nil {
		del(buf)
		return Strong[Buffer]{}, err
	}
	return NewStrong(buf, del), nil
}

// CloneBytes copies the region into a freshly allocated one with its own
// ownership.
func CloneBytes(a *arena.Arena, s Strong[Buffer]) (Strong[Buffer], error) {
	src := s.Get()
	out, err := NewBytes(a, src.Size)
	if err != nil {
		return Strong[Buffer]{}, err
	}
	copy(out.Get().Bytes(a), src.Bytes(a))
	return out, nil
}
