package refptr

// Strong is an owning handle to a shared object. Every live Strong keeps
// the object alive; the object is destroyed when the last one is released.
//
// A Strong is a small value (block reference plus typed address) and is
// meant to be passed around by value. Copies made through plain Go
// assignment do NOT own a reference: use Clone to create an owning copy
// and Release exactly once per owned handle. The zero value is the null
// handle.
type Strong[T any] struct {
	cb  controlBlock
	ptr *T
}

// NewStrong takes ownership of an object allocated elsewhere. del is run on
// ptr when the last strong owner is released; a nil del means the object
// needs no teardown beyond dropping the reference.
func NewStrong[T any](ptr *T, del Deleter[T]) Strong[T] {
	return Strong[T]{cb: newRegularBlock(ptr, del), ptr: ptr}
}

// New constructs the object inside the control block itself, so the object
// and its bookkeeping share one allocation.
func New[T any](v T) Strong[T] {
	b := newInplaceBlock(v)
	return Strong[T]{cb: b, ptr: b.get()}
}

// Alias returns a strong handle that shares r's ownership but reports p as
// its address. Used when a handle to a sub-object must keep the whole
// object alive, and for converting between related handle types: the
// caller writes the pointer conversion, the type checker verifies it.
//
// p must stay valid for as long as r's block keeps its object alive; that
// is the caller's obligation, nothing here checks it. Aliasing a null
// handle yields a null handle.
func Alias[U, T any](r Strong[T], p *U) Strong[U] {
	if r.cb == nil {
		return Strong[U]{}
	}
	retain(r.cb)
	return Strong[U]{cb: r.cb, ptr: p}
}

// Clone returns a new owning handle to the same object.
func (s Strong[T]) Clone() Strong[T] {
	if s.cb != nil {
		retain(s.cb)
	}
	return s
}

// Move transfers ownership out of s, leaving it null. No counter traffic.
func (s *Strong[T]) Move() Strong[T] {
	out := *s
	s.cb = nil
	s.ptr = nil
	return out
}

// Assign replaces s with an owning copy of other, releasing whatever s
// held. Implemented copy-then-swap so s is untouched until the copy
// exists; assigning a handle to itself is a no-op.
func (s *Strong[T]) Assign(other *Strong[T]) {
	if s == other {
		return
	}
	tmp := other.Clone()
	tmp.Swap(s)
	tmp.Release()
}

// MoveAssign replaces s with other's handle, leaving other null.
func (s *Strong[T]) MoveAssign(other *Strong[T]) {
	tmp := other.Move()
	tmp.Swap(s)
	tmp.Release()
}

func (s *Strong[T]) Swap(other *Strong[T]) {
	s.cb, other.cb = other.cb, s.cb
	s.ptr, other.ptr = other.ptr, s.ptr
}

// Get returns the stored address without touching the counters. It is nil
// for a null handle. Dereferencing the result of a null handle is the
// caller's bug, not a checked condition.
func (s Strong[T]) Get() *T {
	return s.ptr
}

func (s Strong[T]) IsNull() bool {
	return s.ptr == nil
}

// Equal reports whether both handles observe the same object address.
// Ownership machinery is ignored: two handles over different blocks that
// point at the same address compare equal.
func (s Strong[T]) Equal(other Strong[T]) bool {
	return s.ptr == other.ptr
}

// UseCount returns the number of strong owners of the object, 0 for a null
// handle. A snapshot, valid only until the next retain or release.
func (s Strong[T]) UseCount() int {
	if s.cb == nil {
		return 0
	}
	return strongCount(s.cb)
}

// WeakCount returns the number of weak observers of the block, 0 for a
// null handle.
func (s Strong[T]) WeakCount() int {
	if s.cb == nil {
		return 0
	}
	return weakCount(s.cb)
}

// Downgrade returns a weak observer of the same object. The observer never
// keeps the object alive.
func (s Strong[T]) Downgrade() Weak[T] {
	if s.cb != nil {
		retainWeak(s.cb)
	}
	return Weak[T]{cb: s.cb, ptr: s.ptr}
}

// Reset releases the held object, leaving s null.
func (s *Strong[T]) Reset() {
	var empty Strong[T]
	empty.Swap(s)
	empty.Release()
}

// ResetTo releases the held object and takes ownership of ptr instead, as
// NewStrong would.
func (s *Strong[T]) ResetTo(ptr *T, del Deleter[T]) {
	tmp := NewStrong(ptr, del)
	tmp.Swap(s)
	tmp.Release()
}

// Release drops s's ownership and nulls the handle. The object is
// destroyed if this was the last strong owner. Releasing a null handle is
// a no-op, so releasing the same handle twice is harmless; releasing two
// un-Cloned copies of one handle is the same double-release bug it would
// be anywhere else.
func (s *Strong[T]) Release() {
	if s.cb == nil {
		return
	}
	release(s.cb)
	s.cb = nil
	s.ptr = nil
}
