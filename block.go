package refptr

// Deleter releases an object the library was handed ownership of. It is
// invoked exactly once, with the address the owning Strong was created
// from, when the last strong owner goes away.
type Deleter[T any] func(*T)

// regularBlock manages an object that was allocated independently of its
// bookkeeping. It remembers the raw address and the deleter to run on it.
type regularBlock[T any] struct {
	blockHeader
	ptr *T
	del Deleter[T]
}

func newRegularBlock[T any](ptr *T, del Deleter[T]) *regularBlock[T] {
	b := &regularBlock[T]{
		blockHeader: blockHeader{strong: 1},
		ptr:         ptr,
		del:         del,
	}
	trackBlock()
	return b
}

func (b *regularBlock[T]) destroyObject() {
	if b.del != nil {
		b.del(b.ptr)
	}
	b.ptr = nil
}

// inplaceBlock embeds the payload in the block's own allocation, so the
// object and its bookkeeping cost a single allocation. Destruction clears
// the embedded storage, dropping everything the payload referenced; there
// is nothing separate to deallocate.
type inplaceBlock[T any] struct {
	blockHeader
	obj T
}

func newInplaceBlock[T any](v T) *inplaceBlock[T] {
	b := &inplaceBlock[T]{
		blockHeader: blockHeader{strong: 1},
		obj:         v,
	}
	trackBlock()
	return b
}

func (b *inplaceBlock[T]) destroyObject() {
	var zero T
	b.obj = zero
}

func (b *inplaceBlock[T]) get() *T {
	return &b.obj
}
