package refptr

// Weak is a non-owning observer of a shared object. It never keeps the
// object alive; the only way to reach the object through it is a
// successful Lock. The zero value is the null observer.
type Weak[T any] struct {
	cb  controlBlock
	ptr *T
}

// Clone returns a new observer of the same object.
func (w Weak[T]) Clone() Weak[T] {
	if w.cb != nil {
		retainWeak(w.cb)
	}
	return w
}

// Move transfers the observation out of w, leaving it null.
func (w *Weak[T]) Move() Weak[T] {
	out := *w
	w.cb = nil
	w.ptr = nil
	return out
}

// Assign replaces w with an observer of whatever other observes.
// Self-assignment is a no-op.
func (w *Weak[T]) Assign(other *Weak[T]) {
	if w == other {
		return
	}
	tmp := other.Clone()
	tmp.Swap(w)
	tmp.Release()
}

// AssignStrong makes w observe the object s owns.
func (w *Weak[T]) AssignStrong(s Strong[T]) {
	tmp := s.Downgrade()
	tmp.Swap(w)
	tmp.Release()
}

func (w *Weak[T]) Swap(other *Weak[T]) {
	w.cb, other.cb = other.cb, w.cb
	w.ptr, other.ptr = other.ptr, w.ptr
}

// Expired reports whether the observed object is gone. A null observer is
// expired.
func (w Weak[T]) Expired() bool {
	return w.cb == nil || expired(w.cb)
}

// Lock attempts to regain strong access. It returns an owning handle if
// the object is still alive and a null handle once the last strong owner
// has gone away; after that it returns null forever.
func (w Weak[T]) Lock() Strong[T] {
	if w.cb == nil || expired(w.cb) {
		return Strong[T]{}
	}
	retain(w.cb)
	return Strong[T]{cb: w.cb, ptr: w.ptr}
}

// Release drops the observation and nulls the handle. Releasing a null
// observer is a no-op.
func (w *Weak[T]) Release() {
	if w.cb == nil {
		return
	}
	releaseWeak(w.cb)
	w.cb = nil
	w.ptr = nil
}
