package refptr

import (
	"testing"
)

func Test_UseCountTracksOwners(t *testing.T) {
	a := New(42)
	if a.UseCount() != 1 {
		t.Fatalf("expected use count 1, got %d", a.UseCount())
	}

	b := a.Clone()
	if a.UseCount() != 2 || b.UseCount() != 2 {
		t.Fatal("clone did not retain")
	}

	var c Strong[int]
	c.Assign(&b)
	if a.UseCount() != 3 {
		t.Fatalf("expected use count 3, got %d", a.UseCount())
	}

	b.Release()
	c.Release()
	if a.UseCount() != 1 {
		t.Fatalf("expected use count 1, got %d", a.UseCount())
	}
	a.Release()
	if a.UseCount() != 0 || !a.IsNull() {
		t.Fatal("released handle should be null")
	}
}

func Test_CustomDeleterRunsOnce(t *testing.T) {
	deleted := 0
	p := new(int)
	*p = 42

	s := NewStrong(p, func(q *int) {
		if q != p {
			t.Fatal("deleter got the wrong address")
		}
		deleted++
	})
	s2 := s.Clone()

	s.Release()
	if deleted != 0 {
		t.Fatal("deleter ran while owners remain")
	}
	s2.Release()
	if deleted != 1 {
		t.Fatalf("deleter ran %d times", deleted)
	}
	s2.Release() // released handle, no-op
	if deleted != 1 {
		t.Fatal("double release ran the deleter again")
	}
}

func Test_NilDeleter(t *testing.T) {
	base := LiveBlocks()
	s := NewStrong(new(int), nil)
	s.Release()
	if LiveBlocks() != base {
		t.Fatal("block not retired")
	}
}

func Test_FactoryConstructsInPlace(t *testing.T) {
	base := LiveBlocks()
	s := New(42)
	if s.Get() == nil || *s.Get() != 42 {
		t.Fatal("factory did not construct the value")
	}
	if LiveBlocks() != base+1 {
		t.Fatal("factory should cost a single block")
	}
	s.Release()
	if LiveBlocks() != base {
		t.Fatal("block not retired")
	}
}

func Test_SelfAssign(t *testing.T) {
	s := New("x")
	s.Assign(&s)
	if s.UseCount() != 1 || *s.Get() != "x" {
		t.Fatal("self-assignment changed the handle")
	}
	s.Release()
}

func Test_MoveTransfersOwnership(t *testing.T) {
	a := New(7)
	b := a.Move()
	if !a.IsNull() {
		t.Fatal("moved-from handle should be null")
	}
	if b.UseCount() != 1 || *b.Get() != 7 {
		t.Fatal("move lost the object")
	}

	c := New(9)
	c.MoveAssign(&b)
	if !b.IsNull() || *c.Get() != 7 || c.UseCount() != 1 {
		t.Fatal("move assignment went wrong")
	}
	c.Release()
}

func Test_Swap(t *testing.T) {
	a := New(1)
	b := New(2)
	a.Swap(&b)
	if *a.Get() != 2 || *b.Get() != 1 {
		t.Fatal("swap did not exchange handles")
	}
	a.Release()
	b.Release()
}

func Test_Reset(t *testing.T) {
	deleted := 0
	s := NewStrong(new(int), func(*int) { deleted++ })
	s.Reset()
	if deleted != 1 || !s.IsNull() {
		t.Fatal("reset did not release")
	}

	s = NewStrong(new(int), func(*int) { deleted++ })
	s.ResetTo(new(int), func(*int) { deleted += 10 })
	if deleted != 2 {
		t.Fatal("reset-to did not release the old object")
	}
	s.Release()
	if deleted != 12 {
		t.Fatal("reset-to did not install the new deleter")
	}
}

func Test_Equality(t *testing.T) {
	a := New(42)
	b := New(42)
	if a.Equal(b) {
		t.Fatal("distinct objects compared equal")
	}
	c := a.Clone()
	if !a.Equal(c) {
		t.Fatal("clone compared unequal")
	}

	var null1, null2 Strong[int]
	if !null1.IsNull() || !null1.Equal(null2) {
		t.Fatal("null handles should compare equal")
	}
	a.Release()
	b.Release()
	c.Release()
}

type outer struct {
	inner int
}

func Test_AliasKeepsOwnerAlive(t *testing.T) {
	deleted := 0
	o := &outer{inner: 5}
	s := NewStrong(o, func(*outer) { deleted++ })

	in := Alias(s, &o.inner)
	if in.UseCount() != 2 || *in.Get() != 5 {
		t.Fatal("alias did not share ownership")
	}

	s.Release()
	if deleted != 0 {
		t.Fatal("aliased owner destroyed the object early")
	}
	in.Release()
	if deleted != 1 {
		t.Fatal("object not destroyed with last alias")
	}
}

func Test_AliasNull(t *testing.T) {
	var s Strong[outer]
	x := 3
	in := Alias(s, &x)
	if !in.IsNull() {
		t.Fatal("aliasing a null handle should yield a null handle")
	}
}

func Test_AliasAsConversion(t *testing.T) {
	o := &outer{inner: 8}
	s := NewStrong(o, nil)

	// Upcast-style conversion: hand out the embedded field while the whole
	// object stays alive.
	field := Alias(s, &s.Get().inner)
	s.Release()
	if *field.Get() != 8 {
		t.Fatal("converted handle lost the value")
	}
	field.Release()
}
