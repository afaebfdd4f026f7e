package bitset

import (
	"testing"
)

func TestBitmapSetClear(t *testing.T) {
	var s Bitmap

	s.Set(3)
	s.Set(65)
	s.Set(128)

	if !s.IsSet(3) || !s.IsSet(65) || !s.IsSet(128) {
		t.Errorf("expected bits set, got %v", s)
	}

	if s.IsSet(4) {
		t.Errorf("bit 4 should not be set")
	}

	if s.Size() != 3 {
		t.Errorf("size: want 3, got %d", s.Size())
	}

	s.Clear(65)

	if s.IsSet(65) {
		t.Errorf("bit 65 should have been cleared")
	}

	if s.Size() != 2 {
		t.Errorf("size after clear: want 2, got %d", s.Size())
	}
}

func TestBitmapOrAndAndNot(t *testing.T) {
	var a, b Bitmap

	a.Set(1)
	a.Set(2)
	b.Set(2)
	b.Set(3)

	or := a.Copy()
	or.Or(b)

	for _, i := range []int{1, 2, 3} {
		if !or.IsSet(i) {
			t.Errorf("or: bit %d should be set", i)
		}
	}

	and := a.Copy()
	and.And(b)

	if and.Size() != 1 || !and.IsSet(2) {
		t.Errorf("and: want only bit 2 set, got %v", and)
	}

	andNot := a.Copy()
	andNot.AndNot(b)

	if andNot.Size() != 1 || !andNot.IsSet(1) {
		t.Errorf("andnot: want only bit 1 set, got %v", andNot)
	}
}

func TestBitmapRange(t *testing.T) {
	var s Bitmap

	want := []int{0, 5, 70, 200}
	for _, i := range want {
		s.Set(i)
	}

	var got []int
	s.Range(func(i int) bool {
		got = append(got, i)
		return true
	})

	if len(got) != len(want) {
		t.Errorf("range: want %v, got %v", want, got)
	}

	for i, w := range want {
		if i >= len(got) || got[i] != w {
			t.Errorf("range: want %v, got %v", want, got)
			break
		}
	}
}

func TestBitsKeyedBase(t *testing.T) {
	s := MakeBits[int](100)

	s.Set(100)
	s.Set(164)

	if !s.IsSet(100) || !s.IsSet(164) {
		t.Errorf("expected 100 and 164 set")
	}

	if s.IsSet(0) {
		t.Errorf("index below base should never be set")
	}

	if s.Size() != 2 {
		t.Errorf("size: want 2, got %d", s.Size())
	}

	s.Clear(100)

	if s.IsSet(100) {
		t.Errorf("100 should have been cleared")
	}
}

func TestBitsMergeIntersectSubstract(t *testing.T) {
	a := MakeBits[int](0)
	b := MakeBits[int](0)

	a.SetAll(1, 2, 3)
	b.SetAll(2, 3, 4)

	m := a.Copy()
	m.Merge(b)

	for _, k := range []int{1, 2, 3, 4} {
		if !m.IsSet(k) {
			t.Errorf("merge: want %d set", k)
		}
	}

	inter := a.Copy()
	inter.Intersect(b)

	if inter.Size() != 2 || !inter.IsSet(2) || !inter.IsSet(3) {
		t.Errorf("intersect: want {2,3}, got size %d", inter.Size())
	}

	sub := a.Copy()
	sub.Substract(b)

	if sub.Size() != 1 || !sub.IsSet(1) {
		t.Errorf("substract: want {1}, got size %d", sub.Size())
	}
}
