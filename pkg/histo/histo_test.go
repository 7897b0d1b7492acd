package histo

import (
	"testing"
)

func fill(b *Buffer[uint64], seed uint64) {
	for i := range b.Buckets {
		v := seed + uint64(i)
		b.Buckets[i] = Bucket[uint64]{Alpha: v, R: v * 2, G: v * 3, B: v * 5}
	}
}

func TestCombineCommutative(t *testing.T) {
	a1, b1 := New[uint64](4, 3), New[uint64](4, 3)
	a2, b2 := New[uint64](4, 3), New[uint64](4, 3)
	fill(a1, 1)
	fill(a2, 1)
	fill(b1, 100)
	fill(b2, 100)

	ab := Combine([]*Buffer[uint64]{a1, b1})
	ba := Combine([]*Buffer[uint64]{b2, a2})

	for i := range ab.Buckets {
		if ab.Buckets[i] != ba.Buckets[i] {
			t.Fatalf("bucket %d: combine([a,b]) = %v, combine([b,a]) = %v", i, ab.Buckets[i], ba.Buckets[i])
		}
	}
}

func TestCombineZeroIdentity(t *testing.T) {
	a := New[uint64](3, 3)
	fill(a, 7)
	want := make([]Bucket[uint64], len(a.Buckets))
	copy(want, a.Buckets)

	got := Combine([]*Buffer[uint64]{a, New[uint64](3, 3)})
	for i := range got.Buckets {
		if got.Buckets[i] != want[i] {
			t.Fatalf("bucket %d: combine with zero buffer = %v, want %v", i, got.Buckets[i], want[i])
		}
	}
}

func TestCombineAccumulatesIntoFirst(t *testing.T) {
	a, b := New[uint64](2, 2), New[uint64](2, 2)
	fill(b, 3)
	got := Combine([]*Buffer[uint64]{a, b})
	if got != a {
		t.Error("Combine must return the first buffer as accumulator")
	}
	if a.Buckets[1].Alpha != 4 {
		t.Errorf("accumulated alpha = %d, want 4", a.Buckets[1].Alpha)
	}
}

func TestCombineEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Combine(nil) did not panic")
		}
	}()
	Combine[uint64](nil)
}

func TestCombineMismatchedDimsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Combine with mismatched dims did not panic")
		}
	}()
	Combine([]*Buffer[uint64]{New[uint64](2, 2), New[uint64](3, 2)})
}

func TestAtRowMajor(t *testing.T) {
	b := New[uint64](4, 3)
	b.At(2, 1).Alpha = 9
	if b.Buckets[2+1*4].Alpha != 9 {
		t.Error("At(2,1) did not address bucket 6")
	}
}

func TestConvertWidens(t *testing.T) {
	b := New[uint64](2, 1)
	b.Buckets[0] = Bucket[uint64]{Alpha: 3, R: 10, G: 20, B: 30}
	f := Convert[float64](b)
	if f.Width != 2 || f.Height != 1 {
		t.Fatalf("converted dims = %dx%d, want 2x1", f.Width, f.Height)
	}
	want := Bucket[float64]{Alpha: 3, R: 10, G: 20, B: 30}
	if f.Buckets[0] != want {
		t.Errorf("converted bucket = %v, want %v", f.Buckets[0], want)
	}
}

func TestReset(t *testing.T) {
	b := New[uint64](2, 2)
	fill(b, 5)
	b.Reset()
	for i, bkt := range b.Buckets {
		if bkt != (Bucket[uint64]{}) {
			t.Fatalf("bucket %d = %v after Reset, want zero", i, bkt)
		}
	}
}
