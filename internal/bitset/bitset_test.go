package bitset

import "testing"

func TestSetAllAndClear(t *testing.T) {
	b := New(200)
	b.SetAll(0, 200)
	for i := int64(0); i < 200; i++ {
		if !b.Get(i) {
			t.Fatalf("bit %d should be set", i)
		}
	}
	b.Clear(100)
	if b.Get(100) {
		t.Fatal("bit 100 should be clear")
	}
	if !b.Get(99) || !b.Get(101) {
		t.Fatal("neighboring bits should remain set")
	}
}

func TestSetAllPartialRange(t *testing.T) {
	b := New(130)
	b.SetAll(5, 70)
	for i := int64(0); i < 130; i++ {
		want := i >= 5 && i < 70
		if b.Get(i) != want {
			t.Fatalf("bit %d: got %v, want %v", i, b.Get(i), want)
		}
	}
}

func TestNextSetBit(t *testing.T) {
	b := New(100)
	b.Set(5)
	b.Set(64)
	b.Set(99)

	var vectors = []struct {
		from int64
		want int64
	}{
		{0, 5},
		{5, 5},
		{6, 64},
		{65, 99},
		{100, -1},
		{99, 99},
	}
	for _, v := range vectors {
		if got := b.NextSetBit(v.from); got != v.want {
			t.Errorf("NextSetBit(%d) = %d, want %d", v.from, got, v.want)
		}
	}
}

func TestNextSetBitNoneSet(t *testing.T) {
	b := New(64)
	if got := b.NextSetBit(0); got != -1 {
		t.Errorf("NextSetBit(0) = %d, want -1", got)
	}
}

func TestSieveOfErastothenesShape(t *testing.T) {
	// Classic sieve bitmask over a small bound: after crossing off
	// multiples of 2 and 3, only {2,3,5,7} of [2,9) remain.
	b := New(9)
	b.SetAll(2, 9)
	for i := int64(4); i < 9; i += 2 {
		b.Clear(i)
	}
	for i := int64(6); i < 9; i += 3 {
		b.Clear(i)
	}
	want := map[int64]bool{2: true, 3: true, 5: true, 7: true}
	for i := int64(2); i < 9; i++ {
		if b.Get(i) != want[i] {
			t.Errorf("bit %d: got %v, want %v", i, b.Get(i), want[i])
		}
	}
}
