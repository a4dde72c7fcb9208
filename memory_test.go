package guda

import (
	"testing"
)

func TestBufferAllocation(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()

	sizes := []int{1, 100, 1000, 100000}
	for _, size := range sizes {
		buf, err := ctx.MallocFloat64(size)
		if err != nil {
			t.Fatalf("Failed to allocate %d float64s: %v", size, err)
		}
		if len(buf) != size {
			t.Errorf("Expected length %d, got %d", size, len(buf))
		}
		for i := range buf {
			buf[i] = float64(i)
		}
		if err := ctx.Free(buf); err != nil {
			t.Fatalf("Failed to free buffer: %v", err)
		}
	}
}

func TestBufferReuseIsZeroed(t *testing.T) {
	pool := NewBufferPool()

	a, _ := pool.Int32(100)
	for i := range a {
		a[i] = 7
	}
	if err := pool.Free(a); err != nil {
		t.Fatal(err)
	}

	b, _ := pool.Int32(90)
	if &a[0] != &b[0] {
		t.Error("expected buffer from the same size class to be reused")
	}
	for i, v := range b {
		if v != 0 {
			t.Fatalf("reused buffer not zeroed at %d: %d", i, v)
		}
	}
}

func TestBufferPoolErrors(t *testing.T) {
	pool := NewBufferPool()

	if _, err := pool.Float64(0); err != ErrInvalidSize {
		t.Errorf("Float64(0) error = %v, want ErrInvalidSize", err)
	}

	buf, _ := pool.Float64(10)
	if err := pool.Free(buf); err != nil {
		t.Fatal(err)
	}
	if err := pool.Free(buf); err != ErrDoubleFree {
		t.Errorf("second Free error = %v, want ErrDoubleFree", err)
	}
	if err := pool.Free(make([]float64, 4)); err != ErrForeignBuffer {
		t.Errorf("foreign Free error = %v, want ErrForeignBuffer", err)
	}
	if err := pool.Free("nope"); !IsInvalidArgError(err) {
		t.Errorf("Free(string) error = %v, want invalid argument", err)
	}
}

func TestBufferPoolStats(t *testing.T) {
	pool := NewBufferPool()

	a, _ := pool.Float64(1000) // class 1024
	b, _ := pool.Int32(16)     // class 16

	allocated, peak := pool.Stats()
	want := int64(1024*8 + 16*4)
	if allocated != want || peak != want {
		t.Errorf("Stats() = (%d, %d), want (%d, %d)", allocated, peak, want, want)
	}

	pool.Free(a)
	pool.Free(b)
	allocated, peak = pool.Stats()
	if allocated != 0 || peak != want {
		t.Errorf("after Free Stats() = (%d, %d), want (0, %d)", allocated, peak, want)
	}
}
