package kernels

import (
	"testing"

	guda "github.com/LynnColeArt/gudahawkes"
)

func TestCountBackground(t *testing.T) {
	s := guda.StreamOrFail(t)

	c := []int32{0, 0, 1, 0}
	z := []int32{-1, 2, -1, -1}
	counts := make([]int32, 2)
	guda.LaunchResultOrFail(t, CountBackground(s, CountArgs{C: c, Z: z, K: 2, Counts: counts, BlockSize: 4}))
	guda.SynchronizeStreamOrFail(t, s)

	if counts[0] != 2 || counts[1] != 1 {
		t.Errorf("counts = %v, want [2 1]", counts)
	}
}

func TestCountBackgroundMatchesSerial(t *testing.T) {
	s := guda.StreamOrFail(t)
	const n, k = 10007, 7

	c, z := syntheticEvents(3, n, k)
	want := make([]int32, k)
	for j := range c {
		if z[j] == Background {
			want[c[j]]++
		}
	}

	for _, bs := range []int{1, 32, 256, 1024} {
		counts := make([]int32, k)
		guda.LaunchResultOrFail(t, CountBackground(s, CountArgs{C: c, Z: z, K: k, Counts: counts, BlockSize: bs}))
		guda.SynchronizeStreamOrFail(t, s)
		for p := range want {
			if counts[p] != want[p] {
				t.Errorf("B=%d process %d: count %d, want %d", bs, p, counts[p], want[p])
			}
		}
	}
}

func TestCountBackgroundNoEvents(t *testing.T) {
	s := guda.StreamOrFail(t)
	counts := []int32{9, 9}
	guda.LaunchResultOrFail(t, CountBackground(s, CountArgs{K: 2, Counts: counts}))
	guda.SynchronizeStreamOrFail(t, s)
	if counts[0] != 0 || counts[1] != 0 {
		t.Errorf("counts = %v, want zeros", counts)
	}
}
