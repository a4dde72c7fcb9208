package kernels

import (
	"testing"

	guda "github.com/LynnColeArt/gudahawkes"
)

func TestModulateTimeOfDay(t *testing.T) {
	s := guda.StreamOrFail(t)
	const n = 3

	rm := []float64{
		1, 1, 1,
		2, 4, 8,
	}
	prob := []float64{0.5, 2}
	bucket := []int32{1, 0, 1}
	guda.LaunchResultOrFail(t, ModulateTimeOfDay(s, TimeOfDayArgs{RateMatrix: rm, K: 2, N: n, Prob: prob, Bucket: bucket}))
	guda.SynchronizeStreamOrFail(t, s)

	want := []float64{2, 0.5, 2, 4, 2, 16}
	for i := range want {
		if rm[i] != want[i] {
			t.Errorf("RateMatrix[%d] = %v, want %v", i, rm[i], want[i])
		}
	}
}

func TestModulateTimeOfDayRejectsBadBucket(t *testing.T) {
	s := guda.StreamOrFail(t)
	err := ModulateTimeOfDay(s, TimeOfDayArgs{
		RateMatrix: make([]float64, 2), K: 1, N: 2,
		Prob: []float64{1}, Bucket: []int32{0, 3},
	})
	if !guda.IsInvalidArgError(err) {
		t.Errorf("error = %v, want invalid argument", err)
	}
}

func TestTimeOfDayBuckets(t *testing.T) {
	s := guda.StreamOrFail(t)

	times := []float64{0, 5.9, 6, 23.99, 24, 30, -1}
	bucket := make([]int32, len(times))
	guda.LaunchResultOrFail(t, TimeOfDayBuckets(s, BucketArgs{Times: times, Period: 24, NBuckets: 4, Bucket: bucket}))
	guda.SynchronizeStreamOrFail(t, s)

	want := []int32{0, 0, 1, 3, 0, 1, 3}
	for j := range want {
		if bucket[j] != want[j] {
			t.Errorf("time %v: bucket %d, want %d", times[j], bucket[j], want[j])
		}
	}
}
