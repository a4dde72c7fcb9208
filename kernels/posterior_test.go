package kernels

import (
	"testing"

	guda "github.com/LynnColeArt/gudahawkes"
)

func TestUpdatePosterior(t *testing.T) {
	s := guda.StreamOrFail(t)

	counts := []int32{5, 0, 120}
	alphaPost := make([]float64, 3)
	betaPost := make([]float64, 3)
	guda.LaunchResultOrFail(t, UpdatePosterior(s, PosteriorArgs{
		Counts: counts, AlphaPrior: 1.0, BetaPrior: 4.0, T: 100,
		AlphaPost: alphaPost, BetaPost: betaPost,
	}))
	guda.SynchronizeStreamOrFail(t, s)

	wantAlpha := []float64{6, 1, 121}
	for k := range counts {
		if alphaPost[k] != wantAlpha[k] || betaPost[k] != 104 {
			t.Errorf("process %d: (%v, %v), want (%v, 104)", k, alphaPost[k], betaPost[k], wantAlpha[k])
		}
	}
}

func TestUpdatePosteriorShortOutputs(t *testing.T) {
	s := guda.StreamOrFail(t)
	err := UpdatePosterior(s, PosteriorArgs{
		Counts: []int32{1, 2}, AlphaPost: make([]float64, 1), BetaPost: make([]float64, 2),
	})
	if !guda.IsInvalidArgError(err) {
		t.Errorf("error = %v, want invalid argument", err)
	}
}
