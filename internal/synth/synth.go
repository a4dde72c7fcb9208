// Package synth generates synthetic multivariate event data with known
// background rates.
package synth

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Params controls Generate.
type Params struct {
	Rates  []float64 // background rate per process
	TStart float64
	T      float64

	// Probability that an event is attributed to an earlier event instead
	// of the background.
	ChildProb float64

	Seed uint64
}

// Events is a time-sorted event set: Times[j], process C[j] and parent
// Z[j] (-1 for background).
type Events struct {
	Times []float64
	C     []int32
	Z     []int32
}

type event struct {
	t float64
	c int32
}

// Generate draws a homogeneous Poisson process per rate over
// [TStart, TStart+T) and merges them in time order. Parents are then
// assigned to a ChildProb share of events, uniformly among earlier events.
func Generate(p Params) (Events, error) {
	if len(p.Rates) == 0 {
		return Events{}, fmt.Errorf("synth: no rates")
	}
	if !(p.T > 0) {
		return Events{}, fmt.Errorf("synth: window length must be positive, got %v", p.T)
	}
	if !(p.ChildProb >= 0 && p.ChildProb <= 1) {
		return Events{}, fmt.Errorf("synth: child probability %v outside [0, 1]", p.ChildProb)
	}

	src := rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15)
	unif := distuv.Uniform{Min: p.TStart, Max: p.TStart + p.T, Src: src}

	var all []event
	for k, rate := range p.Rates {
		if !(rate >= 0) {
			return Events{}, fmt.Errorf("synth: process %d: negative rate %v", k, rate)
		}
		if rate == 0 {
			continue
		}
		count := int(distuv.Poisson{Lambda: rate * p.T, Src: src}.Rand())
		for i := 0; i < count; i++ {
			all = append(all, event{t: unif.Rand(), c: int32(k)})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].t < all[j].t })

	ev := Events{
		Times: make([]float64, len(all)),
		C:     make([]int32, len(all)),
		Z:     make([]int32, len(all)),
	}
	child := distuv.Bernoulli{P: p.ChildProb, Src: src}
	for j, e := range all {
		ev.Times[j], ev.C[j], ev.Z[j] = e.t, e.c, -1
		if j > 0 && p.ChildProb > 0 && child.Rand() == 1 {
			parent := distuv.Uniform{Min: 0, Max: float64(j), Src: src}.Rand()
			ev.Z[j] = int32(min(int(parent), j-1))
		}
	}
	return ev, nil
}

// BackgroundCounts returns the number of background events per process.
func (e Events) BackgroundCounts(k int) []int {
	counts := make([]int, k)
	for j, c := range e.C {
		if e.Z[j] == -1 {
			counts[c]++
		}
	}
	return counts
}
