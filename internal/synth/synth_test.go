package synth

import (
	"math"
	"sort"
	"testing"
)

func TestGenerate(t *testing.T) {
	p := Params{Rates: []float64{2, 0, 5}, TStart: 10, T: 200, Seed: 7}
	ev, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !sort.Float64sAreSorted(ev.Times) {
		t.Error("times not sorted")
	}

	perProcess := make([]int, len(p.Rates))
	for j, tm := range ev.Times {
		if tm < p.TStart || tm >= p.TStart+p.T {
			t.Fatalf("event %d at %v outside window", j, tm)
		}
		if ev.Z[j] != -1 {
			t.Fatalf("event %d has parent %d with ChildProb 0", j, ev.Z[j])
		}
		perProcess[ev.C[j]]++
	}
	if perProcess[1] != 0 {
		t.Errorf("zero-rate process produced %d events", perProcess[1])
	}
	// Poisson counts: mean rate*T, allow 5 standard deviations.
	for k, rate := range p.Rates {
		mean := rate * p.T
		if math.Abs(float64(perProcess[k])-mean) > 5*math.Sqrt(mean)+1e-9 {
			t.Errorf("process %d: %d events, expected about %v", k, perProcess[k], mean)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	p := Params{Rates: []float64{1, 3}, T: 50, ChildProb: 0.3, Seed: 99}
	a, err := Generate(p)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Generate(p)
	if len(a.Times) != len(b.Times) {
		t.Fatalf("lengths differ: %d vs %d", len(a.Times), len(b.Times))
	}
	for j := range a.Times {
		if a.Times[j] != b.Times[j] || a.C[j] != b.C[j] || a.Z[j] != b.Z[j] {
			t.Fatalf("event %d differs between runs", j)
		}
	}
}

func TestGenerateParents(t *testing.T) {
	ev, err := Generate(Params{Rates: []float64{4}, T: 100, ChildProb: 0.5, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	children := 0
	for j, z := range ev.Z {
		if z == -1 {
			continue
		}
		children++
		if z < 0 || int(z) >= j {
			t.Fatalf("event %d: parent %d is not an earlier event", j, z)
		}
	}
	if children == 0 || children == len(ev.Z) {
		t.Errorf("%d children out of %d events", children, len(ev.Z))
	}
	counts := ev.BackgroundCounts(1)
	if counts[0]+children != len(ev.Z) {
		t.Errorf("background %d + children %d != %d", counts[0], children, len(ev.Z))
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"no rates", Params{T: 1}},
		{"zero window", Params{Rates: []float64{1}}},
		{"negative rate", Params{Rates: []float64{-1}, T: 1}},
		{"bad child prob", Params{Rates: []float64{1}, T: 1, ChildProb: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Generate(tt.p); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
