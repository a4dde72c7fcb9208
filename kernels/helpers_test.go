package kernels

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// drawVariates fills the uniform and normal streams a SampleGamma launch
// consumes.
func drawVariates(seed uint64, n int) (uniforms, normals []float64) {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	unif := distuv.Uniform{Min: 0, Max: 1, Src: src}
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	uniforms = make([]float64, n)
	normals = make([]float64, n)
	for i := 0; i < n; i++ {
		// (0, 1]: reflect so an exact zero draw cannot occur.
		uniforms[i] = 1 - unif.Rand()
		normals[i] = norm.Rand()
	}
	return uniforms, normals
}

// syntheticEvents builds n events spread over k processes with roughly a
// third of them attributed to the background.
func syntheticEvents(seed uint64, n, k int) (c, z []int32) {
	r := rand.New(rand.NewPCG(seed, seed+1))
	c = make([]int32, n)
	z = make([]int32, n)
	for j := range c {
		c[j] = int32(r.IntN(k))
		if r.IntN(3) == 0 {
			z[j] = Background
		} else {
			z[j] = int32(r.IntN(n))
		}
	}
	return c, z
}

func nearlyEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
