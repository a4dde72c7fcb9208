// Package kernels implements the background-rate kernels of a Hawkes
// process MCMC sampler on the guda device runtime.
//
// Every launcher validates its arguments on the host, enqueues one kernel on
// the given stream and returns. Outputs are visible once the stream has been
// synchronized; callers are responsible for synchronizing between a kernel
// that writes a buffer and a later step that reads it.
//
// Array conventions:
//
//   - Event arrays (times, process ids C, parent indicators Z, bin offsets and
//     fractions) have one entry per event j in [0, N).
//   - Z[j] == -1 marks an event attributed to the background.
//   - The rate matrix is K×N, row-major: RateMatrix[k*N+j].
//   - Knot arrays are K×NKnots, row-major, holding log intensities.
package kernels
