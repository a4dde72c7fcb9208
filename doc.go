// Copyright ©2019 The Gonum Authors. All rights reserved.
// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package guda is the CPU device runtime underneath the Hawkes background
// rate kernels in package kernels.
//
// The runtime keeps the CUDA execution model so the kernels read like their
// GPU counterparts: a launch covers a grid of independent blocks, each block
// holds a fixed power-of-two number of threads, and threads of one block
// cooperate through per-block scratch memory and a full barrier. Blocks never
// share mutable state and launches on one stream complete in order.
package guda
