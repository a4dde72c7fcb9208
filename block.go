package guda

import "sync"

// Block is the state shared by the threads of one cooperative block. Shared,
// Flags and Index play the role of __shared__ memory: each has one slot per
// thread and is private to the block.
type Block struct {
	Shared []float64
	Flags  []bool
	Index  []int

	barrier *Barrier
}

func newBlock(size int) *Block {
	return &Block{
		Shared:  make([]float64, size),
		Flags:   make([]bool, size),
		Index:   make([]int, size),
		barrier: NewBarrier(size),
	}
}

// Size returns the number of threads in the block.
func (b *Block) Size() int {
	return len(b.Shared)
}

// Sync blocks until every thread of the block has called Sync. Writes made
// to Shared or Flags before the call are visible to all threads after it.
func (b *Block) Sync() {
	b.barrier.Wait()
}

// Barrier is a reusable count-down barrier. Every round releases once all
// parties have arrived; the next round starts immediately.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	parties    int
	waiting    int
	generation uint64
	broken     bool
}

// NewBarrier returns a barrier for the given number of parties.
func NewBarrier(parties int) *Barrier {
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all parties have called Wait for the current round.
// It panics with ErrBarrierBroken if the barrier is broken while waiting or
// was broken before the call.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.broken {
		panic(ErrBarrierBroken)
	}

	gen := b.generation
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
		return
	}

	for gen == b.generation && !b.broken {
		b.cond.Wait()
	}
	if gen == b.generation && b.broken {
		panic(ErrBarrierBroken)
	}
}

// Break releases every waiter with ErrBarrierBroken. Later calls to Wait
// fail immediately.
func (b *Barrier) Break() {
	b.mu.Lock()
	b.broken = true
	b.mu.Unlock()
	b.cond.Broadcast()
}

// Broken reports whether Break has been called.
func (b *Barrier) Broken() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.broken
}
