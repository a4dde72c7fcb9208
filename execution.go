package guda

import (
	"fmt"
	"sync"
)

// Stream represents an ordered sequence of operations. Operations within a
// stream execute in order, operations in different streams may execute
// concurrently.
type Stream struct {
	id    int
	ctx   *Context
	tasks chan func() error
	done  chan struct{}
	wg    sync.WaitGroup

	mu     sync.Mutex
	err    error
	closed bool
}

// ID returns the stream identifier.
func (s *Stream) ID() int {
	return s.id
}

// worker processes tasks for a stream
func (s *Stream) worker() {
	for task := range s.tasks {
		if err := task(); err != nil {
			s.mu.Lock()
			if s.err == nil {
				s.err = err
			}
			s.mu.Unlock()
		}
		s.wg.Done()
	}
	close(s.done)
}

// Submit adds a task to the stream.
func (s *Stream) Submit(task func() error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStreamClosed
	}
	s.wg.Add(1)
	s.mu.Unlock()
	s.tasks <- task
	return nil
}

// Synchronize waits for all tasks in the stream to complete. It returns the
// first error recorded since the previous Synchronize and clears it.
func (s *Stream) Synchronize() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.err
	s.err = nil
	return err
}

func (s *Stream) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
	close(s.tasks)
	<-s.done
}

// Launch enqueues an elementwise kernel. Blocks are spread across the
// context's workers and the threads of a block run one after another.
func (s *Stream) Launch(fn KernelFunc, grid, block Dim3) error {
	if fn == nil {
		return NewInvalidArgError("Launch", "nil kernel")
	}
	grid, block = grid.normalize(), block.normalize()
	if err := checkDims("Launch", grid, block); err != nil {
		return err
	}
	workers := s.ctx.workers
	return s.Submit(func() error {
		return runBlocks("Launch", grid, workers, func(blockIdx Dim3) {
			blockSize := block.Size()
			for threadID := 0; threadID < blockSize; threadID++ {
				fn(ThreadID{
					BlockIdx:  blockIdx,
					ThreadIdx: linearTo3D(threadID, block),
					BlockDim:  block,
					GridDim:   grid,
				})
			}
		})
	})
}

// LaunchCooperative enqueues a kernel whose threads may share memory and
// synchronize. Each thread of a block runs on its own goroutine and all of
// them receive the same *Block.
func (s *Stream) LaunchCooperative(fn BlockKernelFunc, grid, block Dim3) error {
	if fn == nil {
		return NewInvalidArgError("LaunchCooperative", "nil kernel")
	}
	grid, block = grid.normalize(), block.normalize()
	if err := checkDims("LaunchCooperative", grid, block); err != nil {
		return err
	}
	workers := s.ctx.workers
	return s.Submit(func() error {
		return runBlocks("LaunchCooperative", grid, workers, func(blockIdx Dim3) {
			runBlock(fn, blockIdx, grid, block)
		})
	})
}

func checkDims(op string, grid, block Dim3) error {
	if grid.X < 0 || grid.Y < 0 || grid.Z < 0 {
		return NewInvalidArgError(op, fmt.Sprintf("negative grid dimension %+v", grid))
	}
	if block.X < 0 || block.Y < 0 || block.Z < 0 {
		return NewInvalidArgError(op, fmt.Sprintf("negative block dimension %+v", block))
	}
	if block.Size() > MaxThreadsPerBlock {
		return NewInvalidArgError(op,
			fmt.Sprintf("block of %d threads exceeds %d", block.Size(), MaxThreadsPerBlock))
	}
	return nil
}

// runBlocks partitions the grid over workers. Each worker processes a
// contiguous range of blocks to keep cache reuse high. A panic in any block
// stops that worker and is reported as an execution error.
func runBlocks(op string, grid Dim3, workers int, body func(blockIdx Dim3)) error {
	gridSize := grid.Size()
	numWorkers := workers
	if gridSize < numWorkers {
		numWorkers = gridSize
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	blocksPerWorker := (gridSize + numWorkers - 1) / numWorkers

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		startBlock := w * blocksPerWorker
		endBlock := startBlock + blocksPerWorker
		if endBlock > gridSize {
			endBlock = gridSize
		}

		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errOnce.Do(func() {
						firstErr = NewExecutionError(op, "kernel panicked", panicError(r))
					})
				}
			}()
			for blockID := startBlock; blockID < endBlock; blockID++ {
				body(linearTo3D(blockID, grid))
			}
		}()
	}
	wg.Wait()
	return firstErr
}

// runBlock executes one cooperative block. If a thread panics the block's
// barrier is broken so the remaining threads unwind instead of waiting
// forever, and the original panic is re-raised on the caller's goroutine.
func runBlock(fn BlockKernelFunc, blockIdx, grid, block Dim3) {
	blockSize := block.Size()
	blk := newBlock(blockSize)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed interface{}
	)
	wg.Add(blockSize)
	for t := 0; t < blockSize; t++ {
		tid := ThreadID{
			BlockIdx:  blockIdx,
			ThreadIdx: linearTo3D(t, block),
			BlockDim:  block,
			GridDim:   grid,
		}
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					if failed == nil {
						failed = r
					}
					mu.Unlock()
					blk.barrier.Break()
				}
			}()
			fn(tid, blk)
		}()
	}
	wg.Wait()

	if failed != nil {
		panic(failed)
	}
}

func panicError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

// linearTo3D converts a linear index to 3D coordinates
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}
