package guda

import (
	"fmt"
	"math/bits"
	"sync"
	"unsafe"
)

// BufferPool manages device buffers with efficient reuse. Buffers are
// rounded up to power-of-two size classes and returned to a per-class free
// list on Free, so the per-iteration scratch of a sampler loop is allocated
// once and recycled.
type BufferPool struct {
	mu         sync.Mutex
	allocated  map[uintptr]*allocation
	free       map[poolKey][]*allocation
	totalAlloc int64
	peakAlloc  int64
}

type elemKind int

const (
	kindFloat64 elemKind = iota
	kindInt32
)

type poolKey struct {
	kind  elemKind
	class int
}

type allocation struct {
	key  poolKey
	f64  []float64
	i32  []int32
	used bool
}

func (a *allocation) bytes() int64 {
	switch a.key.kind {
	case kindFloat64:
		return int64(a.key.class) * 8
	default:
		return int64(a.key.class) * 4
	}
}

// NewBufferPool creates an empty pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		allocated: make(map[uintptr]*allocation),
		free:      make(map[poolKey][]*allocation),
	}
}

// MallocFloat64 allocates a zeroed float64 buffer of length n on the
// context's device.
func (ctx *Context) MallocFloat64(n int) ([]float64, error) {
	return ctx.buffers.Float64(n)
}

// MallocInt32 allocates a zeroed int32 buffer of length n.
func (ctx *Context) MallocInt32(n int) ([]int32, error) {
	return ctx.buffers.Int32(n)
}

// Free returns a buffer obtained from MallocFloat64 or MallocInt32.
func (ctx *Context) Free(buf interface{}) error {
	return ctx.buffers.Free(buf)
}

func sizeClass(n int) int {
	if n <= MinBufferElems {
		return MinBufferElems
	}
	return 1 << bits.Len(uint(n-1))
}

// Float64 allocates a zeroed float64 buffer of length n.
func (p *BufferPool) Float64(n int) ([]float64, error) {
	if n <= 0 {
		return nil, ErrInvalidSize
	}
	a := p.get(poolKey{kind: kindFloat64, class: sizeClass(n)})
	buf := a.f64[:n]
	clear(buf)
	return buf, nil
}

// Int32 allocates a zeroed int32 buffer of length n.
func (p *BufferPool) Int32(n int) ([]int32, error) {
	if n <= 0 {
		return nil, ErrInvalidSize
	}
	a := p.get(poolKey{kind: kindInt32, class: sizeClass(n)})
	buf := a.i32[:n]
	clear(buf)
	return buf, nil
}

func (p *BufferPool) get(key poolKey) *allocation {
	p.mu.Lock()
	defer p.mu.Unlock()

	var a *allocation
	if list := p.free[key]; len(list) > 0 {
		a = list[len(list)-1]
		p.free[key] = list[:len(list)-1]
	} else {
		a = &allocation{key: key}
		switch key.kind {
		case kindFloat64:
			a.f64 = make([]float64, key.class)
			p.allocated[uintptr(unsafe.Pointer(&a.f64[0]))] = a
		case kindInt32:
			a.i32 = make([]int32, key.class)
			p.allocated[uintptr(unsafe.Pointer(&a.i32[0]))] = a
		}
	}
	a.used = true

	p.totalAlloc += a.bytes()
	if p.totalAlloc > p.peakAlloc {
		p.peakAlloc = p.totalAlloc
	}
	return a
}

// Free returns a buffer to the pool.
func (p *BufferPool) Free(buf interface{}) error {
	var addr uintptr
	switch b := buf.(type) {
	case []float64:
		if cap(b) == 0 {
			return nil
		}
		addr = uintptr(unsafe.Pointer(&b[:1][0]))
	case []int32:
		if cap(b) == 0 {
			return nil
		}
		addr = uintptr(unsafe.Pointer(&b[:1][0]))
	default:
		return NewInvalidArgError("Free", fmt.Sprintf("unsupported buffer type: %T", buf))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	a, ok := p.allocated[addr]
	if !ok {
		return ErrForeignBuffer
	}
	if !a.used {
		return ErrDoubleFree
	}
	a.used = false
	p.totalAlloc -= a.bytes()
	if len(p.free[a.key]) < FreeListThreshold {
		p.free[a.key] = append(p.free[a.key], a)
	} else {
		delete(p.allocated, addr)
	}
	return nil
}

// Stats returns the bytes currently handed out and the peak.
func (p *BufferPool) Stats() (allocated, peak int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalAlloc, p.peakAlloc
}
