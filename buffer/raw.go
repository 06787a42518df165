// File: buffer/raw.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reference-counted backing memory with a per-range checksum cache.

package buffer

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-buffer/pool"
)

type crcRange struct{ from, to int }

type crcEntry struct{ in, out uint32 }

// Raw is a contiguous block of bytes shared by any number of Ptr values.
// The block is dropped when the last reference is released.
type Raw struct {
	data     []byte
	n        int
	nref     atomic.Int32
	strategy Strategy
	alloc    *Allocator

	crcMu  sync.Mutex
	crcMap map[crcRange]crcEntry

	pipe *pipeState
}

// Len is the usable length of the block.
func (r *Raw) Len() int { return r.n }

// Strategy reports where the block came from.
func (r *Raw) Strategy() Strategy { return r.strategy }

// Refs returns the current reference count.
func (r *Raw) Refs() int { return int(r.nref.Load()) }

// Data returns the whole block. Pipe-backed blocks are copied into memory on
// first access; that copy can fail. Like Ptr.Data, the slice must not be used
// after the last reference is dropped.
func (r *Raw) Data() ([]byte, error) {
	if r.pipe == nil {
		return r.data, nil
	}
	return r.materialize()
}

// IsPageAligned reports whether the first byte starts a page.
func (r *Raw) IsPageAligned() bool {
	switch r.strategy {
	case PageAligned:
		return true
	case Pipe:
		return false
	}
	return pool.IsAligned(r.data, pool.PageSize)
}

// IsNPageSized reports whether the length is a whole number of pages.
func (r *Raw) IsNPageSized() bool { return r.n&^pool.PageMask == 0 }

// CanZeroCopy reports whether the block can still be spliced to a
// descriptor without passing through user memory.
func (r *Raw) CanZeroCopy() bool {
	return r.pipe != nil && r.pipe.usable()
}

// Clone returns an independent copy of the block. Page-aligned blocks clone
// into page-aligned memory; every other strategy clones onto the heap, since
// static and pipe storage cannot be duplicated in kind.
func (r *Raw) Clone() (*Raw, error) {
	d, err := r.Data()
	if err != nil {
		return nil, err
	}
	a := r.allocator()
	if r.strategy != PageAligned {
		return a.Copy(d[:r.n])
	}
	c, err := a.CreatePageAligned(r.n)
	if err != nil {
		return nil, err
	}
	copy(c.data, d[:r.n])
	return c, nil
}

// CachedCRC returns the cached (seed, crc) pair for the raw-absolute range
// [from, to).
func (r *Raw) CachedCRC(from, to int) (in, out uint32, ok bool) {
	r.crcMu.Lock()
	defer r.crcMu.Unlock()
	e, ok := r.crcMap[crcRange{from, to}]
	return e.in, e.out, ok
}

// SetCachedCRC stores the checksum of [from, to) computed from seed in.
func (r *Raw) SetCachedCRC(from, to int, in, out uint32) {
	r.crcMu.Lock()
	if r.crcMap == nil {
		r.crcMap = make(map[crcRange]crcEntry, 1)
	}
	r.crcMap[crcRange{from, to}] = crcEntry{in, out}
	r.crcMu.Unlock()
}

// InvalidateCRC drops every cached checksum.
func (r *Raw) InvalidateCRC() {
	r.crcMu.Lock()
	r.crcMap = nil
	r.crcMu.Unlock()
}

// cachedRanges reports how many ranges currently hold a checksum.
func (r *Raw) cachedRanges() int {
	r.crcMu.Lock()
	defer r.crcMu.Unlock()
	return len(r.crcMap)
}

// touch records a write to [from, to): overlapping checksums are dropped and
// a pipe copy no longer matches the pipe.
func (r *Raw) touch(from, to int) {
	if from >= to {
		return
	}
	if r.pipe != nil {
		r.pipe.dirty.Store(true)
	}
	r.crcMu.Lock()
	for k := range r.crcMap {
		if k.from < to && from < k.to {
			delete(r.crcMap, k)
		}
	}
	r.crcMu.Unlock()
}

func (r *Raw) allocator() *Allocator {
	if r.alloc == nil {
		return defaultAllocator
	}
	return r.alloc
}

func (r *Raw) get() { r.nref.Add(1) }

func (r *Raw) put() {
	v := r.nref.Add(-1)
	switch {
	case v == 0:
		r.drop()
	case v < 0:
		panic(fmt.Sprintf("buffer: raw %p released more times than referenced", r))
	}
}

func (r *Raw) drop() {
	a := r.allocator()
	switch r.strategy {
	case Heap:
		a.tracker.Free(r.n)
		r.data = nil
	case PageAligned:
		a.tracker.Free(r.n)
		a.pages.Put(r.data)
		r.data = nil
	case Pipe:
		a.tracker.Free(r.n)
		r.pipe.close()
	}
}

func (r *Raw) String() string {
	return fmt.Sprintf("raw(%s len %d nref %d)", r.strategy, r.n, r.Refs())
}
