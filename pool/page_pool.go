// File: pool/page_pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Page-aligned block source with an optional bounded free list of single
// pages. Single pages are the dominant size: every small-append tail of a
// sequence is one page.

package pool

import (
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-buffer/api"
)

const defaultPoolCapacity = 1024

// PagePool implements api.PageSource.
type PagePool struct {
	pageSize int

	mu       sync.Mutex
	free     *queue.Queue // recycled one-page blocks
	capacity int
	recycle  atomic.Bool

	totalAlloc atomic.Int64
	totalFree  atomic.Int64
	recycled   atomic.Int64
}

// PagePoolOption customizes a PagePool.
type PagePoolOption func(*PagePool)

// WithCapacity bounds the number of cached free pages.
func WithCapacity(n int) PagePoolOption {
	return func(p *PagePool) { p.capacity = n }
}

// WithRecycling enables reuse of released single-page blocks. A recycled
// block is handed to the next Get, so any slice still aliasing it after its
// segment was released sees the new owner's writes. Only enable it when
// callers copy out what they keep past Release.
func WithRecycling(on bool) PagePoolOption {
	return func(p *PagePool) { p.recycle.Store(on) }
}

// NewPagePool creates a pool. Recycling is off unless requested.
func NewPagePool(opts ...PagePoolOption) *PagePool {
	p := &PagePool{
		pageSize: PageSize,
		free:     queue.New(),
		capacity: defaultPoolCapacity,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// SetRecycling toggles free-list reuse at runtime. Disabling it drops the
// cached pages. See WithRecycling for the aliasing hazard.
func (p *PagePool) SetRecycling(on bool) {
	p.recycle.Store(on)
	if on {
		return
	}
	p.mu.Lock()
	for p.free.Length() > 0 {
		p.free.Remove()
	}
	p.mu.Unlock()
}

// Get returns a page-aligned block of exactly n bytes. Recycled pages are not
// zeroed.
func (p *PagePool) Get(n int) ([]byte, error) {
	if n < 0 {
		return nil, api.Errorf(api.ErrCodeOutOfMemory, "negative block size %d", n)
	}
	if n == p.pageSize && p.recycle.Load() {
		p.mu.Lock()
		if p.free.Length() > 0 {
			block := p.free.Remove().([]byte)
			p.mu.Unlock()
			p.recycled.Add(1)
			p.totalAlloc.Add(1)
			return block, nil
		}
		p.mu.Unlock()
	}
	block := AlignedAlloc(n, p.pageSize)
	p.totalAlloc.Add(1)
	return block, nil
}

// Put takes a block back. Only single pages are cached; everything else is
// left to the garbage collector.
func (p *PagePool) Put(block []byte) {
	p.totalFree.Add(1)
	if len(block) != p.pageSize || !p.recycle.Load() {
		return
	}
	p.mu.Lock()
	if p.free.Length() < p.capacity {
		p.free.Add(block[:p.pageSize:p.pageSize])
	}
	p.mu.Unlock()
}

// Stats exposes accounting for observability.
func (p *PagePool) Stats() api.BufferPoolStats {
	p.mu.Lock()
	cached := p.free.Length()
	p.mu.Unlock()
	alloc := p.totalAlloc.Load()
	free := p.totalFree.Load()
	return api.BufferPoolStats{
		TotalAlloc: alloc,
		TotalFree:  free,
		InUse:      alloc - free,
		Recycled:   p.recycled.Load(),
		Cached:     cached,
	}
}

var _ api.PageSource = (*PagePool)(nil)
