// File: buffer/allocator.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Allocation strategies and the named constructors for raw segments.

package buffer

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/momentics/hioload-buffer/api"
	"github.com/momentics/hioload-buffer/internal/sysio"
	"github.com/momentics/hioload-buffer/pool"
)

// Strategy tags how a raw segment obtained its memory and how it gives it
// back.
type Strategy uint8

const (
	// Heap blocks come from make and are left to the garbage collector.
	Heap Strategy = iota
	// PageAligned blocks start on a page boundary and are returned to the
	// allocator's page source when dropped.
	PageAligned
	// Static blocks are owned by the caller and never released here.
	Static
	// Pipe blocks live inside a kernel pipe and move by splice.
	Pipe
)

func (s Strategy) String() string {
	switch s {
	case Heap:
		return "heap"
	case PageAligned:
		return "aligned"
	case Static:
		return "static"
	case Pipe:
		return "pipe"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// DefaultMaxAlloc caps a single raw segment, matching a 32-bit length field.
const DefaultMaxAlloc = math.MaxInt32

// Allocator creates raw segments and carries the injectable state they
// report to: tracker, logger and page source.
type Allocator struct {
	tracker  api.Tracker
	logger   log.Logger
	pages    api.PageSource
	maxAlloc int
	maxPipe  atomic.Int64 // 0 means discover from the kernel
}

// Option customizes an Allocator.
type Option func(*Allocator)

// WithTracker injects instrumentation.
func WithTracker(t api.Tracker) Option {
	return func(a *Allocator) {
		if t != nil {
			a.tracker = t
		}
	}
}

// WithLogger sets the logger used for pipe lifecycle and failures.
func WithLogger(l log.Logger) Option {
	return func(a *Allocator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithPages sets the source of page-aligned blocks.
func WithPages(p api.PageSource) Option {
	return func(a *Allocator) {
		if p != nil {
			a.pages = p
		}
	}
}

// WithMaxAlloc caps the size of one raw segment.
func WithMaxAlloc(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxAlloc = n
		}
	}
}

// WithMaxPipeSize overrides the kernel pipe size limit used by
// CreateZeroCopy.
func WithMaxPipeSize(n int) Option {
	return func(a *Allocator) { a.maxPipe.Store(int64(n)) }
}

// NewAllocator builds an allocator. Without options it tracks nothing, logs
// nothing and draws pages from pool.DefaultPages.
func NewAllocator(opts ...Option) *Allocator {
	a := &Allocator{
		tracker:  api.NopTracker{},
		logger:   log.NewNopLogger(),
		maxAlloc: DefaultMaxAlloc,
	}
	for _, o := range opts {
		o(a)
	}
	if a.pages == nil {
		a.pages = pool.DefaultPages()
	}
	return a
}

var defaultAllocator = NewAllocator()

// Default returns the allocator used by the package-level constructors and by
// lists that were not given one.
func Default() *Allocator { return defaultAllocator }

// Tracker returns the instrumentation sink.
func (a *Allocator) Tracker() api.Tracker { return a.tracker }

// SetMaxPipeSize re-tunes the pipe limit at runtime; 0 restores discovery.
func (a *Allocator) SetMaxPipeSize(n int) { a.maxPipe.Store(int64(n)) }

// MaxPipeSize returns the effective limit for pipe-backed segments.
func (a *Allocator) MaxPipeSize() int {
	if n := a.maxPipe.Load(); n > 0 {
		return int(n)
	}
	return sysio.MaxPipeSize()
}

func (a *Allocator) checkSize(n int) error {
	if n < 0 || n > a.maxAlloc {
		level.Warn(a.logger).Log("msg", "allocation refused", "len", n, "max", a.maxAlloc)
		return api.Errorf(api.ErrCodeOutOfMemory, "cannot allocate %d bytes", n).
			WithContext("max", a.maxAlloc)
	}
	return nil
}

// Create allocates a zeroed heap segment of n bytes.
func (a *Allocator) Create(n int) (*Raw, error) {
	if err := a.checkSize(n); err != nil {
		return nil, err
	}
	a.tracker.Alloc(n)
	return &Raw{data: make([]byte, n), n: n, strategy: Heap, alloc: a}, nil
}

// Copy allocates a heap segment holding a copy of b.
func (a *Allocator) Copy(b []byte) (*Raw, error) {
	r, err := a.Create(len(b))
	if err != nil {
		return nil, err
	}
	copy(r.data, b)
	return r, nil
}

// ClaimHeap adopts b as a heap segment. The caller must not touch b
// afterwards.
func (a *Allocator) ClaimHeap(b []byte) *Raw {
	a.tracker.Alloc(len(b))
	return &Raw{data: b[:len(b):len(b)], n: len(b), strategy: Heap, alloc: a}
}

// CreatePageAligned allocates n bytes starting on a page boundary. Contents
// are unspecified when the page source recycles blocks.
func (a *Allocator) CreatePageAligned(n int) (*Raw, error) {
	if err := a.checkSize(n); err != nil {
		return nil, err
	}
	block, err := a.pages.Get(n)
	if err != nil {
		return nil, err
	}
	a.tracker.Alloc(n)
	return &Raw{data: block, n: n, strategy: PageAligned, alloc: a}, nil
}

// CreateStatic wraps memory owned elsewhere. It is never freed or counted
// by this allocator; the owner must keep it alive and unmodified-in-length
// while any reference exists.
func (a *Allocator) CreateStatic(b []byte) *Raw {
	return &Raw{data: b[:len(b):len(b)], n: len(b), strategy: Static, alloc: a}
}

// Create allocates a heap segment with the default allocator.
func Create(n int) (*Raw, error) { return defaultAllocator.Create(n) }

// Copy allocates a heap copy of b with the default allocator.
func Copy(b []byte) (*Raw, error) { return defaultAllocator.Copy(b) }

// CreatePageAligned allocates a page-aligned segment with the default
// allocator.
func CreatePageAligned(n int) (*Raw, error) { return defaultAllocator.CreatePageAligned(n) }

// CreateStatic wraps caller-owned memory with the default allocator.
func CreateStatic(b []byte) *Raw { return defaultAllocator.CreateStatic(b) }

// CreateZeroCopy fills a pipe-backed segment from fd with the default
// allocator.
func CreateZeroCopy(n int, fd int, off *int64) (*Raw, error) {
	return defaultAllocator.CreateZeroCopy(n, fd, off)
}
