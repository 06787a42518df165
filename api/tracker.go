// File: api/tracker.go
// Author: momentics <momentics@gmail.com>
//
// Instrumentation contract for allocation and checksum-cache accounting.
// Implementations are injected into an allocator; nothing here is global.

package api

// Tracker receives instrumentation events from raw segments and sequences.
// Implementations must be safe for concurrent use.
type Tracker interface {
	// Alloc records n bytes allocated by a raw segment.
	Alloc(n int)

	// Free records n bytes released by a raw segment.
	Free(n int)

	// CachedCRC records a checksum served from cache with a matching seed.
	CachedCRC()

	// CachedCRCAdjusted records a checksum served from cache under another
	// seed and re-based algebraically.
	CachedCRCAdjusted()

	// ContiguousAccess records a request for a contiguous view of a sequence.
	ContiguousAccess()
}

// NopTracker discards every event.
type NopTracker struct{}

func (NopTracker) Alloc(int)          {}
func (NopTracker) Free(int)           {}
func (NopTracker) CachedCRC()         {}
func (NopTracker) CachedCRCAdjusted() {}
func (NopTracker) ContiguousAccess()  {}

var _ Tracker = NopTracker{}
