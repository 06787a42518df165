// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// In-process buffer counters with an explicit snapshot/reset lifecycle.

package control

import (
	"fmt"
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"github.com/momentics/hioload-buffer/api"
)

// Counters is an api.Tracker backed by atomic counters.
type Counters struct {
	allocBytes  atomic.Int64
	freeBytes   atomic.Int64
	allocs      atomic.Int64
	frees       atomic.Int64
	cachedCRC   atomic.Int64
	adjustedCRC atomic.Int64
	contiguous  atomic.Int64
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters { return &Counters{} }

func (c *Counters) Alloc(n int) {
	c.allocBytes.Add(int64(n))
	c.allocs.Add(1)
}

func (c *Counters) Free(n int) {
	c.freeBytes.Add(int64(n))
	c.frees.Add(1)
}

func (c *Counters) CachedCRC()         { c.cachedCRC.Add(1) }
func (c *Counters) CachedCRCAdjusted() { c.adjustedCRC.Add(1) }
func (c *Counters) ContiguousAccess()  { c.contiguous.Add(1) }

// Snapshot is a point-in-time copy of Counters.
type Snapshot struct {
	AllocatedBytes     int64
	FreedBytes         int64
	LiveBytes          int64
	Allocations        int64
	Frees              int64
	CachedCRC          int64
	CachedCRCAdjusted  int64
	ContiguousAccesses int64
}

// Snapshot reads every counter.
func (c *Counters) Snapshot() Snapshot {
	s := Snapshot{
		AllocatedBytes:     c.allocBytes.Load(),
		FreedBytes:         c.freeBytes.Load(),
		Allocations:        c.allocs.Load(),
		Frees:              c.frees.Load(),
		CachedCRC:          c.cachedCRC.Load(),
		CachedCRCAdjusted:  c.adjustedCRC.Load(),
		ContiguousAccesses: c.contiguous.Load(),
	}
	s.LiveBytes = s.AllocatedBytes - s.FreedBytes
	return s
}

// Reset zeroes every counter.
func (c *Counters) Reset() {
	for _, v := range []*atomic.Int64{
		&c.allocBytes, &c.freeBytes, &c.allocs, &c.frees,
		&c.cachedCRC, &c.adjustedCRC, &c.contiguous,
	} {
		v.Store(0)
	}
}

func (s Snapshot) String() string {
	live := "-" + humanize.IBytes(uint64(-s.LiveBytes))
	if s.LiveBytes >= 0 {
		live = humanize.IBytes(uint64(s.LiveBytes))
	}
	return fmt.Sprintf("live %s (%s allocations, %s frees, %s allocated), crc cache %s exact / %s adjusted, %s contiguous accesses",
		live,
		humanize.Comma(s.Allocations),
		humanize.Comma(s.Frees),
		humanize.IBytes(uint64(s.AllocatedBytes)),
		humanize.Comma(s.CachedCRC),
		humanize.Comma(s.CachedCRCAdjusted),
		humanize.Comma(s.ContiguousAccesses),
	)
}

// Fanout forwards every event to all trackers.
type Fanout []api.Tracker

func (f Fanout) Alloc(n int) {
	for _, t := range f {
		t.Alloc(n)
	}
}

func (f Fanout) Free(n int) {
	for _, t := range f {
		t.Free(n)
	}
}

func (f Fanout) CachedCRC() {
	for _, t := range f {
		t.CachedCRC()
	}
}

func (f Fanout) CachedCRCAdjusted() {
	for _, t := range f {
		t.CachedCRCAdjusted()
	}
}

func (f Fanout) ContiguousAccess() {
	for _, t := range f {
		t.ContiguousAccess()
	}
}

var (
	_ api.Tracker = (*Counters)(nil)
	_ api.Tracker = Fanout(nil)
)
