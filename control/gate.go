// control/gate.go
// Author: momentics <momentics@gmail.com>
//
// Runtime on/off switches in front of a Tracker, driven by Config.

package control

import (
	"sync/atomic"

	"github.com/momentics/hioload-buffer/api"
)

// Gate forwards events of enabled kinds to the wrapped tracker.
type Gate struct {
	next       api.Tracker
	alloc      atomic.Bool
	crc        atomic.Bool
	contiguous atomic.Bool
}

// NewGate wraps next with every kind disabled.
func NewGate(next api.Tracker) *Gate {
	if next == nil {
		next = api.NopTracker{}
	}
	return &Gate{next: next}
}

// Apply switches kinds on or off according to cfg.
func (g *Gate) Apply(cfg Config) {
	cfg = cfg.normalize()
	g.alloc.Store(cfg.TrackAlloc)
	g.crc.Store(cfg.TrackCRC)
	g.contiguous.Store(cfg.TrackContiguous)
}

func (g *Gate) Alloc(n int) {
	if g.alloc.Load() {
		g.next.Alloc(n)
	}
}

func (g *Gate) Free(n int) {
	if g.alloc.Load() {
		g.next.Free(n)
	}
}

func (g *Gate) CachedCRC() {
	if g.crc.Load() {
		g.next.CachedCRC()
	}
}

func (g *Gate) CachedCRCAdjusted() {
	if g.crc.Load() {
		g.next.CachedCRCAdjusted()
	}
}

func (g *Gate) ContiguousAccess() {
	if g.contiguous.Load() {
		g.next.ContiguousAccess()
	}
}

var _ api.Tracker = (*Gate)(nil)
