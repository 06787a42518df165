// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Named probes reporting buffer-layer state for inspection tools.

package control

import (
	"sort"
	"sync"

	"github.com/momentics/hioload-buffer/api"
	"github.com/momentics/hioload-buffer/internal/sysio"
	"github.com/momentics/hioload-buffer/pool"
)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe inserts a named debug hook, replacing any with the same name.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// Names returns the registered probe names in sorted order.
func (dp *DebugProbes) Names() []string {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	names := make([]string, 0, len(dp.probes))
	for k := range dp.probes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DumpState returns output of all probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any, len(dp.probes))
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}

// RegisterBufferProbes adds probes for the page source and tracking counters.
// Either argument may be nil.
func RegisterBufferProbes(dp *DebugProbes, pages api.PageSource, c *Counters) {
	dp.RegisterProbe("buffer.page_size", func() any { return pool.PageSize })
	dp.RegisterProbe("buffer.max_pipe_size", func() any { return sysio.MaxPipeSize() })
	dp.RegisterProbe("buffer.splice", func() any { return sysio.SpliceSupported })
	if pages != nil {
		dp.RegisterProbe("pool.pages", func() any { return pages.Stats() })
	}
	if c != nil {
		dp.RegisterProbe("tracker.counters", func() any { return c.Snapshot() })
	}
	RegisterPlatformProbes(dp)
}
