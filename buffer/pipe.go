// File: buffer/pipe.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pipe-backed raw segments: bytes spliced from a descriptor into a kernel
// pipe, spliced out again without entering user memory, and copied into
// memory on demand by tee-ing into a scratch pipe.

package buffer

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/go-kit/log/level"

	"github.com/momentics/hioload-buffer/api"
	"github.com/momentics/hioload-buffer/internal/sysio"
)

type pipeState struct {
	fds      [2]int
	mu       sync.Mutex // guards materialization
	consumed atomic.Bool
	dirty    atomic.Bool
	once     sync.Once
}

func (ps *pipeState) usable() bool {
	return !ps.consumed.Load() && !ps.dirty.Load()
}

func (ps *pipeState) close() {
	ps.once.Do(func() { sysio.ClosePipe(ps.fds) })
}

// CreateZeroCopy splices up to n bytes from fd into a new pipe-backed
// segment. off selects an explicit file offset and is advanced by the kernel;
// nil reads from the descriptor's current position. The segment length is
// the number of bytes actually moved.
func (a *Allocator) CreateZeroCopy(n int, fd int, off *int64) (*Raw, error) {
	if !sysio.SpliceSupported {
		return nil, api.NewError(api.ErrCodeUnsupported, "zero-copy segments need splice")
	}
	if err := a.checkSize(n); err != nil {
		return nil, err
	}
	if max := a.MaxPipeSize(); n > max {
		level.Debug(a.logger).Log("msg", "zero-copy length exceeds pipe limit", "len", n, "max", max)
		return nil, api.Errorf(api.ErrCodeMalformedInput, "length %d larger than max pipe size %d", n, max)
	}
	fds, err := sysio.Pipe()
	if err != nil {
		level.Error(a.logger).Log("msg", "pipe creation failed", "err", err)
		return nil, api.ErrnoError("create pipe", err)
	}
	if err := a.sizePipe(fds, n); err != nil {
		sysio.ClosePipe(fds)
		return nil, err
	}
	moved, err := sysio.Splice(fd, off, fds[1], nil, n, sysio.SpliceNonblock)
	if err != nil {
		sysio.ClosePipe(fds)
		level.Debug(a.logger).Log("msg", "splice into pipe failed", "fd", fd, "len", n, "err", err)
		return nil, api.ErrnoError("splice into pipe", err).WithContext("fd", fd)
	}
	ps := &pipeState{fds: fds}
	runtime.SetFinalizer(ps, (*pipeState).close)
	a.tracker.Alloc(int(moved))
	level.Debug(a.logger).Log("msg", "pipe segment created", "fd", fd, "requested", n, "moved", moved)
	return &Raw{n: int(moved), strategy: Pipe, alloc: a, pipe: ps}, nil
}

// sizePipe grows the pipe to hold n bytes. EPERM means the system limit
// dropped since it was read; other failures leave the default size.
func (a *Allocator) sizePipe(fds [2]int, n int) error {
	if n <= sysio.DefaultMaxPipeSize {
		return nil
	}
	err := sysio.SetPipeSize(fds[1], n)
	if err == nil {
		return nil
	}
	if sysio.IsEPERM(err) {
		if _, rerr := sysio.RefreshMaxPipeSize(); rerr != nil {
			level.Warn(a.logger).Log("msg", "cannot re-read pipe limit", "err", rerr)
		}
		return api.ErrnoError("resize pipe", err).WithContext("len", n)
	}
	level.Debug(a.logger).Log("msg", "pipe resize failed", "len", n, "err", err)
	return nil
}

// materialize copies the pipe contents into memory without consuming them.
func (r *Raw) materialize() ([]byte, error) {
	ps := r.pipe
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if r.data != nil {
		return r.data, nil
	}
	if ps.consumed.Load() {
		return nil, api.NewError(api.ErrCodeMalformedInput, "pipe contents already consumed")
	}
	data := make([]byte, r.n)
	if r.n == 0 {
		r.data = data
		return data, nil
	}
	a := r.allocator()
	tmp, err := sysio.Pipe()
	if err != nil {
		return nil, api.ErrnoError("create scratch pipe", err)
	}
	defer sysio.ClosePipe(tmp)
	if err := a.sizePipe(tmp, r.n); err != nil {
		return nil, err
	}
	moved, err := sysio.Tee(ps.fds[0], tmp[1], r.n, sysio.SpliceNonblock)
	if err != nil {
		level.Error(a.logger).Log("msg", "tee from pipe failed", "len", r.n, "err", err)
		return nil, api.ErrnoError("tee", err)
	}
	if int(moved) != r.n {
		return nil, api.Errorf(api.ErrCodeMalformedInput, "tee copied %d of %d bytes", moved, r.n)
	}
	got, err := sysio.ReadFull(tmp[0], data)
	if err != nil {
		return nil, api.ErrnoError("read scratch pipe", err)
	}
	if got != r.n {
		return nil, api.Errorf(api.ErrCodeMalformedInput, "read %d of %d bytes from pipe", got, r.n)
	}
	r.data = data
	return data, nil
}

// zeroCopyTo splices the whole pipe into fd. The pipe is empty afterwards
// and the segment can no longer move without a copy.
func (r *Raw) zeroCopyTo(fd int, off *int64) error {
	ps := r.pipe
	if ps == nil || !ps.usable() {
		return api.NewError(api.ErrCodeUnsupported, "segment cannot be spliced")
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if err := sysio.SpliceExact(ps.fds[0], nil, fd, off, r.n, sysio.SpliceNonblock); err != nil {
		return api.ErrnoError("splice from pipe", err).WithContext("fd", fd)
	}
	ps.consumed.Store(true)
	return nil
}
