//go:build linux

// File: internal/sysio/sysio_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux primitives: readv/writev, pipe2, F_SETPIPE_SZ, splice and tee.

package sysio

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// SpliceSupported reports whether kernel splice/tee paths are available.
const SpliceSupported = true

const (
	SpliceNonblock = unix.SPLICE_F_NONBLOCK
	SpliceMove     = unix.SPLICE_F_MOVE
)

const pipeMaxSizePath = "/proc/sys/fs/pipe-max-size"

var maxPipeSize atomic.Int64

func read(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Read(fd, p)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func writev(fd int, iov [][]byte) (int, error) {
	for {
		n, err := unix.Writev(fd, iov)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

// Readv scatters one read across iov.
func Readv(fd int, iov [][]byte) (int, error) {
	for {
		n, err := unix.Readv(fd, iov)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

// Write performs a single write.
func Write(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Write(fd, p)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

// Seek repositions fd. ESPIPE is returned for pipes and sockets.
func Seek(fd int, offset int64, whence int) (int64, error) {
	return unix.Seek(fd, offset, whence)
}

// IsESPIPE reports whether err says the descriptor is not seekable.
func IsESPIPE(err error) bool { return err == unix.ESPIPE }

// IsEPERM reports whether err is a permission failure.
func IsEPERM(err error) bool { return err == unix.EPERM }

// Pipe creates a non-blocking, close-on-exec pipe. fds[0] is the read end.
func Pipe() ([2]int, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return [2]int{-1, -1}, err
	}
	return fds, nil
}

// SetPipeSize asks the kernel to resize the pipe behind fd.
func SetPipeSize(fd int, n int) error {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_SETPIPE_SZ, n)
	return err
}

// ClosePipe closes both ends, ignoring already-closed (-1) slots.
func ClosePipe(fds [2]int) {
	for _, fd := range fds {
		if fd >= 0 {
			_ = unix.Close(fd)
		}
	}
}

// Splice moves up to n bytes between descriptors inside the kernel.
func Splice(rfd int, roff *int64, wfd int, woff *int64, n int, flags int) (int64, error) {
	for {
		moved, err := unix.Splice(rfd, roff, wfd, woff, n, flags)
		if err == unix.EINTR {
			continue
		}
		return moved, err
	}
}

// SpliceExact loops until exactly n bytes were moved.
func SpliceExact(rfd int, roff *int64, wfd int, woff *int64, n int, flags int) error {
	for n > 0 {
		moved, err := Splice(rfd, roff, wfd, woff, n, flags)
		if err != nil {
			return err
		}
		if moved == 0 {
			return io.ErrUnexpectedEOF
		}
		n -= int(moved)
	}
	return nil
}

// Tee duplicates up to n bytes from one pipe into another without consuming
// the source.
func Tee(rfd, wfd int, n int, flags int) (int64, error) {
	for {
		moved, err := unix.Tee(rfd, wfd, n, flags)
		if err == unix.EINTR {
			continue
		}
		return moved, err
	}
}

// MaxPipeSize returns the cached pipe capacity limit, reading it from procfs
// on first use.
func MaxPipeSize() int {
	if n := maxPipeSize.Load(); n > 0 {
		return int(n)
	}
	if n, err := RefreshMaxPipeSize(); err == nil {
		return n
	}
	return DefaultMaxPipeSize
}

// RefreshMaxPipeSize re-reads the limit from procfs.
func RefreshMaxPipeSize() (int, error) {
	raw, err := os.ReadFile(pipeMaxSizePath)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, err
	}
	maxPipeSize.Store(int64(n))
	return n, nil
}
