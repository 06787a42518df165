//go:build unix && !linux

// File: internal/sysio/sysio_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Non-linux unix: plain read/write loops, no splice.

package sysio

import (
	"golang.org/x/sys/unix"
)

const SpliceSupported = false

const (
	SpliceNonblock = 0
	SpliceMove     = 0
)

func read(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Read(fd, p)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

// writev degrades to one write of the first vector.
func writev(fd int, iov [][]byte) (int, error) {
	return Write(fd, iov[0])
}

func Readv(fd int, iov [][]byte) (int, error) {
	for i := range iov {
		if len(iov[i]) > 0 {
			return read(fd, iov[i])
		}
	}
	return 0, nil
}

func Write(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Write(fd, p)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func Seek(fd int, offset int64, whence int) (int64, error) {
	return unix.Seek(fd, offset, whence)
}

func IsESPIPE(err error) bool { return err == unix.ESPIPE }
func IsEPERM(err error) bool  { return err == unix.EPERM }

func Pipe() ([2]int, error)           { return [2]int{-1, -1}, errUnsupported }
func SetPipeSize(fd int, n int) error { return errUnsupported }
func ClosePipe(fds [2]int) {
	for _, fd := range fds {
		if fd >= 0 {
			_ = unix.Close(fd)
		}
	}
}

func Splice(rfd int, roff *int64, wfd int, woff *int64, n int, flags int) (int64, error) {
	return 0, errUnsupported
}

func SpliceExact(rfd int, roff *int64, wfd int, woff *int64, n int, flags int) error {
	return errUnsupported
}

func Tee(rfd, wfd int, n int, flags int) (int64, error) { return 0, errUnsupported }

func MaxPipeSize() int                 { return DefaultMaxPipeSize }
func RefreshMaxPipeSize() (int, error) { return DefaultMaxPipeSize, nil }
