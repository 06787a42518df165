//go:build !unix

// File: internal/sysio/sysio_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Descriptor I/O is not available outside unix; callers use io.Reader /
// io.Writer adapters instead.

package sysio

const SpliceSupported = false

const (
	SpliceNonblock = 0
	SpliceMove     = 0
)

func read(fd int, p []byte) (int, error)                   { return 0, errUnsupported }
func writev(fd int, iov [][]byte) (int, error)             { return 0, errUnsupported }
func Readv(fd int, iov [][]byte) (int, error)              { return 0, errUnsupported }
func Write(fd int, p []byte) (int, error)                  { return 0, errUnsupported }
func Seek(fd int, offset int64, whence int) (int64, error) { return 0, errUnsupported }
func IsESPIPE(err error) bool                              { return false }
func IsEPERM(err error) bool                               { return false }
func Pipe() ([2]int, error)                                { return [2]int{-1, -1}, errUnsupported }
func SetPipeSize(fd int, n int) error                      { return errUnsupported }
func ClosePipe(fds [2]int)                                 {}

func Splice(rfd int, roff *int64, wfd int, woff *int64, n int, flags int) (int64, error) {
	return 0, errUnsupported
}

func SpliceExact(rfd int, roff *int64, wfd int, woff *int64, n int, flags int) error {
	return errUnsupported
}

func Tee(rfd, wfd int, n int, flags int) (int64, error) { return 0, errUnsupported }

func MaxPipeSize() int                 { return DefaultMaxPipeSize }
func RefreshMaxPipeSize() (int, error) { return DefaultMaxPipeSize, nil }
