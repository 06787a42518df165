// File: internal/sysio/sysio.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-neutral loops built on the per-OS primitives.

package sysio

import (
	"io"

	"github.com/momentics/hioload-buffer/api"
)

// IOVMax caps the number of vectors handed to one writev call.
const IOVMax = 1024

// DefaultMaxPipeSize is the pipe capacity hardcoded in linux before 2.6.35.
const DefaultMaxPipeSize = 65536

var errUnsupported = api.NewError(api.ErrCodeUnsupported, "not available on this platform")

// ReadFull reads until p is full or the descriptor reports EOF. A short count
// with a nil error means EOF was reached.
func ReadFull(fd int, p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := read(fd, p[total:])
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
		total += n
	}
	return total, nil
}

// WriteAll writes every buffer in order using vectored writes of at most
// IOVMax entries, resuming after partial writes.
func WriteAll(fd int, bufs [][]byte) error {
	for len(bufs) > 0 {
		batch := bufs
		if len(batch) > IOVMax {
			batch = batch[:IOVMax]
		}
		bufs = bufs[len(batch):]
		iov := skipEmpty(append([][]byte(nil), batch...))
		for len(iov) > 0 {
			n, err := writev(fd, iov)
			if err != nil {
				return err
			}
			if n == 0 {
				return io.ErrShortWrite
			}
			for n > 0 {
				if n >= len(iov[0]) {
					n -= len(iov[0])
					iov = iov[1:]
				} else {
					iov[0] = iov[0][n:]
					n = 0
				}
			}
			iov = skipEmpty(iov)
		}
	}
	return nil
}

func skipEmpty(iov [][]byte) [][]byte {
	for len(iov) > 0 && len(iov[0]) == 0 {
		iov = iov[1:]
	}
	return iov
}
