// File: buffer/io.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Descriptor, file and stream I/O for lists.

package buffer

import (
	"io"
	"os"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/momentics/hioload-buffer/api"
	"github.com/momentics/hioload-buffer/internal/sysio"
	"github.com/momentics/hioload-buffer/pool"
)

// ReadFD reads up to n bytes from fd into a new page-aligned member and
// returns the count. A short count means EOF. On error nothing is appended.
func (l *List) ReadFD(fd, n int) (int, error) {
	if n < 0 {
		return 0, endOfBuffer("read %d bytes from fd %d", n, fd)
	}
	if n == 0 {
		return 0, nil
	}
	raw, err := l.allocator().CreatePageAligned(pool.RoundUpToPage(n))
	if err != nil {
		return 0, err
	}
	p := NewPtr(raw)
	got, err := sysio.ReadFull(fd, raw.data[:n])
	if err != nil {
		p.Release()
		return 0, errors.Wrapf(api.ErrnoError("read", err), "fd %d", fd)
	}
	p.n = got
	l.pushOwned(p)
	return got, nil
}

// ReadFDZeroCopy splices n bytes from fd's current position into a new
// pipe-backed member.
func (l *List) ReadFDZeroCopy(fd, n int) error {
	raw, err := l.allocator().CreateZeroCopy(n, fd, nil)
	if err != nil {
		return err
	}
	l.pushOwned(NewPtr(raw))
	return nil
}

// ReadFile appends the contents of the file at path. Files that report no
// size (procfs, pipes) are read as a stream.
func (l *List) ReadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(api.ErrnoError("open", err), "read file %s", path)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return 0, errors.Wrapf(api.ErrnoError("stat", err), "read file %s", path)
	}
	size := int(st.Size())
	if size == 0 || !st.Mode().IsRegular() {
		n, err := l.ReadFrom(f)
		if err != nil {
			return int(n), errors.Wrapf(err, "read file %s", path)
		}
		return int(n), nil
	}
	got, err := l.ReadFD(int(f.Fd()), size)
	if err != nil {
		return 0, errors.Wrapf(err, "read file %s", path)
	}
	if got < size {
		level.Warn(l.allocator().logger).Log("msg", "premature EOF", "path", path, "size", size, "read", got)
	}
	return got, nil
}

// WriteFD writes the whole list to fd. Lists made only of unread pipe
// segments are spliced; everything else goes through vectored writes.
func (l *List) WriteFD(fd int) error {
	if l.length > 0 && sysio.SpliceSupported && l.CanZeroCopy() {
		return l.WriteFDZeroCopy(fd)
	}
	iov := make([][]byte, 0, l.NumBuffers())
	for _, p := range l.segs() {
		d, err := p.Data()
		if err != nil {
			return err
		}
		iov = append(iov, d)
	}
	if err := sysio.WriteAll(fd, iov); err != nil {
		return errors.Wrapf(api.ErrnoError("writev", err), "fd %d", fd)
	}
	return nil
}

// WriteFDZeroCopy splices every member to fd. Seekable descriptors are
// written at their current offset, which is moved past the written bytes;
// pipes and sockets are written in stream order. The pipe segments are
// drained and can no longer be spliced afterwards.
func (l *List) WriteFDZeroCopy(fd int) error {
	if !sysio.SpliceSupported {
		return api.NewError(api.ErrCodeUnsupported, "zero-copy writes need splice")
	}
	if !l.CanZeroCopy() {
		return api.NewError(api.ErrCodeUnsupported, "list holds segments that cannot be spliced")
	}
	var offp *int64
	off, err := sysio.Seek(fd, 0, io.SeekCurrent)
	switch {
	case err == nil:
		offp = &off
	case sysio.IsESPIPE(err):
	default:
		return errors.Wrapf(api.ErrnoError("lseek", err), "fd %d", fd)
	}
	for _, p := range l.segs() {
		if err := p.ZeroCopyToFD(fd, offp); err != nil {
			level.Debug(l.allocator().logger).Log("msg", "zero-copy write failed", "fd", fd, "err", err)
			return err
		}
	}
	if offp != nil {
		if _, err := sysio.Seek(fd, off, io.SeekStart); err != nil {
			return errors.Wrapf(api.ErrnoError("lseek", err), "fd %d", fd)
		}
	}
	return nil
}

// WriteFile creates or truncates path and writes the list to it.
func (l *List) WriteFile(path string, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return errors.Wrapf(api.ErrnoError("open", err), "write file %s", path)
	}
	if err := l.WriteFD(int(f.Fd())); err != nil {
		f.Close()
		return errors.Wrapf(err, "write file %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(api.ErrnoError("close", err), "write file %s", path)
	}
	return nil
}

// WriteTo implements io.WriterTo.
func (l *List) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, p := range l.segs() {
		d, err := p.Data()
		if err != nil {
			return total, err
		}
		n, err := w.Write(d)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteRange writes [off, off+n) to w.
func (l *List) WriteRange(off, n int, w io.Writer) error {
	var sub List
	if err := sub.SubstrOf(l, off, n); err != nil {
		return err
	}
	defer sub.Release()
	_, err := sub.WriteTo(w)
	return err
}

// ReadFrom implements io.ReaderFrom, filling the append tail page by page
// until r reports EOF.
func (l *List) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		if l.tail.UnusedTailLength() == 0 {
			if err := l.Prealloc(pool.PageSize); err != nil {
				return total, err
			}
		}
		n, err := r.Read(l.tail.raw.data[l.tail.End():])
		if n > 0 {
			start := l.tail.n
			l.tail.extend(n)
			l.appendRange(l.tail, start, n)
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

var (
	_ io.Writer       = (*List)(nil)
	_ io.WriterTo     = (*List)(nil)
	_ io.ReaderFrom   = (*List)(nil)
	_ io.StringWriter = (*List)(nil)
	_ io.ByteWriter   = (*List)(nil)
)
