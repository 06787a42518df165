// File: buffer/cursor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Positional reader/writer over a List.

package buffer

import (
	"io"
)

// Cursor is a position inside a List: a segment index plus an offset inside
// that segment. A cursor whose list was structurally replaced (front
// insertion, splice, claim, rebuild, clear, swap) re-seeks by absolute offset
// before its next use, landing at the end when the list became shorter.
type Cursor struct {
	l    *List
	off  int // absolute
	idx  int // segment index relative to the first live segment
	pOff int // offset inside segment idx
	gen  uint64
}

// Begin returns a cursor at offset 0.
func (l *List) Begin() *Cursor {
	return &Cursor{l: l, gen: l.gen}
}

// CursorAt returns a cursor positioned at off.
func (l *List) CursorAt(off int) (*Cursor, error) {
	c := l.Begin()
	if err := c.Seek(off); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cursor) sync() {
	segs := c.l.segs()
	if c.gen != c.l.gen || (c.idx >= len(segs) && c.off < c.l.length) {
		c.reseek(c.off)
	}
}

func (c *Cursor) reseek(off int) {
	segs := c.l.segs()
	if off > c.l.length {
		off = c.l.length
	}
	c.off = off
	c.gen = c.l.gen
	c.idx = 0
	for c.idx < len(segs) && off >= segs[c.idx].n {
		off -= segs[c.idx].n
		c.idx++
	}
	c.pOff = off
}

// Offset is the absolute position.
func (c *Cursor) Offset() int {
	c.sync()
	return c.off
}

// Remaining is the number of bytes after the position.
func (c *Cursor) Remaining() int {
	c.sync()
	return c.l.length - c.off
}

// End reports whether the cursor sits past the last byte.
func (c *Cursor) End() bool {
	c.sync()
	return c.idx >= len(c.l.segs())
}

// Seek moves to absolute offset off.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > c.l.length {
		return endOfBuffer("seek to %d in list of %d bytes", off, c.l.length)
	}
	c.reseek(off)
	return nil
}

// Advance moves by n bytes; negative n moves backwards.
func (c *Cursor) Advance(n int) error {
	c.sync()
	target := c.off + n
	if target < 0 || target > c.l.length {
		return endOfBuffer("advance by %d from %d in list of %d bytes", n, c.off, c.l.length)
	}
	segs := c.l.segs()
	if n >= 0 {
		c.pOff += n
		for c.idx < len(segs) && c.pOff >= segs[c.idx].n {
			c.pOff -= segs[c.idx].n
			c.idx++
		}
	} else {
		m := -n
		for m > 0 {
			if c.pOff >= m {
				c.pOff -= m
				break
			}
			m -= c.pOff
			c.idx--
			c.pOff = segs[c.idx].n
		}
	}
	c.off = target
	return nil
}

// Byte returns the byte at the position.
func (c *Cursor) Byte() (byte, error) {
	if c.End() {
		return 0, endOfBuffer("read past end at %d", c.off)
	}
	return c.l.segs()[c.idx].At(c.pOff)
}

// Next advances by one byte.
func (c *Cursor) Next() error { return c.Advance(1) }

// CurrentPtr references the rest of the current segment.
func (c *Cursor) CurrentPtr() (Ptr, error) {
	if c.End() {
		return Ptr{}, endOfBuffer("no segment at end")
	}
	seg := c.l.segs()[c.idx]
	return seg.Sub(c.pOff, seg.n-c.pOff)
}

// walk visits the next n bytes segment by segment and moves past them. The
// range is checked before anything is visited.
func (c *Cursor) walk(n int, fn func(seg Ptr, off, cnt int) error) error {
	c.sync()
	if n < 0 || n > c.l.length-c.off {
		return endOfBuffer("%d bytes requested at %d in list of %d bytes", n, c.off, c.l.length)
	}
	segs := c.l.segs()
	for n > 0 {
		seg := segs[c.idx]
		cnt := min(seg.n-c.pOff, n)
		if err := fn(seg, c.pOff, cnt); err != nil {
			return err
		}
		n -= cnt
		c.off += cnt
		c.pOff += cnt
		if c.pOff == seg.n {
			c.idx++
			c.pOff = 0
		}
	}
	return nil
}

// Copy fills dst from the position and advances. Nothing is written when
// fewer than len(dst) bytes remain.
func (c *Cursor) Copy(dst []byte) error {
	return c.walk(len(dst), func(seg Ptr, off, cnt int) error {
		if err := seg.CopyOut(off, dst[:cnt]); err != nil {
			return err
		}
		dst = dst[cnt:]
		return nil
	})
}

// CopyPtr copies n bytes into a fresh heap segment.
func (c *Cursor) CopyPtr(n int) (Ptr, error) {
	if n < 0 || n > c.Remaining() {
		return Ptr{}, endOfBuffer("%d bytes requested with %d remaining", n, c.Remaining())
	}
	r, err := c.l.allocator().Create(n)
	if err != nil {
		return Ptr{}, err
	}
	p := NewPtr(r)
	if err := c.Copy(r.data); err != nil {
		p.Release()
		return Ptr{}, err
	}
	return p, nil
}

// CopyList appends the next n bytes to dst by sharing segments.
func (c *Cursor) CopyList(n int, dst *List) error {
	if n < 0 || n > c.Remaining() {
		return endOfBuffer("%d bytes requested with %d remaining", n, c.Remaining())
	}
	return c.walk(n, func(seg Ptr, off, cnt int) error {
		dst.appendRange(seg, off, cnt)
		return nil
	})
}

// CopyString returns the next n bytes as a string.
func (c *Cursor) CopyString(n int) (string, error) {
	if n < 0 || n > c.Remaining() {
		return "", endOfBuffer("%d bytes requested with %d remaining", n, c.Remaining())
	}
	b := make([]byte, n)
	if err := c.Copy(b); err != nil {
		return "", err
	}
	return string(b), nil
}

// CopyAll copies everything after the position into dst's storage.
func (c *Cursor) CopyAll(dst *List) error {
	return c.walk(c.Remaining(), func(seg Ptr, off, cnt int) error {
		d, err := seg.Data()
		if err != nil {
			return err
		}
		return dst.Append(d[off : off+cnt])
	})
}

// CopyIn overwrites bytes from the position with src and advances.
func (c *Cursor) CopyIn(src []byte) error {
	return c.walk(len(src), func(seg Ptr, off, cnt int) error {
		if err := seg.CopyIn(off, src[:cnt]); err != nil {
			return err
		}
		src = src[cnt:]
		return nil
	})
}

// CopyInList overwrites n bytes from the position with the start of src.
func (c *Cursor) CopyInList(n int, src *List) error {
	if n < 0 || n > src.length {
		return endOfBuffer("%d bytes requested from list of %d bytes", n, src.length)
	}
	if n > c.Remaining() {
		return endOfBuffer("%d bytes requested with %d remaining", n, c.Remaining())
	}
	for _, s := range src.segs() {
		if n == 0 {
			break
		}
		d, err := s.Data()
		if err != nil {
			return err
		}
		d = d[:min(len(d), n)]
		if err := c.CopyIn(d); err != nil {
			return err
		}
		n -= len(d)
	}
	return nil
}

// Read implements io.Reader.
func (c *Cursor) Read(p []byte) (int, error) {
	rem := c.Remaining()
	if rem == 0 {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := min(len(p), rem)
	if err := c.Copy(p[:n]); err != nil {
		return 0, err
	}
	return n, nil
}

// ReadByte implements io.ByteReader.
func (c *Cursor) ReadByte() (byte, error) {
	if c.End() {
		return 0, io.EOF
	}
	b, err := c.Byte()
	if err != nil {
		return 0, err
	}
	return b, c.Advance(1)
}

var (
	_ io.Reader     = (*Cursor)(nil)
	_ io.ByteReader = (*Cursor)(nil)
)
