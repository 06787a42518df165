// File: buffer/list_access.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Offset-based access, in-place mutation, coalescing and comparison.

package buffer

import (
	"bytes"

	"github.com/momentics/hioload-buffer/pool"
)

// cursorAt positions the list's cached cursor at off. Ascending offsets
// advance from the previous position instead of walking from the front.
func (l *List) cursorAt(off int) (*Cursor, error) {
	c := &l.last
	if c.l != l {
		*c = Cursor{l: l, gen: l.gen}
	}
	if off < 0 || off > l.length {
		return nil, endOfBuffer("offset %d outside list of %d bytes", off, l.length)
	}
	c.sync()
	if off >= c.off {
		if err := c.Advance(off - c.off); err != nil {
			return nil, err
		}
	} else {
		c.reseek(off)
	}
	return c, nil
}

// At returns the byte at offset i.
func (l *List) At(i int) (byte, error) {
	if i < 0 || i >= l.length {
		return 0, endOfBuffer("index %d outside list of %d bytes", i, l.length)
	}
	c, err := l.cursorAt(i)
	if err != nil {
		return 0, err
	}
	return c.Byte()
}

// CopyOut fills dst starting at offset off. Nothing is written when the
// range is out of bounds.
func (l *List) CopyOut(off int, dst []byte) error {
	if off < 0 || off+len(dst) > l.length {
		return endOfBuffer("copy of %d bytes at %d from list of %d bytes", len(dst), off, l.length)
	}
	c, err := l.cursorAt(off)
	if err != nil {
		return err
	}
	return c.Copy(dst)
}

// CopyOutList appends [off, off+n) to dst as shared references.
func (l *List) CopyOutList(off, n int, dst *List) error {
	if off < 0 || n < 0 || off+n > l.length {
		return endOfBuffer("copy of %d bytes at %d from list of %d bytes", n, off, l.length)
	}
	c, err := l.cursorAt(off)
	if err != nil {
		return err
	}
	return c.CopyList(n, dst)
}

// CopyOutString returns [off, off+n) as a string.
func (l *List) CopyOutString(off, n int) (string, error) {
	if n < 0 {
		return "", endOfBuffer("negative length %d", n)
	}
	b := make([]byte, n)
	if err := l.CopyOut(off, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// CopyIn overwrites the list at off with src. Every segment sharing the
// overwritten bytes sees the change.
func (l *List) CopyIn(off int, src []byte) error {
	if off < 0 || off+len(src) > l.length {
		return endOfBuffer("write of %d bytes at %d into list of %d bytes", len(src), off, l.length)
	}
	c, err := l.cursorAt(off)
	if err != nil {
		return err
	}
	return c.CopyIn(src)
}

// CopyInList overwrites n bytes at off with the start of src.
func (l *List) CopyInList(off, n int, src *List) error {
	if off < 0 || n < 0 || off+n > l.length || n > src.length {
		return endOfBuffer("write of %d bytes at %d into list of %d bytes", n, off, l.length)
	}
	c, err := l.cursorAt(off)
	if err != nil {
		return err
	}
	return c.CopyInList(n, src)
}

// Zero clears every byte of the list.
func (l *List) Zero() error {
	for _, p := range l.segs() {
		if err := p.Zero(); err != nil {
			return err
		}
	}
	return nil
}

// ZeroRange clears [off, off+n).
func (l *List) ZeroRange(off, n int) error {
	if off < 0 || n < 0 || off+n > l.length {
		return endOfBuffer("zero of %d bytes at %d in list of %d bytes", n, off, l.length)
	}
	c, err := l.cursorAt(off)
	if err != nil {
		return err
	}
	return c.walk(n, func(seg Ptr, o, cnt int) error {
		return seg.ZeroRange(o, cnt)
	})
}

// IsZero reports whether every byte is zero.
func (l *List) IsZero() (bool, error) {
	for _, p := range l.segs() {
		z, err := p.IsZero()
		if err != nil || !z {
			return false, err
		}
	}
	return true, nil
}

// IsContiguous reports whether the list has at most one member.
func (l *List) IsContiguous() bool { return l.NumBuffers() <= 1 }

// IsPageAligned reports whether every member starts on a page boundary.
func (l *List) IsPageAligned() bool {
	for _, p := range l.segs() {
		if !p.IsPageAligned() {
			return false
		}
	}
	return true
}

// IsNPageSized reports whether the length is a whole number of pages.
func (l *List) IsNPageSized() bool { return l.length&^pool.PageMask == 0 }

// IsAlignedSize reports whether every member is a whole number of pages and
// starts on a page boundary.
func (l *List) IsAlignedSize() bool {
	for _, p := range l.segs() {
		if !p.IsPageAligned() || !p.IsNPageSized() {
			return false
		}
	}
	return true
}

// CanZeroCopy reports whether every member is an unread pipe segment.
func (l *List) CanZeroCopy() bool {
	for _, p := range l.segs() {
		if !p.CanZeroCopy() {
			return false
		}
	}
	return true
}

// Rebuild copies the list into one contiguous segment. It is the one
// operation that moves every byte; a list with at most one member is left
// alone.
func (l *List) Rebuild() error {
	if l.NumBuffers() <= 1 {
		return nil
	}
	a := l.allocator()
	var (
		raw *Raw
		err error
	)
	if l.length&^pool.PageMask == 0 {
		raw, err = a.CreatePageAligned(l.length)
	} else {
		raw, err = a.Create(l.length)
	}
	if err != nil {
		return err
	}
	p := NewPtr(raw)
	if err := l.gather(raw.data, l.segs()); err != nil {
		p.Release()
		return err
	}
	l.Clear()
	l.pushOwned(p)
	return nil
}

// RebuildPageAligned coalesces runs of members that are not page-aligned or
// not page-sized into page-aligned segments, keeping members that already
// are.
func (l *List) RebuildPageAligned() error {
	segs := l.segs()
	out := make([]Ptr, 0, len(segs))
	var fresh []Ptr
	var merged [][2]int
	a := l.allocator()
	for i := 0; i < len(segs); {
		if segs[i].IsPageAligned() && segs[i].IsNPageSized() {
			out = append(out, segs[i])
			i++
			continue
		}
		start, total := i, 0
		for {
			total += segs[i].n
			i++
			if i >= len(segs) ||
				(segs[i].IsPageAligned() && segs[i].IsNPageSized() && total&^pool.PageMask == 0) {
				break
			}
		}
		raw, err := a.CreatePageAligned(total)
		if err != nil {
			releaseAll(fresh)
			return err
		}
		p := NewPtr(raw)
		if err := l.gather(raw.data, segs[start:i]); err != nil {
			p.Release()
			releaseAll(fresh)
			return err
		}
		fresh = append(fresh, p)
		out = append(out, p)
		merged = append(merged, [2]int{start, i})
	}
	if len(merged) == 0 {
		return nil
	}
	for _, r := range merged {
		releaseAll(segs[r[0]:r[1]])
	}
	l.bufs = out
	l.head = 0
	l.invalidate()
	return nil
}

func releaseAll(ps []Ptr) {
	for i := range ps {
		ps[i].Release()
	}
}

func (l *List) gather(dst []byte, segs []Ptr) error {
	for _, p := range segs {
		d, err := p.Data()
		if err != nil {
			return err
		}
		dst = dst[copy(dst, d):]
	}
	return nil
}

// Flatten returns the whole list as one contiguous slice, rebuilding first
// when there is more than one member. This copies every byte of a
// multi-segment list and belongs off hot paths. The slice aliases the
// list's segment; once the list is released, a page source that recycles
// pages may hand that memory to another segment.
func (l *List) Flatten() ([]byte, error) {
	l.allocator().tracker.ContiguousAccess()
	if l.length == 0 {
		return []byte{}, nil
	}
	if err := l.Rebuild(); err != nil {
		return nil, err
	}
	return l.bufs[l.head].Data()
}

// Bytes returns a copy of the contents without restructuring the list.
func (l *List) Bytes() ([]byte, error) {
	b := make([]byte, l.length)
	if err := l.gather(b, l.segs()); err != nil {
		return nil, err
	}
	return b, nil
}

// Equal reports whether both lists hold the same bytes. A list with a
// member that cannot be read, such as a pipe segment drained by a zero-copy
// write, is equal to nothing; use Compare to see the error.
func (l *List) Equal(o *List) bool {
	if l.length != o.length {
		return false
	}
	c, err := l.Compare(o)
	return err == nil && c == 0
}

// Compare orders two lists lexicographically across member boundaries. It
// fails with the read error of the first member that cannot be read.
func (l *List) Compare(o *List) (int, error) {
	a, b := l.segs(), o.segs()
	var ab, bb []byte
	var err error
	for {
		for len(ab) == 0 && len(a) > 0 {
			if ab, err = a[0].Data(); err != nil {
				return 0, err
			}
			a = a[1:]
		}
		for len(bb) == 0 && len(b) > 0 {
			if bb, err = b[0].Data(); err != nil {
				return 0, err
			}
			b = b[1:]
		}
		if len(ab) == 0 || len(bb) == 0 {
			switch {
			case len(ab) == len(bb):
				return 0, nil
			case len(ab) == 0:
				return -1, nil
			default:
				return 1, nil
			}
		}
		n := min(len(ab), len(bb))
		if c := bytes.Compare(ab[:n], bb[:n]); c != 0 {
			return c, nil
		}
		ab, bb = ab[n:], bb[n:]
	}
}

// ContentsEqual reports whether the list holds exactly b.
func (l *List) ContentsEqual(b []byte) (bool, error) {
	if len(b) != l.length {
		return false, nil
	}
	for _, p := range l.segs() {
		d, err := p.Data()
		if err != nil {
			return false, err
		}
		if !bytes.Equal(d, b[:len(d)]) {
			return false, nil
		}
		b = b[len(d):]
	}
	return true, nil
}

// Clone returns an independent copy of the list in one heap segment.
func (l *List) Clone() (*List, error) {
	o := &List{alloc: l.alloc}
	if l.length == 0 {
		return o, nil
	}
	raw, err := l.allocator().Create(l.length)
	if err != nil {
		return nil, err
	}
	p := NewPtr(raw)
	if err := l.gather(raw.data, l.segs()); err != nil {
		p.Release()
		return nil, err
	}
	o.pushOwned(p)
	return o, nil
}
