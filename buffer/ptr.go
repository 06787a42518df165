// File: buffer/ptr.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Ptr is a window [off, off+len) into a shared raw segment.

package buffer

import (
	"bytes"
	"fmt"

	"github.com/momentics/hioload-buffer/api"
	"github.com/momentics/hioload-buffer/pool"
)

// Ptr references a window of a Raw. A Ptr obtained from a constructor, Share
// or Sub owns one reference and must be released exactly once. Copying a Ptr
// value does not take a reference; use Share for that.
type Ptr struct {
	raw *Raw
	off int
	n   int
}

// NewPtr references the whole of r.
func NewPtr(r *Raw) Ptr {
	r.get()
	return Ptr{raw: r, n: r.Len()}
}

// NewPtrRange references [off, off+n) of r.
func NewPtrRange(r *Raw, off, n int) (Ptr, error) {
	if off < 0 || n < 0 || off+n > r.Len() {
		return Ptr{}, endOfBuffer("range %d+%d outside raw of %d bytes", off, n, r.Len())
	}
	r.get()
	return Ptr{raw: r, off: off, n: n}, nil
}

// NewPtrSize allocates a zeroed heap segment of n bytes.
func NewPtrSize(n int) (Ptr, error) {
	r, err := Create(n)
	if err != nil {
		return Ptr{}, err
	}
	return NewPtr(r), nil
}

// NewPtrCopy allocates a heap segment holding a copy of b.
func NewPtrCopy(b []byte) (Ptr, error) {
	r, err := Copy(b)
	if err != nil {
		return Ptr{}, err
	}
	return NewPtr(r), nil
}

func endOfBuffer(format string, args ...any) error {
	return api.Errorf(api.ErrCodeEndOfBuffer, format, args...)
}

// Share returns another reference to the same window.
func (p Ptr) Share() Ptr {
	if p.raw != nil {
		p.raw.get()
	}
	return p
}

// Sub returns a new reference to [off, off+n) of this window.
func (p Ptr) Sub(off, n int) (Ptr, error) {
	if off < 0 || n < 0 || off+n > p.n {
		return Ptr{}, endOfBuffer("sub-range %d+%d outside window of %d bytes", off, n, p.n)
	}
	p.raw.get()
	return Ptr{raw: p.raw, off: p.off + off, n: n}, nil
}

// Release gives up the reference and empties p.
func (p *Ptr) Release() {
	if p.raw != nil {
		p.raw.put()
	}
	*p = Ptr{}
}

// Assign makes p reference o's window, releasing what p held.
func (p *Ptr) Assign(o Ptr) {
	o = o.Share()
	p.Release()
	*p = o
}

// Swap exchanges two references.
func (p *Ptr) Swap(o *Ptr) { *p, *o = *o, *p }

// HasRaw reports whether the reference points at a segment. The zero Ptr
// does not; the raw-level accessors below report zero values for it.
func (p Ptr) HasRaw() bool { return p.raw != nil }

// Raw returns the underlying segment, or nil for the zero Ptr.
func (p Ptr) Raw() *Raw { return p.raw }

// Len is the window length.
func (p Ptr) Len() int { return p.n }

// Offset is the window start inside the raw.
func (p Ptr) Offset() int { return p.off }

// Start is Offset.
func (p Ptr) Start() int { return p.off }

// End is the raw offset one past the window's last byte.
func (p Ptr) End() int { return p.off + p.n }

// IsEmpty reports a zero-length window.
func (p Ptr) IsEmpty() bool { return p.n == 0 }

// RawRefs is the reference count of the segment.
func (p Ptr) RawRefs() int {
	if p.raw == nil {
		return 0
	}
	return p.raw.Refs()
}

// RawLen is the full segment length.
func (p Ptr) RawLen() int {
	if p.raw == nil {
		return 0
	}
	return p.raw.Len()
}

// Wasted is the segment capacity outside the window, on both sides.
func (p Ptr) Wasted() int { return p.RawLen() - p.n }

// AtHead reports whether the window starts at the segment start.
func (p Ptr) AtHead() bool { return p.off == 0 }

// AtTail reports whether the window ends at the segment end.
func (p Ptr) AtTail() bool { return p.raw != nil && p.End() == p.raw.Len() }

// Strategy is the allocation strategy of the segment; Heap for the zero Ptr.
func (p Ptr) Strategy() Strategy {
	if p.raw == nil {
		return Heap
	}
	return p.raw.strategy
}

// UnusedTailLength is the raw capacity after the window.
func (p Ptr) UnusedTailLength() int {
	if p.raw == nil {
		return 0
	}
	return p.raw.Len() - p.End()
}

// IsPageAligned reports whether the window starts on a page boundary.
func (p Ptr) IsPageAligned() bool {
	if p.raw == nil || p.raw.pipe != nil {
		return false
	}
	return pool.IsAligned(p.raw.data[p.off:], pool.PageSize)
}

// IsNPageSized reports whether the window is a whole number of pages.
func (p Ptr) IsNPageSized() bool { return p.n&^pool.PageMask == 0 }

// CanZeroCopy reports whether the window covers an unread pipe in full.
func (p Ptr) CanZeroCopy() bool {
	return p.raw != nil && p.raw.CanZeroCopy() && p.off == 0 && p.n == p.raw.Len()
}

// Data returns the window bytes. The slice aliases the raw segment and is
// only stable while a reference is held: with page recycling on, a released
// page-aligned block is reused by later allocations.
func (p Ptr) Data() ([]byte, error) {
	if p.raw == nil {
		return nil, nil
	}
	d, err := p.raw.Data()
	if err != nil {
		return nil, err
	}
	return d[p.off : p.off+p.n : p.off+p.n], nil
}

// Bytes is Data for windows known to be in memory, with the same aliasing
// rules. It panics when a pipe segment cannot be read.
func (p Ptr) Bytes() []byte {
	d, err := p.Data()
	if err != nil {
		panic(err)
	}
	return d
}

// At returns the byte at offset i of the window.
func (p Ptr) At(i int) (byte, error) {
	if i < 0 || i >= p.n {
		return 0, endOfBuffer("index %d outside window of %d bytes", i, p.n)
	}
	d, err := p.Data()
	if err != nil {
		return 0, err
	}
	return d[i], nil
}

// CopyOut fills dst from offset off of the window.
func (p Ptr) CopyOut(off int, dst []byte) error {
	if off < 0 || off+len(dst) > p.n {
		return endOfBuffer("copy of %d bytes at %d outside window of %d bytes", len(dst), off, p.n)
	}
	d, err := p.Data()
	if err != nil {
		return err
	}
	copy(dst, d[off:])
	return nil
}

// writable returns the raw block for in-place mutation.
func (p Ptr) writable() ([]byte, error) {
	if p.raw == nil {
		return nil, endOfBuffer("empty reference")
	}
	return p.raw.Data()
}

// Append writes b into the unused tail capacity and grows the window.
func (p *Ptr) Append(b []byte) error {
	if len(b) > p.UnusedTailLength() {
		return endOfBuffer("append of %d bytes exceeds %d bytes of tail room", len(b), p.UnusedTailLength())
	}
	if len(b) == 0 {
		return nil
	}
	d, err := p.writable()
	if err != nil {
		return err
	}
	end := p.End()
	p.raw.touch(end, end+len(b))
	copy(d[end:], b)
	p.n += len(b)
	return nil
}

// AppendByte writes one byte into the tail capacity.
func (p *Ptr) AppendByte(c byte) error { return p.Append([]byte{c}) }

// extend grows the window over n bytes already written past its end.
func (p *Ptr) extend(n int) {
	end := p.End()
	p.raw.touch(end, end+n)
	p.n += n
}

// CopyIn overwrites the window at off with src.
func (p Ptr) CopyIn(off int, src []byte) error {
	if off < 0 || off+len(src) > p.n {
		return endOfBuffer("write of %d bytes at %d outside window of %d bytes", len(src), off, p.n)
	}
	if len(src) == 0 {
		return nil
	}
	d, err := p.writable()
	if err != nil {
		return err
	}
	at := p.off + off
	p.raw.touch(at, at+len(src))
	copy(d[at:], src)
	return nil
}

// Zero clears the window.
func (p Ptr) Zero() error { return p.ZeroRange(0, p.n) }

// ZeroRange clears [off, off+n) of the window.
func (p Ptr) ZeroRange(off, n int) error {
	if off < 0 || n < 0 || off+n > p.n {
		return endOfBuffer("zero of %d bytes at %d outside window of %d bytes", n, off, p.n)
	}
	if n == 0 {
		return nil
	}
	d, err := p.writable()
	if err != nil {
		return err
	}
	at := p.off + off
	p.raw.touch(at, at+n)
	clear(d[at : at+n])
	return nil
}

// IsZero reports whether every byte of the window is zero.
func (p Ptr) IsZero() (bool, error) {
	d, err := p.Data()
	if err != nil {
		return false, err
	}
	for _, c := range d {
		if c != 0 {
			return false, nil
		}
	}
	return true, nil
}

// Clone copies the window into a fresh heap segment.
func (p Ptr) Clone() (Ptr, error) {
	d, err := p.Data()
	if err != nil {
		return Ptr{}, err
	}
	alloc := defaultAllocator
	if p.raw != nil {
		alloc = p.raw.allocator()
	}
	r, err := alloc.Copy(d)
	if err != nil {
		return Ptr{}, err
	}
	return NewPtr(r), nil
}

// Compare orders two windows bytewise.
func (p Ptr) Compare(o Ptr) (int, error) {
	a, err := p.Data()
	if err != nil {
		return 0, err
	}
	b, err := o.Data()
	if err != nil {
		return 0, err
	}
	return bytes.Compare(a, b), nil
}

// ZeroCopyToFD splices the window to fd. Only windows for which CanZeroCopy
// holds qualify, and only once.
func (p Ptr) ZeroCopyToFD(fd int, off *int64) error {
	if !p.CanZeroCopy() {
		return api.NewError(api.ErrCodeUnsupported, "window cannot be spliced")
	}
	return p.raw.zeroCopyTo(fd, off)
}

func (p Ptr) String() string {
	if p.raw == nil {
		return "ptr(empty)"
	}
	return fmt.Sprintf("ptr(%d~%d %s)", p.off, p.n, p.raw)
}
