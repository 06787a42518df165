// File: buffer/list.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// List is an ordered rope of segment references forming one logical byte
// stream. Building, slicing and splicing share raw segments; only Rebuild and
// the explicit copy helpers move bytes.

package buffer

import (
	"fmt"
	"strings"

	"github.com/momentics/hioload-buffer/api"
	"github.com/momentics/hioload-buffer/pool"
)

// List is a byte sequence made of Ptr members. The zero value is an empty
// list using the default allocator. A List is owned by one goroutine at a
// time; its segments may be shared read-only with other lists.
//
// Invariants: Len equals the sum of member lengths and no member is empty.
type List struct {
	bufs   []Ptr
	head   int // members before head are vacated slots left by PushFront
	length int

	tail  Ptr    // spare capacity for small appends
	gen   uint64 // bumped whenever member indexes stop being valid
	last  Cursor // last position used by offset-based accessors
	alloc *Allocator
}

// ListOption customizes a List.
type ListOption func(*List)

// WithAllocator sets the allocator for the list's own storage.
func WithAllocator(a *Allocator) ListOption {
	return func(l *List) { l.alloc = a }
}

// NewList returns an empty list.
func NewList(opts ...ListOption) *List {
	l := &List{}
	for _, o := range opts {
		o(l)
	}
	return l
}

// NewListFrom returns a list holding a copy of b.
func NewListFrom(b []byte, opts ...ListOption) (*List, error) {
	l := NewList(opts...)
	if err := l.Append(b); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *List) allocator() *Allocator {
	if l.alloc == nil {
		return defaultAllocator
	}
	return l.alloc
}

func (l *List) segs() []Ptr { return l.bufs[l.head:] }

func (l *List) invalidate() { l.gen++ }

// Len is the logical length in bytes.
func (l *List) Len() int { return l.length }

// NumBuffers is the number of member segments.
func (l *List) NumBuffers() int { return len(l.bufs) - l.head }

// Buffers exposes the members. The slice and its references stay owned by
// the list and are valid until the next mutation.
func (l *List) Buffers() []Ptr { return l.segs() }

// Front returns the first member without taking a reference.
func (l *List) Front() (Ptr, bool) {
	if l.NumBuffers() == 0 {
		return Ptr{}, false
	}
	return l.bufs[l.head], true
}

// Back returns the last member without taking a reference.
func (l *List) Back() (Ptr, bool) {
	if l.NumBuffers() == 0 {
		return Ptr{}, false
	}
	return l.bufs[len(l.bufs)-1], true
}

// Clear releases every member. The append tail is kept for reuse.
func (l *List) Clear() {
	segs := l.segs()
	for i := range segs {
		segs[i].Release()
	}
	l.bufs = l.bufs[:0]
	l.head = 0
	l.length = 0
	l.invalidate()
}

// Release clears the list and gives up the append tail.
func (l *List) Release() {
	l.Clear()
	l.bufs = nil
	l.tail.Release()
}

// Swap exchanges the contents of two lists.
func (l *List) Swap(o *List) {
	l.bufs, o.bufs = o.bufs, l.bufs
	l.head, o.head = o.head, l.head
	l.length, o.length = o.length, l.length
	l.tail, o.tail = o.tail, l.tail
	l.invalidate()
	o.invalidate()
}

// Share returns a new list referencing the same segments. No bytes are
// copied; writes through either list are visible in both.
func (l *List) Share() *List {
	o := &List{alloc: l.alloc, bufs: make([]Ptr, 0, l.NumBuffers())}
	for _, p := range l.segs() {
		o.bufs = append(o.bufs, p.Share())
	}
	o.length = l.length
	return o
}

// pushOwned appends p, taking over its reference.
func (l *List) pushOwned(p Ptr) {
	if p.n == 0 {
		p.Release()
		return
	}
	l.bufs = append(l.bufs, p)
	l.length += p.n
}

// PushBack appends a reference to p's window. Empty windows are dropped.
func (l *List) PushBack(p Ptr) {
	if p.n == 0 {
		return
	}
	l.pushOwned(p.Share())
}

// PushFront prepends a reference to p's window. Empty windows are dropped.
func (l *List) PushFront(p Ptr) {
	if p.n == 0 {
		return
	}
	if l.head == 0 {
		grow := max(len(l.bufs), 4)
		nb := make([]Ptr, grow+len(l.bufs), grow+cap(l.bufs))
		copy(nb[grow:], l.bufs)
		l.bufs = nb
		l.head = grow
	}
	l.head--
	l.bufs[l.head] = p.Share()
	l.length += p.n
	l.invalidate()
}

// appendRange appends [off, off+n) of p's window, extending the last member
// instead when it ends exactly where the range starts in the same raw.
func (l *List) appendRange(p Ptr, off, n int) {
	if n == 0 {
		return
	}
	if k := len(l.bufs) - 1; k >= l.head {
		last := &l.bufs[k]
		if last.raw == p.raw && last.End() == p.off+off {
			last.n += n
			l.length += n
			return
		}
	}
	p.raw.get()
	l.bufs = append(l.bufs, Ptr{raw: p.raw, off: p.off + off, n: n})
	l.length += n
}

// AppendPtr appends a reference to p's window, merging with the last member
// when contiguous.
func (l *List) AppendPtr(p Ptr) {
	l.appendRange(p, 0, p.n)
}

// AppendPtrRange appends a reference to [off, off+n) of p's window.
func (l *List) AppendPtrRange(p Ptr, off, n int) error {
	if off < 0 || n < 0 || off+n > p.n {
		return endOfBuffer("range %d+%d outside window of %d bytes", off, n, p.n)
	}
	l.appendRange(p, off, n)
	return nil
}

// AppendList appends references to every member of o.
func (l *List) AppendList(o *List) {
	segs := o.segs()
	for i, n := 0, len(segs); i < n; i++ {
		l.PushBack(segs[i])
	}
}

// Append copies b into the list. Small appends land in the shared append
// tail; when it is full a new tail of b's size rounded up to whole pages is
// allocated first, so a failed allocation leaves the list unchanged.
func (l *List) Append(b []byte) error {
	gap := l.tail.UnusedTailLength()
	var next Ptr
	if len(b) > gap {
		raw, err := l.allocator().CreatePageAligned(pool.RoundUpToPage(len(b) - gap))
		if err != nil {
			return err
		}
		next = NewPtr(raw)
		next.n = 0
	}
	if w := min(gap, len(b)); w > 0 {
		_ = l.tail.Append(b[:w])
		l.appendRange(l.tail, l.tail.n-w, w)
		b = b[w:]
	}
	if len(b) > 0 {
		l.tail.Release()
		l.tail = next
		_ = l.tail.Append(b)
		l.appendRange(l.tail, 0, len(b))
	}
	return nil
}

// AppendByte appends one byte.
func (l *List) AppendByte(c byte) error {
	return l.Append([]byte{c})
}

// AppendString appends the bytes of s.
func (l *List) AppendString(s string) error {
	return l.Append([]byte(s))
}

// AppendZero appends n zero bytes in a fresh heap segment.
func (l *List) AppendZero(n int) error {
	if n == 0 {
		return nil
	}
	raw, err := l.allocator().Create(n)
	if err != nil {
		return err
	}
	l.pushOwned(NewPtr(raw))
	return nil
}

// Prealloc makes sure the append tail has room for n more bytes.
func (l *List) Prealloc(n int) error {
	if l.tail.UnusedTailLength() >= n {
		return nil
	}
	a := l.allocator()
	var (
		raw *Raw
		err error
	)
	if n&^pool.PageMask == 0 {
		raw, err = a.CreatePageAligned(n)
	} else {
		raw, err = a.Create(n)
	}
	if err != nil {
		return err
	}
	l.tail.Release()
	l.tail = NewPtr(raw)
	l.tail.n = 0
	return nil
}

// AppendTail returns the current append tail without taking a reference.
func (l *List) AppendTail() Ptr { return l.tail }

// Write implements io.Writer.
func (l *List) Write(p []byte) (int, error) {
	if err := l.Append(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteString implements io.StringWriter.
func (l *List) WriteString(s string) (int, error) {
	if err := l.AppendString(s); err != nil {
		return 0, err
	}
	return len(s), nil
}

// WriteByte implements io.ByteWriter.
func (l *List) WriteByte(c byte) error { return l.AppendByte(c) }

// Claim replaces the contents of l with those of o and empties o.
func (l *List) Claim(o *List) {
	if o == l {
		return
	}
	l.Clear()
	l.ClaimAppend(o)
}

// ClaimAppend moves o's members to the end of l and empties o.
func (l *List) ClaimAppend(o *List) {
	if o == l {
		return
	}
	l.bufs = append(l.bufs, o.segs()...)
	l.length += o.length
	o.forget()
	l.invalidate()
}

// ClaimPrepend moves o's members to the front of l and empties o.
func (l *List) ClaimPrepend(o *List) {
	if o == l {
		return
	}
	nb := make([]Ptr, 0, o.NumBuffers()+l.NumBuffers())
	nb = append(nb, o.segs()...)
	nb = append(nb, l.segs()...)
	l.bufs = nb
	l.head = 0
	l.length += o.length
	o.forget()
	l.invalidate()
}

// forget drops the members without releasing them; their references moved
// elsewhere.
func (l *List) forget() {
	l.bufs = nil
	l.head = 0
	l.length = 0
	l.invalidate()
}

// SubstrOf makes l reference [off, off+n) of o. No bytes are copied.
func (l *List) SubstrOf(o *List, off, n int) error {
	if off < 0 || n < 0 || off+n > o.length {
		return endOfBuffer("range %d+%d outside list of %d bytes", off, n, o.length)
	}
	var nl List
	segs := o.segs()
	i := 0
	for off > 0 && off >= segs[i].n {
		off -= segs[i].n
		i++
	}
	for n > 0 {
		cnt := min(segs[i].n-off, n)
		nl.appendRange(segs[i], off, cnt)
		n -= cnt
		off = 0
		i++
	}
	l.Clear()
	l.bufs = nl.bufs
	l.length = nl.length
	l.invalidate()
	return nil
}

// Splice removes [off, off+n) from l. When out is not nil the removed range
// is appended to it as shared references; a member cut in the middle is
// split into two references to the same raw.
func (l *List) Splice(off, n int, out *List) error {
	if off < 0 || n < 0 || off+n > l.length {
		return endOfBuffer("splice %d+%d outside list of %d bytes", off, n, l.length)
	}
	if out == l {
		return api.NewError(api.ErrCodeMalformedInput, "splice into the source list")
	}
	if n == 0 {
		return nil
	}
	segs := l.segs()
	i := 0
	for off >= segs[i].n {
		off -= segs[i].n
		i++
	}
	kept := make([]Ptr, 0, len(segs)+1)
	kept = append(kept, segs[:i]...)
	if off > 0 {
		front, _ := segs[i].Sub(0, off)
		kept = append(kept, front)
	}
	removed := n
	for n > 0 {
		cur := &segs[i]
		if off+n < cur.n {
			if out != nil {
				out.appendRange(*cur, off, n)
			}
			cur.off += off + n
			cur.n -= off + n
			break
		}
		cnt := cur.n - off
		if out != nil {
			out.appendRange(*cur, off, cnt)
		}
		cur.Release()
		n -= cnt
		off = 0
		i++
	}
	kept = append(kept, segs[i:]...)
	l.bufs = kept
	l.head = 0
	l.length -= removed
	l.invalidate()
	return nil
}

func (l *List) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "list(len=%d", l.length)
	for _, p := range l.segs() {
		sb.WriteString(", ")
		sb.WriteString(p.String())
	}
	sb.WriteString(")")
	return sb.String()
}
