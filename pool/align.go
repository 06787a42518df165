// File: pool/align.go
// Author: momentics <momentics@gmail.com>
//
// Page-aligned allocation on the Go heap.

package pool

import (
	"os"
	"unsafe"
)

// PageSize is the OS page size used for every alignment decision.
var PageSize = os.Getpagesize()

// PageMask clears the in-page bits of an address or length.
var PageMask = ^(PageSize - 1)

// AlignedAlloc returns a zeroed slice of n bytes whose first byte sits on an
// align boundary. align must be a power of two. The backing array is
// over-allocated by align-1 bytes; the heap never moves it.
func AlignedAlloc(n, align int) []byte {
	if n == 0 {
		return []byte{}
	}
	buf := make([]byte, n+align-1)
	off := 0
	if rem := int(uintptr(unsafe.Pointer(&buf[0])) & uintptr(align-1)); rem != 0 {
		off = align - rem
	}
	return buf[off : off+n : off+n]
}

// IsAligned reports whether the first byte of b sits on an align boundary.
// Empty slices are treated as aligned.
func IsAligned(b []byte, align int) bool {
	if len(b) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&b[0]))&uintptr(align-1) == 0
}

// RoundUpToPage rounds n up to a multiple of PageSize.
func RoundUpToPage(n int) int {
	return (n + PageSize - 1) & PageMask
}
