// File: buffer/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package buffer implements segmented, reference-counted byte storage.
//
// A Raw is one block of memory (heap, page-aligned, caller-owned or held in a
// kernel pipe) shared through Ptr windows. A List strings windows together
// into one logical byte stream that can be appended to, sliced, spliced and
// claimed without copying bytes, and written to or read from descriptors with
// vectored I/O or splice. Cursor reads and writes at a position inside a
// List.
//
// Ownership: every Ptr produced by a constructor, Share or Sub holds one
// reference and must be released once. Lists take their own references to
// anything handed to them, so callers release what they created. Mutating a
// window is visible through every other window over the same bytes.
//
// Reads are all-or-nothing: a copy that would run past the end of a list
// fails with api.ErrEndOfBuffer before writing anything and leaves the
// cursor where it was.
//
// Anything that reads bytes returns an error when a pipe-backed segment cannot
// be read into memory, for instance after a zero-copy write drained it. The
// exceptions are Ptr.Bytes, which panics, and List.Equal, which reports such
// lists as unequal.
package buffer
