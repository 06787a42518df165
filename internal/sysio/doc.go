// File: internal/sysio/doc.go
// Package sysio
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Descriptor-level I/O primitives for byte sequences: vectored read/write,
// pipes, splice and tee. Platform code is separated by build tags
// (linux / other unix / everything else). Every call retries EINTR and
// returns any other OS error unmodified.

package sysio
