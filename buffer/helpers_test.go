// File: buffer/helpers_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package buffer

import (
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingTracker struct {
	alloc, free      atomic.Int64
	cached, adjusted atomic.Int64
	contiguousAccess atomic.Int64
}

func (t *countingTracker) Alloc(n int)        { t.alloc.Add(int64(n)) }
func (t *countingTracker) Free(n int)         { t.free.Add(int64(n)) }
func (t *countingTracker) CachedCRC()         { t.cached.Add(1) }
func (t *countingTracker) CachedCRCAdjusted() { t.adjusted.Add(1) }
func (t *countingTracker) ContiguousAccess()  { t.contiguousAccess.Add(1) }

// listFromChunks builds a list whose members are separate heap segments cut
// from data at random points.
func listFromChunks(t testing.TB, rng *rand.Rand, data []byte) *List {
	t.Helper()
	l := NewList()
	for len(data) > 0 {
		n := rng.Intn(len(data)) + 1
		p, err := NewPtrCopy(data[:n])
		require.NoError(t, err)
		l.PushBack(p)
		p.Release()
		data = data[n:]
	}
	return l
}

// listOf builds a list with one member per part.
func listOf(t testing.TB, parts ...string) *List {
	t.Helper()
	l := NewList()
	for _, s := range parts {
		p, err := NewPtrCopy([]byte(s))
		require.NoError(t, err)
		l.PushBack(p)
		p.Release()
	}
	return l
}

func contents(t testing.TB, l *List) string {
	t.Helper()
	b, err := l.Bytes()
	require.NoError(t, err)
	return string(b)
}

func compareLists(t testing.TB, a, b *List) int {
	t.Helper()
	c, err := a.Compare(b)
	require.NoError(t, err)
	return c
}

func listIsZero(t testing.TB, l *List) bool {
	t.Helper()
	z, err := l.IsZero()
	require.NoError(t, err)
	return z
}

func holds(t testing.TB, l *List, b []byte) bool {
	t.Helper()
	ok, err := l.ContentsEqual(b)
	require.NoError(t, err)
	return ok
}
