// File: buffer/ptr_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package buffer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-buffer/api"
)

func TestPtrRangeBounds(t *testing.T) {
	r, err := Create(8)
	require.NoError(t, err)

	_, err = NewPtrRange(r, 4, 5)
	assert.True(t, errors.Is(err, api.ErrEndOfBuffer))
	assert.Equal(t, 0, r.Refs())

	p, err := NewPtrRange(r, 4, 4)
	require.NoError(t, err)
	defer p.Release()
	assert.Equal(t, 4, p.Offset())
	assert.Equal(t, 8, p.End())
	assert.True(t, p.AtTail())

	s, err := p.Sub(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Start())
	assert.Equal(t, 2, r.Refs())
	s.Release()

	_, err = p.Sub(3, 2)
	assert.True(t, errors.Is(err, api.ErrEndOfBuffer))
}

func TestPtrAliasingThroughSharedRaw(t *testing.T) {
	p, err := NewPtrCopy([]byte("hello world"))
	require.NoError(t, err)
	defer p.Release()
	q, err := p.Sub(6, 5)
	require.NoError(t, err)
	defer q.Release()

	require.NoError(t, p.CopyIn(6, []byte("WORLD")))
	assert.Equal(t, "WORLD", string(q.Bytes()))

	c, err := q.Clone()
	require.NoError(t, err)
	defer c.Release()
	require.NoError(t, p.CopyIn(6, []byte("earth")))
	assert.Equal(t, "earth", string(q.Bytes()))
	assert.Equal(t, "WORLD", string(c.Bytes()))
}

func TestPtrAppendUsesTailCapacity(t *testing.T) {
	r, err := Create(8)
	require.NoError(t, err)
	p, err := NewPtrRange(r, 0, 0)
	require.NoError(t, err)
	defer p.Release()

	require.NoError(t, p.Append([]byte("abc")))
	require.NoError(t, p.AppendByte('d'))
	assert.Equal(t, "abcd", string(p.Bytes()))
	assert.Equal(t, 4, p.UnusedTailLength())
	assert.Equal(t, 4, p.Wasted())

	err = p.Append([]byte("12345"))
	assert.True(t, errors.Is(err, api.ErrEndOfBuffer))
	assert.Equal(t, "abcd", string(p.Bytes()))
}

func TestPtrAppendInvalidatesCachedCRC(t *testing.T) {
	r, err := Create(8)
	require.NoError(t, err)
	p, err := NewPtrRange(r, 0, 4)
	require.NoError(t, err)
	defer p.Release()
	r.SetCachedCRC(0, 8, 0, 1)
	r.SetCachedCRC(0, 4, 0, 1)

	require.NoError(t, p.Append([]byte("x")))
	_, _, ok := r.CachedCRC(0, 8)
	assert.False(t, ok)
	_, _, ok = r.CachedCRC(0, 4)
	assert.True(t, ok)
}

func TestPtrZeroAndCompare(t *testing.T) {
	p, err := NewPtrCopy([]byte("abcdef"))
	require.NoError(t, err)
	defer p.Release()
	require.NoError(t, p.ZeroRange(1, 2))
	assert.Equal(t, []byte{'a', 0, 0, 'd', 'e', 'f'}, p.Bytes())
	z, err := p.IsZero()
	require.NoError(t, err)
	assert.False(t, z)
	require.NoError(t, p.Zero())
	z, err = p.IsZero()
	require.NoError(t, err)
	assert.True(t, z)

	a, _ := NewPtrCopy([]byte("abc"))
	b, _ := NewPtrCopy([]byte("abd"))
	defer a.Release()
	defer b.Release()
	for _, tc := range []struct {
		x, y Ptr
		want int
	}{
		{a, b, -1},
		{b, a, 1},
		{a, a, 0},
	} {
		got, err := tc.x.Compare(tc.y)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestPtrAssignAndSwap(t *testing.T) {
	a, _ := NewPtrCopy([]byte("a"))
	b, _ := NewPtrCopy([]byte("bb"))
	ra, rb := a.Raw(), b.Raw()

	a.Assign(b)
	assert.Equal(t, 0, ra.Refs())
	assert.Equal(t, 2, rb.Refs())
	assert.Equal(t, "bb", string(a.Bytes()))

	var c Ptr
	c.Swap(&a)
	assert.False(t, a.HasRaw())
	assert.Equal(t, 2, c.Len())

	// Assigning a window to itself keeps it alive.
	c.Assign(c)
	assert.Equal(t, 2, rb.Refs())

	c.Release()
	b.Release()
	assert.Equal(t, 0, rb.Refs())
}

func TestPtrAtAndCopyOut(t *testing.T) {
	p, _ := NewPtrCopy([]byte("xyz"))
	defer p.Release()
	c, err := p.At(2)
	require.NoError(t, err)
	assert.Equal(t, byte('z'), c)
	_, err = p.At(3)
	assert.True(t, errors.Is(err, api.ErrEndOfBuffer))

	dst := []byte{'-', '-'}
	err = p.CopyOut(2, dst)
	assert.True(t, errors.Is(err, api.ErrEndOfBuffer))
	assert.Equal(t, "--", string(dst))
	require.NoError(t, p.CopyOut(1, dst))
	assert.Equal(t, "yz", string(dst))
}

func TestZeroPtrAccessors(t *testing.T) {
	var p Ptr
	assert.NotPanics(t, func() {
		assert.False(t, p.HasRaw())
		assert.Nil(t, p.Raw())
		assert.Zero(t, p.Len())
		assert.Zero(t, p.RawRefs())
		assert.Zero(t, p.RawLen())
		assert.Zero(t, p.Wasted())
		assert.Zero(t, p.UnusedTailLength())
		assert.True(t, p.AtHead())
		assert.False(t, p.AtTail())
		assert.Equal(t, Heap, p.Strategy())
		assert.False(t, p.CanZeroCopy())
		assert.Equal(t, "ptr(empty)", p.String())
	})

	z, err := p.IsZero()
	require.NoError(t, err)
	assert.True(t, z)
	c, err := p.Compare(Ptr{})
	require.NoError(t, err)
	assert.Zero(t, c)
}
