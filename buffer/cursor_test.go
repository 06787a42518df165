// File: buffer/cursor_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package buffer

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-buffer/api"
)

func TestCursorAdvanceBothWays(t *testing.T) {
	l := listOf(t, "abc", "de", "fghi")
	c := l.Begin()

	require.NoError(t, c.Advance(4))
	b, err := c.Byte()
	require.NoError(t, err)
	assert.Equal(t, byte('e'), b)

	require.NoError(t, c.Advance(-3))
	b, _ = c.Byte()
	assert.Equal(t, byte('b'), b)

	require.NoError(t, c.Advance(8))
	assert.True(t, c.End())
	assert.Equal(t, 0, c.Remaining())

	require.NoError(t, c.Advance(-9))
	assert.Equal(t, 0, c.Offset())

	err = c.Advance(-1)
	assert.True(t, errors.Is(err, api.ErrEndOfBuffer))
	assert.Equal(t, 0, c.Offset())
	err = c.Advance(10)
	assert.True(t, errors.Is(err, api.ErrEndOfBuffer))
	assert.Equal(t, 0, c.Offset())
}

func TestCursorSeekAndCurrentPtr(t *testing.T) {
	l := listOf(t, "abc", "defg")
	c, err := l.CursorAt(5)
	require.NoError(t, err)
	p, err := c.CurrentPtr()
	require.NoError(t, err)
	defer p.Release()
	assert.Equal(t, "fg", string(p.Bytes()))
	assert.Same(t, l.Buffers()[1].Raw(), p.Raw())

	require.NoError(t, c.Seek(3))
	p2, err := c.CurrentPtr()
	require.NoError(t, err)
	assert.Equal(t, "defg", string(p2.Bytes()))
	p2.Release()

	require.NoError(t, c.Seek(7))
	_, err = c.CurrentPtr()
	assert.True(t, errors.Is(err, api.ErrEndOfBuffer))
	_, err = l.CursorAt(8)
	assert.True(t, errors.Is(err, api.ErrEndOfBuffer))
}

func TestCursorCopyVariants(t *testing.T) {
	l := listOf(t, "hel", "lo w", "orld")
	c := l.Begin()

	s, err := c.CopyString(5)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	p, err := c.CopyPtr(3)
	require.NoError(t, err)
	assert.Equal(t, " wo", string(p.Bytes()))
	assert.Equal(t, Heap, p.Strategy())
	p.Release()

	var shared List
	err = c.CopyList(4, &shared)
	assert.True(t, errors.Is(err, api.ErrEndOfBuffer))
	require.NoError(t, c.CopyList(3, &shared))
	assert.Equal(t, "rld", contents(t, &shared))
	assert.True(t, c.End())

	_, err = c.CopyString(1)
	assert.True(t, errors.Is(err, api.ErrEndOfBuffer))
}

func TestCursorCopyAllCopiesBytes(t *testing.T) {
	l := listOf(t, "ab", "cd")
	c := l.Begin()
	require.NoError(t, c.Advance(1))
	var dst List
	require.NoError(t, c.CopyAll(&dst))
	assert.Equal(t, "bcd", contents(t, &dst))
	assert.NotSame(t, l.Buffers()[0].Raw(), dst.Buffers()[0].Raw())
}

func TestCursorCopyIn(t *testing.T) {
	l := listOf(t, "aaa", "bbb")
	c := l.Begin()
	require.NoError(t, c.Advance(2))
	require.NoError(t, c.CopyIn([]byte("XY")))
	assert.Equal(t, "aaXYbb", contents(t, l))
	assert.Equal(t, 4, c.Offset())

	err := c.CopyIn([]byte("123"))
	assert.True(t, errors.Is(err, api.ErrEndOfBuffer))
	assert.Equal(t, "aaXYbb", contents(t, l))
}

func TestCursorAsReader(t *testing.T) {
	l := listOf(t, "one ", "two ", "three")
	got, err := io.ReadAll(l.Begin())
	require.NoError(t, err)
	assert.Equal(t, "one two three", string(got))

	c := l.Begin()
	var out []byte
	for {
		b, err := c.ReadByte()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		out = append(out, b)
	}
	assert.Equal(t, "one two three", string(out))
}

func TestCursorReseeksAfterClaim(t *testing.T) {
	l := listOf(t, "abcdef")
	c := l.Begin()
	require.NoError(t, c.Advance(3))

	o := listOf(t, "uv", "wxyz")
	l.Claim(o)
	b, err := c.Byte()
	require.NoError(t, err)
	assert.Equal(t, byte('x'), b)

	short := listOf(t, "q")
	l.Claim(short)
	assert.True(t, c.End())
	assert.Equal(t, 1, c.Offset())
}

func TestCursorFollowsAppendAtEnd(t *testing.T) {
	var l List
	require.NoError(t, l.AppendString("ab"))
	c := l.Begin()
	require.NoError(t, c.Advance(2))
	assert.True(t, c.End())

	p, _ := NewPtrCopy([]byte("cd"))
	l.PushBack(p)
	p.Release()
	assert.False(t, c.End())
	b, err := c.Byte()
	require.NoError(t, err)
	assert.Equal(t, byte('c'), b)
}
