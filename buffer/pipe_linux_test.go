// File: buffer/pipe_linux_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package buffer

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-buffer/api"
)

func spliceSource(t *testing.T, size int) ([]byte, *os.File) {
	t.Helper()
	data := make([]byte, size)
	rand.New(rand.NewSource(int64(size))).Read(data)
	path := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return data, f
}

func skipWithoutSplice(t *testing.T, err error) {
	t.Helper()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOSYS) || errors.Is(err, syscall.EPERM) {
		t.Skipf("splice unavailable: %v", err)
	}
}

func TestZeroCopyFileToFile(t *testing.T) {
	data, src := spliceSource(t, 10000)

	var l List
	err := l.ReadFDZeroCopy(int(src.Fd()), len(data))
	skipWithoutSplice(t, err)
	require.NoError(t, err)
	require.Equal(t, len(data), l.Len())
	assert.True(t, l.CanZeroCopy())
	assert.Equal(t, Pipe, l.Buffers()[0].Strategy())

	path := filepath.Join(t.TempDir(), "dst")
	require.NoError(t, l.WriteFile(path, 0o644))
	assert.False(t, l.CanZeroCopy())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	err = l.WriteFDZeroCopy(int(src.Fd()))
	assert.True(t, errors.Is(err, api.ErrUnsupported))
}

func TestDrainedPipeComparisonsReturnErrors(t *testing.T) {
	data, src := spliceSource(t, 5000)

	var l List
	err := l.ReadFDZeroCopy(int(src.Fd()), len(data))
	skipWithoutSplice(t, err)
	require.NoError(t, err)
	require.NoError(t, l.WriteFile(filepath.Join(t.TempDir(), "dst"), 0o644))

	other := listOf(t, string(data))
	assert.NotPanics(t, func() {
		assert.False(t, l.Equal(other))
		assert.False(t, other.Equal(&l))
	})

	_, err = l.Compare(other)
	assert.True(t, errors.Is(err, api.ErrMalformedInput))
	_, err = other.Compare(&l)
	assert.True(t, errors.Is(err, api.ErrMalformedInput))
	_, err = l.ContentsEqual(data)
	assert.True(t, errors.Is(err, api.ErrMalformedInput))
	_, err = l.IsZero()
	assert.True(t, errors.Is(err, api.ErrMalformedInput))
	_, err = l.Buffers()[0].Compare(other.Buffers()[0])
	assert.True(t, errors.Is(err, api.ErrMalformedInput))
}

func TestZeroCopyMaterializeKeepsPipe(t *testing.T) {
	data, src := spliceSource(t, 5000)

	var l List
	err := l.ReadFDZeroCopy(int(src.Fd()), len(data))
	skipWithoutSplice(t, err)
	require.NoError(t, err)

	b, err := l.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, b)
	assert.True(t, l.CanZeroCopy())

	crc, err := l.CRC32C(0)
	require.NoError(t, err)
	flat := listOf(t, string(data))
	want, _ := flat.CRC32C(0)
	assert.Equal(t, want, crc)

	path := filepath.Join(t.TempDir(), "dst")
	require.NoError(t, l.WriteFile(path, 0o644))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// The in-memory copy stays readable after the pipe drained.
	b, err = l.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, b)
}

func TestZeroCopyMutationDisablesSplice(t *testing.T) {
	data, src := spliceSource(t, 100)

	var l List
	err := l.ReadFDZeroCopy(int(src.Fd()), len(data))
	skipWithoutSplice(t, err)
	require.NoError(t, err)
	require.NoError(t, l.CopyIn(0, []byte{'!'}))
	assert.False(t, l.CanZeroCopy())

	path := filepath.Join(t.TempDir(), "dst")
	require.NoError(t, l.WriteFile(path, 0o644))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte('!'), got[0])
	assert.Equal(t, data[1:], got[1:])
}

func TestZeroCopyPipeLimit(t *testing.T) {
	_, src := spliceSource(t, 300)
	a := NewAllocator(WithMaxPipeSize(200))
	_, err := a.CreateZeroCopy(300, int(src.Fd()), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrMalformedInput))
}

func TestZeroCopyExplicitOffset(t *testing.T) {
	data, src := spliceSource(t, 1000)
	off := int64(100)
	r, err := CreateZeroCopy(200, int(src.Fd()), &off)
	skipWithoutSplice(t, err)
	require.NoError(t, err)
	p := NewPtr(r)
	defer p.Release()
	assert.EqualValues(t, 300, off)
	assert.Equal(t, data[100:300], p.Bytes())
}
