package pool_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-buffer/pool"
)

func TestAlignedAlloc(t *testing.T) {
	for _, n := range []int{1, 17, pool.PageSize - 1, pool.PageSize, 3*pool.PageSize + 5} {
		b := pool.AlignedAlloc(n, pool.PageSize)
		require.Len(t, b, n)
		require.Equal(t, n, cap(b))
		require.True(t, pool.IsAligned(b, pool.PageSize), "size %d", n)
	}
	require.Empty(t, pool.AlignedAlloc(0, pool.PageSize))
}

func TestRoundUpToPage(t *testing.T) {
	require.Equal(t, 0, pool.RoundUpToPage(0))
	require.Equal(t, pool.PageSize, pool.RoundUpToPage(1))
	require.Equal(t, pool.PageSize, pool.RoundUpToPage(pool.PageSize))
	require.Equal(t, 2*pool.PageSize, pool.RoundUpToPage(pool.PageSize+1))
}

func TestPagePoolReuse(t *testing.T) {
	p := pool.NewPagePool(pool.WithRecycling(true))
	b1, err := p.Get(pool.PageSize)
	require.NoError(t, err)
	p.Put(b1)
	require.Equal(t, 1, p.Stats().Cached)

	b2, err := p.Get(pool.PageSize)
	require.NoError(t, err)
	require.Same(t, &b1[0], &b2[0], "single page should be reused")

	st := p.Stats()
	require.EqualValues(t, 2, st.TotalAlloc)
	require.EqualValues(t, 1, st.TotalFree)
	require.EqualValues(t, 1, st.InUse)
	require.EqualValues(t, 1, st.Recycled)
	require.Equal(t, 0, st.Cached)
}

func TestPagePoolNoRecycling(t *testing.T) {
	p := pool.NewPagePool()
	b1, err := p.Get(pool.PageSize)
	require.NoError(t, err)
	p.Put(b1)
	require.Equal(t, 0, p.Stats().Cached)
}

func TestPagePoolCapacityAndToggle(t *testing.T) {
	p := pool.NewPagePool(pool.WithRecycling(true), pool.WithCapacity(2))
	for i := 0; i < 4; i++ {
		p.Put(pool.AlignedAlloc(pool.PageSize, pool.PageSize))
	}
	require.Equal(t, 2, p.Stats().Cached)

	// Multi-page blocks are never cached.
	p.Put(pool.AlignedAlloc(2*pool.PageSize, pool.PageSize))
	require.Equal(t, 2, p.Stats().Cached)

	p.SetRecycling(false)
	require.Equal(t, 0, p.Stats().Cached)
}

func TestPagePoolNegative(t *testing.T) {
	_, err := pool.NewPagePool().Get(-1)
	require.Error(t, err)
}
