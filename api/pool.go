// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs for page-aligned block reuse.

package api

// PageSource hands out page-aligned byte blocks and takes them back once the
// raw segment owning them is dropped.
type PageSource interface {
	// Get returns a page-aligned block of exactly n bytes.
	Get(n int) ([]byte, error)

	// Put returns a block obtained from Get. The block must not be used
	// afterwards.
	Put(block []byte)

	// Stats exposes accounting for observability.
	Stats() BufferPoolStats
}

// BufferPoolStats aggregates block allocation/reuse stats.
type BufferPoolStats struct {
	TotalAlloc int64
	TotalFree  int64
	InUse      int64
	Recycled   int64
	Cached     int
}
