package pool

import (
	"sync"
)

var (
	defaultOnce  sync.Once
	defaultPages *PagePool
)

// DefaultPages returns the process-wide PagePool shared by allocators that
// were not given their own, so that recycled pages are not fragmented
// across many small pools.
func DefaultPages() *PagePool {
	defaultOnce.Do(func() {
		defaultPages = NewPagePool()
	})
	return defaultPages
}
