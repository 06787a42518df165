// Package pool
// Author: momentics <momentics@gmail.com>
//
// Page-aligned memory for raw segments.
// AlignedAlloc carves aligned blocks out of the Go heap; PagePool adds
// accounting and a bounded free list so the one-page append tails that
// sequences churn through can be reused instead of reallocated.
package pool
