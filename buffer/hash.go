// File: buffer/hash.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package buffer

import (
	"hash"
	"hash/crc32"

	"github.com/cespare/xxhash/v2"
)

// Hash is a running CRC32C that accepts both plain bytes and lists; lists go
// through the per-raw checksum cache.
type Hash struct {
	seed uint32
	crc  uint32
}

// NewHash starts a checksum from seed.
func NewHash(seed uint32) *Hash { return &Hash{seed: seed, crc: seed} }

// Update folds l into the running checksum.
func (h *Hash) Update(l *List) error {
	c, err := l.CRC32C(h.crc)
	if err != nil {
		return err
	}
	h.crc = c
	return nil
}

func (h *Hash) Write(p []byte) (int, error) {
	h.crc = crc32.Update(h.crc, castagnoliTable, p)
	return len(p), nil
}

func (h *Hash) Sum32() uint32  { return h.crc }
func (h *Hash) Reset()         { h.crc = h.seed }
func (h *Hash) Size() int      { return crc32.Size }
func (h *Hash) BlockSize() int { return 1 }

// Sum appends the big-endian checksum to b.
func (h *Hash) Sum(b []byte) []byte {
	s := h.crc
	return append(b, byte(s>>24), byte(s>>16), byte(s>>8), byte(s))
}

var _ hash.Hash32 = (*Hash)(nil)

// XXHash64 hashes the contents of l without flattening it.
func XXHash64(l *List) (uint64, error) {
	d := xxhash.New()
	for _, p := range l.segs() {
		b, err := p.Data()
		if err != nil {
			return 0, err
		}
		_, _ = d.Write(b)
	}
	return d.Sum64(), nil
}
