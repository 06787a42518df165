// File: buffer/crc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CRC32C over lists with per-raw memoization. A cached checksum computed
// under one seed is re-based to another seed without touching the data:
// the register update is affine in the seed, so
//
//	crc(D, s2) = crc(D, s1) ^ Z(len(D), s1^s2)
//
// where Z(n, x) runs x through n zero bytes. Z is applied with GF(2) 32x32
// matrices for power-of-two byte counts, squared from the one-bit operator.

package buffer

import (
	"hash/crc32"
	"sync"
)

// castagnoliPoly is the reversed CRC32C polynomial.
const castagnoliPoly = 0x82f63b78

var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

type gf2Matrix [32]uint32

var (
	zeroOpsOnce sync.Once
	zeroOps     [63]gf2Matrix // zeroOps[k] shifts a register through 2^k zero bytes
)

func gf2Times(m *gf2Matrix, v uint32) uint32 {
	var sum uint32
	for i := 0; v != 0; i, v = i+1, v>>1 {
		if v&1 != 0 {
			sum ^= m[i]
		}
	}
	return sum
}

func gf2Square(dst, m *gf2Matrix) {
	for i := range dst {
		dst[i] = gf2Times(m, m[i])
	}
}

func initZeroOps() {
	var odd, even gf2Matrix
	odd[0] = castagnoliPoly
	row := uint32(1)
	for i := 1; i < 32; i++ {
		odd[i] = row
		row <<= 1
	}
	gf2Square(&even, &odd) // 2 bits
	gf2Square(&odd, &even) // 4 bits
	gf2Square(&zeroOps[0], &odd)
	for k := 1; k < len(zeroOps); k++ {
		gf2Square(&zeroOps[k], &zeroOps[k-1])
	}
}

// crc32cZeros returns the register x after n zero bytes with no pre- or
// post-inversion.
func crc32cZeros(x uint32, n int) uint32 {
	zeroOpsOnce.Do(initZeroOps)
	for k := 0; n > 0 && x != 0; k, n = k+1, n>>1 {
		if n&1 != 0 {
			x = gf2Times(&zeroOps[k], x)
		}
	}
	return x
}

// rebaseCRC converts a checksum of n bytes computed from seed in into the
// checksum of the same bytes from seed to.
func rebaseCRC(out, in, to uint32, n int) uint32 {
	if in == to {
		return out
	}
	return out ^ crc32cZeros(in^to, n)
}

// CRC32C folds the Castagnoli checksum of the list into seed, using
// crc32.Update conventions. Member checksums are cached on their raw
// segments by absolute range; a cached value from another seed is re-based
// instead of rescanned.
func (l *List) CRC32C(seed uint32) (uint32, error) {
	t := l.allocator().tracker
	crc := seed
	for _, p := range l.segs() {
		from, to := p.off, p.off+p.n
		if in, out, ok := p.raw.CachedCRC(from, to); ok {
			if in == crc {
				t.CachedCRC()
			} else {
				t.CachedCRCAdjusted()
			}
			crc = rebaseCRC(out, in, crc, p.n)
			continue
		}
		d, err := p.Data()
		if err != nil {
			return 0, err
		}
		next := crc32.Update(crc, castagnoliTable, d)
		p.raw.SetCachedCRC(from, to, crc, next)
		crc = next
	}
	return crc, nil
}
