// File: buffer/armor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Base64 armoring for embedding list contents in text protocols.

package buffer

import (
	"encoding/base64"
	"io"

	"github.com/go-kit/log/level"

	"github.com/momentics/hioload-buffer/api"
)

// EncodeBase64 appends the standard base64 encoding of l to dst. The list is
// streamed member by member, never flattened.
func (l *List) EncodeBase64(dst *List) error {
	enc := base64.NewEncoder(base64.StdEncoding, dst)
	if _, err := l.WriteTo(enc); err != nil {
		return err
	}
	return enc.Close()
}

// DecodeBase64 decodes src and appends the bytes to l as one new member.
// Line breaks in src are ignored. Malformed input leaves l unchanged.
func (l *List) DecodeBase64(src *List) error {
	out, err := io.ReadAll(base64.NewDecoder(base64.StdEncoding, src.Begin()))
	if err != nil {
		level.Debug(l.allocator().logger).Log("msg", "base64 decode failed", "err", err, "input", src.HexdumpString())
		return api.Errorf(api.ErrCodeMalformedInput, "base64 decode: %v", err).WithContext("len", src.Len())
	}
	if len(out) > 0 {
		l.pushOwned(NewPtr(l.allocator().ClaimHeap(out)))
	}
	return nil
}
