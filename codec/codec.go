// File: codec/codec.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stream compression between buffer lists.

package codec

import (
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"

	"github.com/momentics/hioload-buffer/api"
	"github.com/momentics/hioload-buffer/buffer"
)

// Type identifies a compression format.
type Type uint8

const (
	None Type = iota
	Snappy
	Zstd
	Gzip
	LZ4
)

// Types lists every supported format in declaration order.
var Types = []Type{None, Snappy, Zstd, Gzip, LZ4}

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	case Zstd:
		return "zstd"
	case Gzip:
		return "gzip"
	case LZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// Parse maps a format name to its Type.
func Parse(name string) (Type, error) {
	for _, t := range Types {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, api.Errorf(api.ErrCodeUnsupported, "unknown codec %q", name)
}

type nopCloseWriter struct{ w io.Writer }

func (w nopCloseWriter) Write(p []byte) (int, error) { return w.w.Write(p) }
func (w nopCloseWriter) Close() error                { return nil }

type zstdReadCloser struct{ *zstd.Decoder }

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// NewWriter returns a writer that compresses into w. Close flushes the
// trailing frame and does not close w.
func NewWriter(w io.Writer, t Type) (io.WriteCloser, error) {
	switch t {
	case None:
		return nopCloseWriter{w}, nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case Zstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, errors.Wrap(err, "zstd writer")
		}
		return zw, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case LZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, api.Errorf(api.ErrCodeUnsupported, "unknown codec %d", t)
	}
}

// NewReader returns a reader that decompresses r.
func NewReader(r io.Reader, t Type) (io.ReadCloser, error) {
	switch t {
	case None:
		return io.NopCloser(r), nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "zstd reader")
		}
		return zstdReadCloser{zr}, nil
	case Gzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, api.ErrnoError("gzip header", err)
		}
		return gr, nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, api.Errorf(api.ErrCodeUnsupported, "unknown codec %d", t)
	}
}

// Compress appends the compressed form of src to dst. On error dst keeps
// whatever was written before the failure.
func Compress(dst, src *buffer.List, t Type) error {
	w, err := NewWriter(dst, t)
	if err != nil {
		return err
	}
	if _, err := src.WriteTo(w); err != nil {
		w.Close()
		return errors.Wrapf(err, "%s compress", t)
	}
	return errors.Wrapf(w.Close(), "%s compress", t)
}

// Decompress appends the decompressed form of src to dst. Corrupt input
// yields an api.ErrMalformedInput error.
func Decompress(dst, src *buffer.List, t Type) error {
	r, err := NewReader(src.Begin(), t)
	if err != nil {
		return err
	}
	defer r.Close()
	if _, err := dst.ReadFrom(r); err != nil {
		if api.CodeOf(err) != api.ErrCodeOK {
			return err
		}
		return api.Errorf(api.ErrCodeMalformedInput, "%s decompress: %v", t, err)
	}
	return nil
}
